package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/humanklu/hkp/internal/model"
)

// Runner executes one calibration run for an input file
type Runner interface {
	RunFile(ctx context.Context, inputPath, outDir, runID string) (*model.RunResult, error)
}

// RunJob is one input record processed by the batch pool
type RunJob struct {
	InputPath string
	OutDir    string
	Runner    Runner
	Limiter   *Limiter // optional; throttles runs that call an LLM
	LimitKey  string
}

// RunOutcome is the per-input result collected by the batch runner. A
// failed run is recorded, never propagated: one bad record must not abort
// the batch.
type RunOutcome struct {
	InputPath string
	RunID     string
	Title     string
	Result    *model.RunResult
	Err       error
}

// GetError returns the job's error
func (o *RunOutcome) GetError() error {
	return o.Err
}

// Execute runs the pipeline for one input file
func (j *RunJob) Execute(ctx context.Context) Result {
	outcome := &RunOutcome{
		InputPath: j.InputPath,
		RunID:     runIDFromPath(j.InputPath),
		Title:     readTitle(j.InputPath),
	}

	if j.Limiter != nil && j.LimitKey != "" {
		if err := j.Limiter.Wait(ctx, j.LimitKey); err != nil {
			outcome.Err = err
			return outcome
		}
	}

	result, err := j.Runner.RunFile(ctx, j.InputPath, j.OutDir, "")
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Result = result
	return outcome
}

// BatchProcessor runs every input record in a directory
type BatchProcessor struct {
	runner      Runner
	concurrency int
	limiter     *Limiter
	limitKey    string
}

// NewBatchProcessor creates a batch processor. limitKey selects the rate
// limiter bucket for LLM-backed runs; empty disables throttling.
func NewBatchProcessor(runner Runner, concurrency int, limiter *Limiter, limitKey string) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
		limiter:     limiter,
		limitKey:    limitKey,
	}
}

// ProcessDir discovers *.json inputs (sorted by name), runs each under
// <outputDir>/runs/<stem>/, and returns outcomes in input order.
func (b *BatchProcessor) ProcessDir(ctx context.Context, inputsDir, outputDir string) ([]*RunOutcome, error) {
	inputs, err := DiscoverInputs(inputsDir)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no *.json input files found in %s", inputsDir)
	}

	runsDir := filepath.Join(outputDir, "runs")
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		return nil, fmt.Errorf("create runs directory: %w", err)
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, input := range inputs {
		pool.Submit(&RunJob{
			InputPath: input,
			OutDir:    filepath.Join(runsDir, runIDFromPath(input)),
			Runner:    b.runner,
			Limiter:   b.limiter,
			LimitKey:  b.limitKey,
		})
	}

	results := pool.Wait()

	outcomes := make([]*RunOutcome, 0, len(results))
	for _, r := range results {
		outcomes = append(outcomes, r.(*RunOutcome))
	}
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].InputPath < outcomes[j].InputPath
	})
	return outcomes, nil
}

// DiscoverInputs lists the *.json files of a directory, sorted by name
func DiscoverInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read inputs directory: %w", err)
	}

	var inputs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		inputs = append(inputs, filepath.Join(dir, e.Name()))
	}
	sort.Strings(inputs)
	return inputs, nil
}

func runIDFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".json")
}

// readTitle extracts the title field for summary records without running
// the full pipeline. Failures fall back to the file stem.
func readTitle(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return runIDFromPath(path)
	}
	var probe struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Title == "" {
		return runIDFromPath(path)
	}
	return probe.Title
}
