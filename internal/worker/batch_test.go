package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/humanklu/hkp/internal/model"
)

// fakeRunner returns canned results keyed by input file stem
type fakeRunner struct {
	mu      sync.Mutex
	calls   []string
	results map[string]*model.RunResult
	errs    map[string]error
}

func (f *fakeRunner) RunFile(ctx context.Context, inputPath, outDir, runID string) (*model.RunResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inputPath)
	f.mu.Unlock()

	stem := strings.TrimSuffix(filepath.Base(inputPath), ".json")
	if err, ok := f.errs[stem]; ok {
		return nil, err
	}
	if r, ok := f.results[stem]; ok {
		return r, nil
	}
	return &model.RunResult{ReportID: "HK-2026-" + stem, CertLevel: model.CertReviewed, Flags: []string{}}, nil
}

func writeInput(t *testing.T, dir, stem, title string) string {
	t.Helper()
	data, _ := json.Marshal(map[string]string{"title": title})
	path := filepath.Join(dir, stem+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscoverInputs_SortedJSONOnly(t *testing.T) {
	dir := t.TempDir()

	writeInput(t, dir, "b_record", "B")
	writeInput(t, dir, "a_record", "A")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0755); err != nil {
		t.Fatal(err)
	}

	inputs, err := DiscoverInputs(dir)
	if err != nil {
		t.Fatalf("DiscoverInputs: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("Expected 2 inputs, got %d: %v", len(inputs), inputs)
	}
	if filepath.Base(inputs[0]) != "a_record.json" || filepath.Base(inputs[1]) != "b_record.json" {
		t.Errorf("Inputs not sorted: %v", inputs)
	}
}

func TestProcessDir_RunsAllInputs(t *testing.T) {
	inputsDir := t.TempDir()
	outDir := t.TempDir()

	for i := 1; i <= 5; i++ {
		writeInput(t, inputsDir, fmt.Sprintf("record_%d", i), fmt.Sprintf("Record %d", i))
	}

	runner := &fakeRunner{}
	b := NewBatchProcessor(runner, 3, nil, "")

	outcomes, err := b.ProcessDir(context.Background(), inputsDir, outDir)
	if err != nil {
		t.Fatalf("ProcessDir: %v", err)
	}
	if len(outcomes) != 5 {
		t.Fatalf("Expected 5 outcomes, got %d", len(outcomes))
	}

	// Outcomes come back in input order regardless of completion order
	for i, o := range outcomes {
		want := fmt.Sprintf("record_%d", i+1)
		if o.RunID != want {
			t.Errorf("Outcome %d: expected %s, got %s", i, want, o.RunID)
		}
		if o.Title != fmt.Sprintf("Record %d", i+1) {
			t.Errorf("Outcome %d: title probe failed, got %q", i, o.Title)
		}
		if o.Err != nil {
			t.Errorf("Outcome %d: unexpected error %v", i, o.Err)
		}
	}

	if _, err := os.Stat(filepath.Join(outDir, "runs")); err != nil {
		t.Errorf("Expected runs directory: %v", err)
	}
}

func TestProcessDir_FailureIsolated(t *testing.T) {
	inputsDir := t.TempDir()
	outDir := t.TempDir()

	writeInput(t, inputsDir, "good", "Good")
	writeInput(t, inputsDir, "bad", "Bad")

	runner := &fakeRunner{errs: map[string]error{"bad": fmt.Errorf("boom")}}
	b := NewBatchProcessor(runner, 2, nil, "")

	outcomes, err := b.ProcessDir(context.Background(), inputsDir, outDir)
	if err != nil {
		t.Fatalf("One bad record must not abort the batch: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("Expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].RunID != "bad" || outcomes[0].Err == nil {
		t.Errorf("Expected bad outcome with error, got %+v", outcomes[0])
	}
	if outcomes[1].RunID != "good" || outcomes[1].Err != nil {
		t.Errorf("Expected good outcome, got %+v", outcomes[1])
	}
}

func TestProcessDir_EmptyDirFails(t *testing.T) {
	b := NewBatchProcessor(&fakeRunner{}, 1, nil, "")

	if _, err := b.ProcessDir(context.Background(), t.TempDir(), t.TempDir()); err == nil {
		t.Error("Expected error for directory without inputs")
	}
}

func TestRunJob_LimiterWaitPrecedesRun(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "throttled", "Throttled")

	runner := &fakeRunner{}
	limiter := NewLimiter(1000, 1)

	job := &RunJob{InputPath: path, OutDir: dir, Runner: runner, Limiter: limiter, LimitKey: "openai"}
	result := job.Execute(context.Background())

	outcome := result.(*RunOutcome)
	if outcome.Err != nil {
		t.Fatalf("Execute: %v", outcome.Err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("Expected one run, got %d", len(runner.calls))
	}
}

func TestRunJob_CancelledContextShortCircuits(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "cancelled", "Cancelled")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	limiter := NewLimiter(0.001, 1)
	limiter.Allow("openai") // drain the single burst token

	job := &RunJob{InputPath: path, OutDir: dir, Runner: runner, Limiter: limiter, LimitKey: "openai"}
	outcome := job.Execute(ctx).(*RunOutcome)

	if outcome.Err == nil {
		t.Error("Expected context error from limiter wait")
	}
	if len(runner.calls) != 0 {
		t.Error("Runner must not be called after cancellation")
	}
}
