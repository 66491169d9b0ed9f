package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/humanklu/hkp/internal/artifact"
	"github.com/humanklu/hkp/internal/ledger"
	"github.com/humanklu/hkp/internal/model"
	"github.com/humanklu/hkp/internal/pipeline"
	"github.com/humanklu/hkp/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	batchOutput  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <inputs-dir>",
	Short: "Score every claim report in a directory",
	Long: `Batch runs the pipeline for every *.json record in a directory:
- One run per input, artifacts under <output>/runs/<stem>/
- Failed records are isolated as ERROR rows, never aborting the batch
- All runs chain into one shared ledger
- Aggregates summary.json and summary.csv with counts and averages

Example:
  hkp batch ./inputs
  hkp batch ./inputs --output ./batch_run --concurrency 4
  hkp batch ./inputs --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchOutput, "output", "./batch_run", "output directory")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 1, "number of concurrent runs")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&ledgerPath, "ledger", "ledger.jsonl", "path to the shared certification ledger")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the LLM summary cache")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation for inputs without a summary")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputsDir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	workers := cfg.Concurrency.Workers

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  HumanKlu Batch Runner — %s\n", model.PipelineVersion)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Inputs:   %s\n", inputsDir)
	fmt.Fprintf(os.Stderr, "  Output:   %s\n", batchOutput)
	fmt.Fprintf(os.Stderr, "  Ledger:   %s\n", cfg.Ledger.Path)
	fmt.Fprintf(os.Stderr, "  Workers:  %d\n", workers)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:      %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(batchOutput, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// One ledger handle shared by all workers keeps the chain intact
	led := ledger.Open(cfg.Ledger.Path)
	p := pipeline.NewPipeline(cfg, led)

	var limiter *worker.Limiter
	limitKey := ""
	if cfg.LLM.Provider != "" {
		limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
		limitKey = cfg.LLM.Provider
	}

	processor := worker.NewBatchProcessor(p, workers, limiter, limitKey)
	outcomes, err := processor.ProcessDir(ctx, inputsDir, batchOutput)
	if err != nil {
		return fmt.Errorf("process inputs: %w", err)
	}

	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", o.RunID, o.Err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s  (HCI=%v  %s)\n", o.RunID, o.Result.HCI, o.Result.CertLevel)
	}

	summary := worker.BuildSummary(outcomes)

	summaryJSON := filepath.Join(batchOutput, "summary.json")
	if err := artifact.WriteJSON(summaryJSON, summary); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ summary.json  → %s\n", summaryJSON)

	summaryCSV := filepath.Join(batchOutput, "summary.csv")
	if err := summary.WriteCSV(summaryCSV); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ summary.csv   → %s\n", summaryCSV)

	// Console distribution
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch complete: %d runs\n", summary.TotalRuns)
	if summary.AvgHCI != nil {
		fmt.Fprintf(os.Stderr, "  avg HCI:            %v\n", *summary.AvgHCI)
		fmt.Fprintf(os.Stderr, "  avg EVID_effective: %v\n", *summary.AvgEvidEffective)
		fmt.Fprintf(os.Stderr, "  avg inferred_ratio: %v\n", *summary.AvgInferredRatio)
	}
	fmt.Fprintf(os.Stderr, "  Level distribution:\n")
	for _, lvl := range model.CertLevelOrder {
		if n := summary.LevelCount(lvl); n > 0 {
			fmt.Fprintf(os.Stderr, "    %-22s %d\n", lvl, n)
		}
	}
	if n := summary.CountsByLevel[worker.ErrorLevel]; n > 0 {
		fmt.Fprintf(os.Stderr, "    %-22s %d\n", worker.ErrorLevel, n)
	}
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
