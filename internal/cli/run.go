package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/humanklu/hkp/internal/ledger"
	"github.com/humanklu/hkp/internal/model"
	"github.com/humanklu/hkp/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	runOutput   string
	runID       string
	ledgerPath  string
	runTimeout  time.Duration
	noCache     bool
	llmProvider string
	llmModel    string
	llmEnabled  bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <input.json>",
	Short: "Score one claim report and emit its artifact bundle",
	Long: `Run scores a single claim report:
- Validate and normalize the input record
- Compute inferred ratio, evidence ceiling, and absence assertions
- Derive the Human Calibration Index and certification tier
- Emit evidence.json, sci_score.json, report.html, humanklu_audit.json
- Append one hash-chained entry to the certification ledger

Example:
  hkp run input.json
  hkp run input.json --output ./runs/run_001 --run-id HK-2026-XXXXXX
  hkp run input.json --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runOutput, "output", "", "output directory (default: ./runs/<input stem>)")
	runCmd.Flags().StringVar(&runID, "run-id", "", "deterministic report ID override")
	runCmd.Flags().StringVar(&ledgerPath, "ledger", "ledger.jsonl", "path to the shared certification ledger")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Minute, "overall run timeout")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the LLM summary cache")

	// LLM flags
	runCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation for inputs without a summary")
	runCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	runCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runRun(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	outDir := runOutput
	if outDir == "" {
		stem := strings.TrimSuffix(filepath.Base(inputPath), ".json")
		outDir = filepath.Join("runs", stem)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Input:  %s\n", inputPath)
		fmt.Fprintf(os.Stderr, "Output: %s\n", outDir)
		fmt.Fprintf(os.Stderr, "Ledger: %s\n", cfg.Ledger.Path)
		fmt.Fprintln(os.Stderr)
	}

	led := ledger.Open(cfg.Ledger.Path)
	p := pipeline.NewPipeline(cfg, led)

	result, err := p.RunFile(ctx, inputPath, outDir, runID)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	// Final summary to stdout, machine-readable
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(out))

	return nil
}

// buildConfig resolves the effective configuration: defaults, then the
// config file and HKP_* environment via viper, then explicit flags
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	if cmd.Flags().Changed("ledger") {
		cfg.Ledger.Path = ledgerPath
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Cache.Dir = cacheDir(cfg.Cache.Dir)

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		cfg.LLM.StrictEvidence = true // Always enforce
	}

	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}
