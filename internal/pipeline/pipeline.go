// Package pipeline orchestrates one calibration run: validate, score,
// certify, assemble artifacts, render the report, and chain the ledger.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/humanklu/hkp/internal/artifact"
	"github.com/humanklu/hkp/internal/idgen"
	"github.com/humanklu/hkp/internal/ledger"
	"github.com/humanklu/hkp/internal/llm"
	"github.com/humanklu/hkp/internal/model"
	"github.com/humanklu/hkp/internal/score"
	"github.com/humanklu/hkp/internal/validate"
)

// Artifact file names within a run directory
const (
	EvidenceFile = "evidence.json"
	ScoreFile    = "sci_score.json"
	ReportFile   = "report.html"
	AuditFile    = "humanklu_audit.json"
)

// Pipeline wires the engine stages together. Stages run strictly forward;
// no stage re-enters an earlier one.
type Pipeline struct {
	validator  *validate.Validator
	scorer     *score.Scorer
	classifier *score.Classifier
	assembler  *artifact.Assembler
	renderer   *Renderer
	ledger     *ledger.Ledger
	ids        idgen.Generator
	summarizer *llm.Summarizer // nil when disabled
	config     *model.Config
}

// NewPipeline creates a pipeline with the given configuration and ledger.
// The ledger handle is shared across runs; it is the only cross-run state.
func NewPipeline(cfg *model.Config, led *ledger.Ledger) *Pipeline {
	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM), cfg.Cache)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM summarizer disabled: %v\n", err)
		} else {
			summarizer = s
		}
	}

	ids := idgen.NewRandom()
	return &Pipeline{
		validator:  validate.NewValidator(),
		scorer:     score.NewScorer(),
		classifier: score.NewClassifier(),
		assembler:  artifact.NewAssembler(ids),
		renderer:   NewRenderer(),
		ledger:     led,
		ids:        ids,
		summarizer: summarizer,
		config:     cfg,
	}
}

// SetIDGenerator swaps the identifier generator (deterministic tests)
func (p *Pipeline) SetIDGenerator(ids idgen.Generator) {
	p.ids = ids
	p.assembler = artifact.NewAssembler(ids)
}

// LoadInput reads and decodes one input record from disk
func LoadInput(path string) (*model.InputRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var rec model.InputRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode input %s: %w", path, err)
	}
	return &rec, nil
}

// Run executes one calibration run for a validated input record, emitting
// the four artifacts into outDir and appending one ledger entry. runID
// overrides the generated report identifier when non-empty.
func (p *Pipeline) Run(ctx context.Context, rec *model.InputRecord, outDir, runID string) (*model.RunResult, error) {
	if err := p.validator.Check(rec); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	now := ts.Format(time.RFC3339)

	reportID := runID
	if reportID == "" {
		reportID = p.ids.ReportID(ts.Year())
	}

	claims := validate.NormalizeClaims(rec.Claims)
	dims := validate.NormalizeDimensions(rec.Dimensions)

	// Derived metrics
	inferredRatio := p.scorer.InferredRatio(claims)
	evidRaw := dims.EVID.Score
	evidEffective, ceilingNote := p.scorer.ApplyCeiling(evidRaw, inferredRatio)
	absenceFlags := p.scorer.DetectAbsenceAssertions(claims)
	hci := p.scorer.HCI(dims, evidEffective)

	cert := p.classifier.Classify(dims, evidEffective, hci, inferredRatio,
		rec.HallucinationFlags, len(absenceFlags) > 0)

	p.logf("  ℹ  inferred_ratio=%.4f  EVID_raw=%v  EVID_eff=%v", inferredRatio, evidRaw, evidEffective)
	if ceilingNote != nil {
		p.logf("  ⚠  %s", *ceilingNote)
	}
	if len(absenceFlags) > 0 {
		p.logf("  🚩 %d %s flag(s)", len(absenceFlags), model.FlagAbsenceAssertion)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}

	absenceIDs := make(map[string]bool, len(absenceFlags))
	for _, f := range absenceFlags {
		absenceIDs[f.ClaimID] = true
	}

	// 1. evidence.json
	evidence := p.assembler.BuildEvidenceRecord(reportID, claims, absenceIDs, inferredRatio, now)
	evidencePath := filepath.Join(outDir, EvidenceFile)
	if err := artifact.WriteJSON(evidencePath, evidence); err != nil {
		return nil, err
	}
	p.logf("  ✓ %s", EvidenceFile)

	// 2. sci_score.json
	sci := p.assembler.BuildScoreRecord(reportID, dims, evidRaw, evidEffective, hci,
		inferredRatio, cert, ceilingNote, rec.HallucinationFlags, absenceFlags, now)
	scorePath := filepath.Join(outDir, ScoreFile)
	if err := artifact.WriteJSON(scorePath, sci); err != nil {
		return nil, err
	}
	p.logf("  ✓ %s  (HCI=%v  CERT=%s  EVID_eff=%v)", ScoreFile, hci, cert.Level, evidEffective)

	// Optional LLM summary for the report body only. Scoring is already
	// done and hashed inputs below cover only the emitted artifacts.
	summary := rec.Summary
	if summary == "" && p.summarizer != nil {
		generated, err := p.summarizer.Summarize(ctx, rec, claims, sci)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM summary generation failed: %v\n", err)
		} else {
			summary = generated
		}
	}

	// 3. report.html
	reportPath := filepath.Join(outDir, ReportFile)
	if err := p.renderer.WriteHTML(reportPath, rec, summary, claims, sci, now); err != nil {
		return nil, err
	}
	p.logf("  ✓ %s", ReportFile)

	// 4. humanklu_audit.json, sealing the other three by content hash
	hashes := make(map[string]string, 3)
	for name, path := range map[string]string{
		"report_html":    reportPath,
		"evidence_json":  evidencePath,
		"sci_score_json": scorePath,
	} {
		h, err := artifact.HashFile(path)
		if err != nil {
			return nil, err
		}
		hashes[name] = h
	}

	audit := p.assembler.BuildAuditRecord(sci, hashes, now, ts)
	auditPath := filepath.Join(outDir, AuditFile)
	if err := artifact.WriteJSON(auditPath, audit); err != nil {
		return nil, err
	}
	p.logf("  ✓ %s  (audit_id=%s)", AuditFile, audit.AuditID)

	// 5. ledger entry
	authorModel := rec.Author.ModelVersion
	if authorModel == "" {
		authorModel = "unknown"
	}
	entry := p.assembler.BuildLedgerEntry(sci, audit.AuditID, authorModel, now, ts)
	if _, err := p.ledger.Append(entry); err != nil {
		return nil, err
	}
	p.logf("  ✓ ledger  (entry=%s)", entry.EntryID)

	return &model.RunResult{
		ReportID:      reportID,
		CertLevel:     cert.Level,
		HCI:           hci,
		EvidRaw:       evidRaw,
		EvidEffective: evidEffective,
		InferredRatio: inferredRatio,
		Flags:         sci.Flags,
	}, nil
}

// RunFile loads an input record from disk and executes a run
func (p *Pipeline) RunFile(ctx context.Context, inputPath, outDir, runID string) (*model.RunResult, error) {
	rec, err := LoadInput(inputPath)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, rec, outDir, runID)
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.config != nil && p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
