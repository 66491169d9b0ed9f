// Package artifact assembles the derived records of one pipeline run and
// ties them together with content hashes.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/humanklu/hkp/internal/idgen"
	"github.com/humanklu/hkp/internal/model"
)

// Assembler builds the evidence, score, audit, and ledger records
type Assembler struct {
	ids idgen.Generator
}

// NewAssembler creates an assembler using the given identifier generator
func NewAssembler(ids idgen.Generator) *Assembler {
	return &Assembler{ids: ids}
}

// BuildEvidenceRecord produces the evidence.json payload: one entry per
// claim, annotated with derived absence flags, plus the root inferred
// ratio. Claim flag slices are copied; the input claims stay untouched.
func (a *Assembler) BuildEvidenceRecord(
	reportID string,
	claims []model.Claim,
	absenceIDs map[string]bool,
	inferredRatio float64,
	now string,
) *model.EvidenceRecord {
	entries := make([]model.EvidenceEntry, 0, len(claims))
	for _, c := range claims {
		flags := make([]string, 0, len(c.Flags)+1)
		flags = append(flags, c.Flags...)
		if absenceIDs[c.ID] {
			flags = append(flags, model.FlagAbsenceAssertion)
		}

		src := c.Source
		if src == nil {
			src = &model.Source{
				Type:        "MODEL_REASONING",
				Title:       "AI-generated inference",
				RetrievedAt: now,
				Excerpt:     truncate(c.Text, 120),
			}
		}

		entries = append(entries, model.EvidenceEntry{
			ClaimID:      c.ID,
			ClaimText:    c.Text,
			EvidenceType: string(c.EvidenceType),
			Source:       src,
			Confidence:   c.Confidence,
			ClaimFlags:   flags,
			Notes:        c.Notes,
		})
	}

	return &model.EvidenceRecord{
		ReportID:        reportID,
		GeneratedAt:     now,
		PipelineVersion: model.PipelineVersion,
		InferredRatio:   inferredRatio,
		Entries:         entries,
	}
}

// BuildScoreRecord produces the sci_score.json payload. The dimensions
// block carries the raw EVID score; the raw/effective pair travels in its
// own fields so the ceiling adjustment is always visible.
func (a *Assembler) BuildScoreRecord(
	reportID string,
	dims model.Dimensions,
	evidRaw, evidEffective, hci, inferredRatio float64,
	cert model.Certification,
	ceilingNote *string,
	hallucinationFlags []string,
	absenceFlags []model.AbsenceFlag,
	now string,
) *model.ScoreRecord {
	allFlags := make([]string, 0, len(absenceFlags)+1)
	for _, f := range absenceFlags {
		allFlags = append(allFlags, f.FlagType)
	}
	if len(hallucinationFlags) > 0 {
		allFlags = append(allFlags, model.FlagHallucinationDetected)
	}

	if hallucinationFlags == nil {
		hallucinationFlags = []string{}
	}
	if absenceFlags == nil {
		absenceFlags = []model.AbsenceFlag{}
	}

	return &model.ScoreRecord{
		ReportID:              reportID,
		GeneratedAt:           now,
		PipelineVersion:       model.PipelineVersion,
		Dimensions:            dims,
		EvidRaw:               evidRaw,
		EvidEffective:         evidEffective,
		HCI:                   hci,
		InferredRatio:         inferredRatio,
		CertLevel:             cert.Level,
		CeilingApplied:        ceilingNote,
		Flags:                 allFlags,
		HallucinationFlags:    hallucinationFlags,
		AbsenceAssertionFlags: absenceFlags,

		ProRequiresSecondReview:         cert.ProRequiresSecondReview,
		InstitutionalRequiresTwoReviews: cert.InstitutionalRequiresTwoReviews,
	}
}

// BuildAuditRecord produces the humanklu_audit.json payload. The hash map
// must cover exactly the report, evidence, and score artifacts.
func (a *Assembler) BuildAuditRecord(
	sci *model.ScoreRecord,
	artifactHashes map[string]string,
	now string,
	ts time.Time,
) *model.AuditRecord {
	meta := sci.CertLevel.Meta()

	return &model.AuditRecord{
		AuditID:         a.ids.AuditID(ts.Year()),
		ReportID:        sci.ReportID,
		CreatedAt:       now,
		HKPVersion:      model.HKPVersion,
		PipelineVersion: model.PipelineVersion,
		ArtifactHashes:  artifactHashes,
		SciSummary: model.SciSummary{
			EVID: sci.Dimensions.EVID.Score,
			MECH: sci.Dimensions.MECH.Score,
			INC:  sci.Dimensions.INC.Score,
			RISK: sci.Dimensions.RISK.Score,
			SPEC: sci.Dimensions.SPEC.Score,
			HCI:  sci.HCI,
		},
		EvidRaw:               sci.EvidRaw,
		EvidEffective:         sci.EvidEffective,
		InferredRatio:         sci.InferredRatio,
		CertLevel:             sci.CertLevel,
		CeilingApplied:        sci.CeilingApplied,
		Flags:                 sci.Flags,
		AbsenceAssertionFlags: sci.AbsenceAssertionFlags,
		HallucinationFlags:    sci.HallucinationFlags,
		HumanReviewer:         nil,
		Badge: model.Badge{
			Label:       meta.Label,
			BorderColor: meta.Border,
			TextColor:   meta.Text,
			Icon:        meta.Icon,
			HCIDisplay:  fmt.Sprintf("%v/10", sci.HCI),
		},

		ProRequiresSecondReview:         sci.ProRequiresSecondReview,
		InstitutionalRequiresTwoReviews: sci.InstitutionalRequiresTwoReviews,
	}
}

// BuildLedgerEntry produces the ledger line for this run. The previous
// entry back-reference is filled in by the ledger at append time.
func (a *Assembler) BuildLedgerEntry(
	sci *model.ScoreRecord,
	auditID, authorModel, now string,
	ts time.Time,
) *model.LedgerEntry {
	return &model.LedgerEntry{
		EntryID:       a.ids.LedgerEntryID(ts),
		Timestamp:     now,
		ReportID:      sci.ReportID,
		AuditID:       auditID,
		EventType:     model.EventCreated,
		CertLevel:     sci.CertLevel,
		HCI:           sci.HCI,
		EvidEffective: sci.EvidEffective,
		InferredRatio: sci.InferredRatio,
		AuthorModel:   authorModel,
		HumanReviewer: nil,
		Notes:         "Initial pipeline run.",
	}
}

// WriteJSON marshals v with two-space indentation and writes it to path
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
