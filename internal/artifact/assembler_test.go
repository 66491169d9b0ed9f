package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/humanklu/hkp/internal/idgen"
	"github.com/humanklu/hkp/internal/model"
)

const testNow = "2026-08-30T12:00:00Z"

var testTime = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func testDims() model.Dimensions {
	return model.Dimensions{
		EVID: model.Dimension{Score: 9.0, Rationale: "strong"},
		MECH: model.Dimension{Score: 8.0, Rationale: "plausible"},
		INC:  model.Dimension{Score: 8.0, Rationale: "aligned"},
		RISK: model.Dimension{Score: 8.0, Rationale: "bounded"},
		SPEC: model.Dimension{Score: 8.0, Rationale: "precise"},
	}
}

func TestHashBytes_Deterministic(t *testing.T) {
	a := HashBytes([]byte("payload"))
	b := HashBytes([]byte("payload"))
	if a != b {
		t.Errorf("Same bytes must hash identically: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(a))
	}
	if a == HashBytes([]byte("payload.")) {
		t.Error("One-byte change must change the hash")
	}
}

func TestHashFile_MatchesBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.json")
	content := []byte(`{"report_id":"HK-2026-ABCDEF"}`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if got != HashBytes(content) {
		t.Errorf("File hash diverges from byte hash")
	}
}

func TestBuildEvidenceRecord_AbsenceFlagAppended(t *testing.T) {
	a := NewAssembler(idgen.NewRandom())

	claims := []model.Claim{
		{ID: "CLM-001", Text: "no public audit exists", EvidenceType: model.EvidenceInferred, Confidence: 0.5, Flags: []string{"PRIOR"}},
		{ID: "CLM-002", Text: "throughput is 4x", EvidenceType: model.EvidenceVerified, Confidence: 0.9,
			Source: &model.Source{Type: "WEB", URI: "https://example.com"}},
	}

	rec := a.BuildEvidenceRecord("HK-2026-ABCDEF", claims, map[string]bool{"CLM-001": true}, 0.5, testNow)

	if rec.PipelineVersion != model.PipelineVersion {
		t.Errorf("Expected %s, got %s", model.PipelineVersion, rec.PipelineVersion)
	}
	if rec.InferredRatio != 0.5 {
		t.Errorf("Expected ratio 0.5, got %v", rec.InferredRatio)
	}
	if len(rec.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(rec.Entries))
	}

	e0 := rec.Entries[0]
	if len(e0.ClaimFlags) != 2 || e0.ClaimFlags[0] != "PRIOR" || e0.ClaimFlags[1] != model.FlagAbsenceAssertion {
		t.Errorf("Expected existing flags plus absence flag, got %v", e0.ClaimFlags)
	}
	if len(rec.Entries[1].ClaimFlags) != 0 {
		t.Errorf("Unflagged claim must carry no derived flags, got %v", rec.Entries[1].ClaimFlags)
	}

	// Input claims are never mutated
	if len(claims[0].Flags) != 1 {
		t.Errorf("Input claim flags mutated: %v", claims[0].Flags)
	}
}

func TestBuildEvidenceRecord_DefaultSource(t *testing.T) {
	a := NewAssembler(idgen.NewRandom())

	longText := strings.Repeat("x", 200)
	claims := []model.Claim{{ID: "CLM-001", Text: longText, EvidenceType: model.EvidenceInferred, Confidence: 0.5}}

	rec := a.BuildEvidenceRecord("HK-2026-ABCDEF", claims, nil, 1.0, testNow)

	src := rec.Entries[0].Source
	if src == nil {
		t.Fatal("Expected synthesized source for unsourced claim")
	}
	if src.Type != "MODEL_REASONING" || src.Title != "AI-generated inference" {
		t.Errorf("Unexpected default source: %+v", src)
	}
	if src.RetrievedAt != testNow {
		t.Errorf("Expected retrieved_at %s, got %s", testNow, src.RetrievedAt)
	}
	if len(src.Excerpt) != 120 {
		t.Errorf("Expected excerpt truncated to 120 chars, got %d", len(src.Excerpt))
	}
}

func TestBuildScoreRecord_FlagAggregation(t *testing.T) {
	a := NewAssembler(idgen.NewRandom())

	absence := []model.AbsenceFlag{{ClaimID: "CLM-001", FlagType: model.FlagAbsenceAssertion, MatchedPhrase: "no audit"}}
	halluc := []string{"FABRICATED_CITATION"}
	note := "EVID capped at 6.5 (inferred_ratio=0.8000 > 0.75)"

	rec := a.BuildScoreRecord("HK-2026-ABCDEF", testDims(), 9.0, 6.5, 7.7, 0.8,
		model.Certification{Level: model.CertRejected}, &note, halluc, absence, testNow)

	if len(rec.Flags) != 2 || rec.Flags[0] != model.FlagAbsenceAssertion || rec.Flags[1] != model.FlagHallucinationDetected {
		t.Errorf("Expected aggregated flags, got %v", rec.Flags)
	}
	if rec.CeilingApplied == nil || *rec.CeilingApplied != note {
		t.Errorf("Ceiling note lost: %v", rec.CeilingApplied)
	}
	if rec.EvidRaw != 9.0 || rec.EvidEffective != 6.5 {
		t.Errorf("Raw/effective pair wrong: %v/%v", rec.EvidRaw, rec.EvidEffective)
	}
	if rec.Dimensions.EVID.Score != 9.0 {
		t.Errorf("Dimensions block must carry the raw EVID, got %v", rec.Dimensions.EVID.Score)
	}
}

func TestBuildScoreRecord_EmptySlicesNotNull(t *testing.T) {
	a := NewAssembler(idgen.NewRandom())

	rec := a.BuildScoreRecord("HK-2026-ABCDEF", testDims(), 8.0, 8.0, 8.0, 0.1,
		model.Certification{Level: model.CertVerified}, nil, nil, nil, testNow)

	if rec.Flags == nil || rec.HallucinationFlags == nil || rec.AbsenceAssertionFlags == nil {
		t.Error("Flag slices must serialize as [] rather than null")
	}
	if len(rec.Flags) != 0 {
		t.Errorf("Expected no flags, got %v", rec.Flags)
	}
	if rec.CeilingApplied != nil {
		t.Errorf("Expected null ceiling note, got %v", *rec.CeilingApplied)
	}
}

func TestBuildAuditRecord(t *testing.T) {
	a := NewAssembler(idgen.NewRandom())

	sci := a.BuildScoreRecord("HK-2026-ABCDEF", testDims(), 9.0, 9.0, 8.2, 0.1,
		model.Certification{Level: model.CertPro, ProRequiresSecondReview: true}, nil, nil, nil, testNow)

	hashes := map[string]string{
		"report_html":   "aaa",
		"evidence_json": "bbb",
		"sci_score_json": "ccc",
	}

	audit := a.BuildAuditRecord(sci, hashes, testNow, testTime)

	if !strings.HasPrefix(audit.AuditID, "AUD-2026-") {
		t.Errorf("Unexpected audit ID: %s", audit.AuditID)
	}
	if audit.HKPVersion != model.HKPVersion || audit.PipelineVersion != model.PipelineVersion {
		t.Errorf("Version fields wrong: %s / %s", audit.HKPVersion, audit.PipelineVersion)
	}
	if len(audit.ArtifactHashes) != 3 {
		t.Errorf("Expected 3 artifact hashes, got %d", len(audit.ArtifactHashes))
	}
	if audit.SciSummary.EVID != 9.0 || audit.SciSummary.HCI != 8.2 {
		t.Errorf("Sci summary wrong: %+v", audit.SciSummary)
	}
	if audit.HumanReviewer != nil {
		t.Error("Human reviewer must start null")
	}
	if !audit.ProRequiresSecondReview {
		t.Error("Pro review obligation lost")
	}

	meta := model.CertPro.Meta()
	if audit.Badge.Label != meta.Label || audit.Badge.BorderColor != meta.Border {
		t.Errorf("Badge does not match tier metadata: %+v", audit.Badge)
	}
	if audit.Badge.HCIDisplay != "8.2/10" {
		t.Errorf("Expected 8.2/10, got %s", audit.Badge.HCIDisplay)
	}
}

func TestBuildLedgerEntry(t *testing.T) {
	a := NewAssembler(idgen.NewRandom())

	sci := a.BuildScoreRecord("HK-2026-ABCDEF", testDims(), 9.0, 9.0, 8.2, 0.1,
		model.Certification{Level: model.CertPro, ProRequiresSecondReview: true}, nil, nil, nil, testNow)

	entry := a.BuildLedgerEntry(sci, "AUD-2026-AAAABBBB", "gpt-4o-mini", testNow, testTime)

	if !strings.HasPrefix(entry.EntryID, "LED-") {
		t.Errorf("Unexpected entry ID: %s", entry.EntryID)
	}
	if entry.EventType != model.EventCreated {
		t.Errorf("Expected %s, got %s", model.EventCreated, entry.EventType)
	}
	if entry.ReportID != "HK-2026-ABCDEF" || entry.AuditID != "AUD-2026-AAAABBBB" {
		t.Errorf("Cross-references wrong: %s / %s", entry.ReportID, entry.AuditID)
	}
	if entry.HCI != 8.2 || entry.EvidEffective != 9.0 || entry.InferredRatio != 0.1 {
		t.Errorf("Metrics wrong: %+v", entry)
	}
	if entry.PrevEntryID != nil {
		t.Error("Back-reference is the ledger's job, must start nil")
	}
}

func TestWriteJSON_IndentedWithNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	if err := WriteJSON(path, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.HasSuffix(s, "\n") {
		t.Error("Expected trailing newline")
	}
	if !strings.Contains(s, "  \"k\": \"v\"") {
		t.Errorf("Expected two-space indentation, got %q", s)
	}
}
