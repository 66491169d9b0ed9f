package model

// FlagAbsenceAssertion marks a claim asserting "no evidence exists" without a source
const FlagAbsenceAssertion = "ABSENCE_ASSERTION"

// FlagHallucinationDetected aggregates a non-empty hallucination flag list
const FlagHallucinationDetected = "HALLUCINATION_DETECTED"

// AbsenceFlag records one absence-assertion detection
type AbsenceFlag struct {
	ClaimID       string `json:"claim_id"`
	FlagType      string `json:"flag_type"`
	MatchedPhrase string `json:"matched_phrase"`
	Detail        string `json:"detail"`
}

// Certification is the classifier's verdict: a tier plus its obligations
type Certification struct {
	Level                           CertLevel
	ProRequiresSecondReview         bool
	InstitutionalRequiresTwoReviews bool
}

// EvidenceRecord is the evidence.json artifact
type EvidenceRecord struct {
	ReportID        string          `json:"report_id"`
	GeneratedAt     string          `json:"generated_at"`
	PipelineVersion string          `json:"pipeline_version"`
	InferredRatio   float64         `json:"inferred_ratio"`
	Entries         []EvidenceEntry `json:"entries"`
}

// EvidenceEntry is one per-claim evidence line inside evidence.json
type EvidenceEntry struct {
	ClaimID      string   `json:"claim_id"`
	ClaimText    string   `json:"claim_text"`
	EvidenceType string   `json:"evidence_type"`
	Source       *Source  `json:"source"`
	Confidence   float64  `json:"confidence"`
	ClaimFlags   []string `json:"claim_flags"`
	Notes        string   `json:"notes"`
}

// ScoreRecord is the sci_score.json artifact
type ScoreRecord struct {
	ReportID        string     `json:"report_id"`
	GeneratedAt     string     `json:"generated_at"`
	PipelineVersion string     `json:"pipeline_version"`
	Dimensions      Dimensions `json:"dimensions"`
	EvidRaw         float64    `json:"evid_raw"`
	EvidEffective   float64    `json:"evid_effective"`
	HCI             float64    `json:"hci"`
	InferredRatio   float64    `json:"inferred_ratio"`
	CertLevel       CertLevel  `json:"certification_level"`
	// CeilingApplied is null when the ceiling did not lower the raw score
	CeilingApplied        *string       `json:"evid_ceiling_applied"`
	Flags                 []string      `json:"flags"`
	HallucinationFlags    []string      `json:"hallucination_flags"`
	AbsenceAssertionFlags []AbsenceFlag `json:"absence_assertion_flags"`

	ProRequiresSecondReview         bool `json:"pro_requires_second_review,omitempty"`
	InstitutionalRequiresTwoReviews bool `json:"institutional_requires_two_reviews,omitempty"`
}

// SciSummary condenses the five dimensions plus HCI for the audit record.
// EVID here is the raw dimension score, matching the score record's
// dimensions block; the effective value travels separately.
type SciSummary struct {
	EVID float64 `json:"EVID"`
	MECH float64 `json:"MECH"`
	INC  float64 `json:"INC"`
	RISK float64 `json:"RISK"`
	SPEC float64 `json:"SPEC"`
	HCI  float64 `json:"HCI"`
}

// Badge is the rendered tier badge carried by the audit record
type Badge struct {
	Label       string `json:"label"`
	BorderColor string `json:"border_color"`
	TextColor   string `json:"text_color"`
	Icon        string `json:"icon"`
	HCIDisplay  string `json:"hci_display"`
}

// AuditRecord is the humanklu_audit.json artifact
type AuditRecord struct {
	AuditID               string            `json:"audit_id"`
	ReportID              string            `json:"report_id"`
	CreatedAt             string            `json:"created_at"`
	HKPVersion            string            `json:"hkp_version"`
	PipelineVersion       string            `json:"pipeline_version"`
	ArtifactHashes        map[string]string `json:"artifact_hashes"`
	SciSummary            SciSummary        `json:"sci_summary"`
	EvidRaw               float64           `json:"evid_raw"`
	EvidEffective         float64           `json:"evid_effective"`
	InferredRatio         float64           `json:"inferred_ratio"`
	CertLevel             CertLevel         `json:"certification_level"`
	CeilingApplied        *string           `json:"evid_ceiling_applied"`
	Flags                 []string          `json:"flags"`
	AbsenceAssertionFlags []AbsenceFlag     `json:"absence_assertion_flags"`
	HallucinationFlags    []string          `json:"hallucination_flags"`
	HumanReviewer         *string           `json:"human_reviewer"`
	Badge                 Badge             `json:"badge"`

	ProRequiresSecondReview         bool `json:"pro_requires_second_review,omitempty"`
	InstitutionalRequiresTwoReviews bool `json:"institutional_requires_two_reviews,omitempty"`
}

// LedgerEntry is one line of the append-only certification ledger
type LedgerEntry struct {
	EntryID       string    `json:"entry_id"`
	Timestamp     string    `json:"timestamp"`
	ReportID      string    `json:"report_id"`
	AuditID       string    `json:"audit_id"`
	EventType     string    `json:"event_type"`
	CertLevel     CertLevel `json:"certification_level"`
	HCI           float64   `json:"hci"`
	EvidEffective float64   `json:"evid_effective"`
	InferredRatio float64   `json:"inferred_ratio"`
	AuthorModel   string    `json:"author_model"`
	HumanReviewer *string   `json:"human_reviewer"`
	Notes         string    `json:"notes"`
	PrevEntryID   *string   `json:"prev_entry_id"`
}

// EventCreated is the only event type the pipeline emits
const EventCreated = "CREATED"

// RunResult is the engine's summary contract with batch collaborators
type RunResult struct {
	ReportID      string    `json:"report_id"`
	CertLevel     CertLevel `json:"certification_level"`
	HCI           float64   `json:"hci"`
	EvidRaw       float64   `json:"evid_raw"`
	EvidEffective float64   `json:"evid_effective"`
	InferredRatio float64   `json:"inferred_ratio"`
	Flags         []string  `json:"flags"`
}
