package model

// PipelineVersion identifies the protocol revision stamped into every artifact.
const PipelineVersion = "HKP-1.1"

// HKPVersion is the bare protocol number carried by the audit record.
const HKPVersion = "1.1"

// EvidenceType classifies how a claim is backed
type EvidenceType string

const (
	EvidenceVerified EvidenceType = "VERIFIED" // Backed by a cited source
	EvidenceInferred EvidenceType = "INFERRED" // Model reasoning, no direct source
)

// InputRecord is the raw claim report consumed by one pipeline run
type InputRecord struct {
	Title              string        `json:"title"`                         // Required
	Topic              string        `json:"topic,omitempty"`               // Defaults to "General"
	Summary            string        `json:"summary,omitempty"`
	Claims             []RawClaim    `json:"claims,omitempty"`
	Dimensions         *DimensionSet `json:"dimensions,omitempty"`          // Whole-object default when absent
	HallucinationFlags []string      `json:"hallucination_flags,omitempty"` // Opaque beyond emptiness
	Author             Author        `json:"author,omitempty"`
}

// Author identifies the model that produced the claim report
type Author struct {
	ModelVersion string `json:"model_version,omitempty"`
}

// RawClaim is a claim as supplied by the caller, before normalization.
// Optional numeric fields are pointers so absence is distinguishable.
type RawClaim struct {
	ClaimID      string   `json:"claim_id,omitempty"`
	Text         string   `json:"text"`
	EvidenceType string   `json:"evidence_type,omitempty"`
	Source       *Source  `json:"source,omitempty"`
	SourceURL    string   `json:"source_url,omitempty"` // Legacy top-level URI field
	Confidence   *float64 `json:"confidence,omitempty"`
	ClaimFlags   []string `json:"claim_flags,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// Source describes where a claim's evidence came from
type Source struct {
	Type        string `json:"type"`
	URI         string `json:"uri,omitempty"`
	Title       string `json:"title,omitempty"`
	RetrievedAt string `json:"retrieved_at,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
}

// Claim is a normalized claim. The engine never mutates one after
// normalization; derived flags are appended to copies used for output.
type Claim struct {
	ID           string
	Text         string
	EvidenceType EvidenceType
	Source       *Source
	SourceURL    string
	Confidence   float64
	Flags        []string
	Notes        string
}

// SourceURI returns the claim's source URI, preferring the nested source
// object over the legacy top-level field. Empty means unsourced.
func (c Claim) SourceURI() string {
	if c.Source != nil && c.Source.URI != "" {
		return c.Source.URI
	}
	return c.SourceURL
}

// DimensionSet carries the five rubric dimensions as supplied by the caller.
// Fields are pointers: a partial set is a contract violation surfaced by
// validation, not silently defaulted.
type DimensionSet struct {
	EVID *Dimension `json:"EVID"`
	MECH *Dimension `json:"MECH"`
	INC  *Dimension `json:"INC"`
	RISK *Dimension `json:"RISK"`
	SPEC *Dimension `json:"SPEC"`
}

// Dimension is one rubric dimension score with its rationale
type Dimension struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale,omitempty"`
}

// Dimensions is a fully resolved five-dimension score set
type Dimensions struct {
	EVID Dimension `json:"EVID"`
	MECH Dimension `json:"MECH"`
	INC  Dimension `json:"INC"`
	RISK Dimension `json:"RISK"`
	SPEC Dimension `json:"SPEC"`
}

// DefaultDimensions returns the 5.0 baseline used when the input record
// omits the dimensions object entirely
func DefaultDimensions() Dimensions {
	d := Dimension{Score: 5.0, Rationale: "Default."}
	return Dimensions{EVID: d, MECH: d, INC: d, RISK: d, SPEC: d}
}
