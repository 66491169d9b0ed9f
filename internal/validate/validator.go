package validate

import (
	"fmt"

	"github.com/humanklu/hkp/internal/model"
)

// Validator checks input records against the HKP contract before any
// scoring occurs. Shape problems are reported here as explicit errors
// rather than surfacing later as zero values.
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Check validates the raw input record. It does not modify the record.
func (v *Validator) Check(rec *model.InputRecord) error {
	if rec == nil {
		return fmt.Errorf("input record is nil")
	}
	if rec.Title == "" {
		return fmt.Errorf("input record: title is required")
	}

	if rec.Dimensions != nil {
		if err := checkDimensionSet(rec.Dimensions); err != nil {
			return fmt.Errorf("input record: %w", err)
		}
	}

	for i, c := range rec.Claims {
		if c.Text == "" {
			return fmt.Errorf("input record: claim %d has no text", i+1)
		}
		if c.Confidence != nil && (*c.Confidence < 0 || *c.Confidence > 1) {
			return fmt.Errorf("input record: claim %d confidence %v outside [0,1]", i+1, *c.Confidence)
		}
	}

	return nil
}

func checkDimensionSet(set *model.DimensionSet) error {
	dims := []struct {
		name string
		dim  *model.Dimension
	}{
		{"EVID", set.EVID},
		{"MECH", set.MECH},
		{"INC", set.INC},
		{"RISK", set.RISK},
		{"SPEC", set.SPEC},
	}

	for _, d := range dims {
		if d.dim == nil {
			return fmt.Errorf("dimensions: %s is missing (all five dimensions are required when the object is present)", d.name)
		}
		if d.dim.Score < 0 || d.dim.Score > 10 {
			return fmt.Errorf("dimensions: %s score %v outside [0,10]", d.name, d.dim.Score)
		}
	}
	return nil
}

// NormalizeClaims resolves raw claims into engine claims: sequential
// CLM-NNN identifiers for claims lacking one (input order preserved),
// INFERRED as the fail-safe evidence type, confidence defaulted to 0.5.
func NormalizeClaims(raw []model.RawClaim) []model.Claim {
	claims := make([]model.Claim, 0, len(raw))
	for i, rc := range raw {
		id := rc.ClaimID
		if id == "" {
			id = fmt.Sprintf("CLM-%03d", i+1)
		}

		evType := model.EvidenceType(rc.EvidenceType)
		if evType == "" {
			evType = model.EvidenceInferred
		}

		confidence := 0.5
		if rc.Confidence != nil {
			confidence = *rc.Confidence
		}

		claims = append(claims, model.Claim{
			ID:           id,
			Text:         rc.Text,
			EvidenceType: evType,
			Source:       rc.Source,
			SourceURL:    rc.SourceURL,
			Confidence:   confidence,
			Flags:        rc.ClaimFlags,
			Notes:        rc.Notes,
		})
	}
	return claims
}

// NormalizeDimensions returns the caller's dimension set resolved to
// concrete values, or the 5.0 baseline when the whole object is absent.
// Partial sets never reach here; Check rejects them first.
func NormalizeDimensions(set *model.DimensionSet) model.Dimensions {
	if set == nil {
		return model.DefaultDimensions()
	}
	return model.Dimensions{
		EVID: *set.EVID,
		MECH: *set.MECH,
		INC:  *set.INC,
		RISK: *set.RISK,
		SPEC: *set.SPEC,
	}
}
