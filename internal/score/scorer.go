package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/humanklu/hkp/internal/model"
)

// absencePhrases are the trigger phrases for absence-assertion detection,
// checked in listed order against lower-cased claim text. The first match
// is the one reported.
var absencePhrases = []string{
	"no third-party audit",
	"no audit",
	"no evidence found",
	"no public audit",
}

const absenceDetail = "Claim asserts absence of evidence but provides no source URI."

// Evidence ceiling thresholds: above each inferred-ratio bound, EVID is
// capped at the paired value. Checked highest bound first.
const (
	ceilingHighRatio = 0.75
	ceilingHighCap   = 6.5
	ceilingMidRatio  = 0.60
	ceilingMidCap    = 7.2
)

// Scorer derives the calibration metrics from normalized claims and
// dimension scores. All methods are pure.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// InferredRatio returns the fraction of claims whose evidence type is
// INFERRED, rounded to 4 decimals. An empty claim list yields exactly 1.0:
// absence of evidence information is never treated as favorable.
func (s *Scorer) InferredRatio(claims []model.Claim) float64 {
	if len(claims) == 0 {
		return 1.0
	}
	inferred := 0
	for _, c := range claims {
		if c.EvidenceType == model.EvidenceInferred {
			inferred++
		}
	}
	return round4(float64(inferred) / float64(len(claims)))
}

// ApplyCeiling caps the raw EVID score based on the inferred ratio and
// returns the effective score with an explanatory note. The cap is a
// ceiling, never a floor: when raw already sits below the cap the score
// passes through untouched and no note is produced.
func (s *Scorer) ApplyCeiling(evidRaw, inferredRatio float64) (float64, *string) {
	var limit, threshold float64
	switch {
	case inferredRatio > ceilingHighRatio:
		limit, threshold = ceilingHighCap, ceilingHighRatio
	case inferredRatio > ceilingMidRatio:
		limit, threshold = ceilingMidCap, ceilingMidRatio
	default:
		return evidRaw, nil
	}

	if evidRaw <= limit {
		return evidRaw, nil
	}
	note := fmt.Sprintf("EVID capped at %.1f (inferred_ratio=%.4f > %.2f)", limit, inferredRatio, threshold)
	return limit, &note
}

// DetectAbsenceAssertions flags claims whose text asserts that no evidence
// exists while citing no source URI. A claim carrying any source URI is
// never flagged, regardless of its text.
func (s *Scorer) DetectAbsenceAssertions(claims []model.Claim) []model.AbsenceFlag {
	var flags []model.AbsenceFlag
	for _, c := range claims {
		phrase := matchAbsencePhrase(c.Text)
		if phrase == "" {
			continue
		}
		if c.SourceURI() != "" {
			continue
		}
		flags = append(flags, model.AbsenceFlag{
			ClaimID:       c.ID,
			FlagType:      model.FlagAbsenceAssertion,
			MatchedPhrase: phrase,
			Detail:        absenceDetail,
		})
	}
	return flags
}

func matchAbsencePhrase(text string) string {
	lower := strings.ToLower(text)
	for _, p := range absencePhrases {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

// HCI computes the Human Calibration Index: the unweighted mean of the
// effective EVID score and the other four dimension scores, rounded to 2
// decimals. The raw EVID score never enters this calculation.
func (s *Scorer) HCI(dims model.Dimensions, evidEffective float64) float64 {
	sum := evidEffective + dims.MECH.Score + dims.INC.Score + dims.RISK.Score + dims.SPEC.Score
	return round2(sum / 5)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
