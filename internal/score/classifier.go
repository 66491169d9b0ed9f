package score

import "github.com/humanklu/hkp/internal/model"

// Classifier assigns a certification tier from the derived metrics.
// It is a pure function of its inputs: no per-claim state is inspected
// beyond the pre-computed absence boolean and the hallucination list.
type Classifier struct{}

// NewClassifier creates a new classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify evaluates the tier gates highest-to-lowest; the first gate that
// fires wins. The rejection gate runs first and short-circuits everything.
func (c *Classifier) Classify(
	dims model.Dimensions,
	evidEffective float64,
	hci float64,
	inferredRatio float64,
	hallucinationFlags []string,
	hasAbsenceAssertions bool,
) model.Certification {
	spec := dims.SPEC.Score
	hallucinated := len(hallucinationFlags) > 0

	// Rejection gate
	if hallucinated || evidEffective < 6.0 || hci < 5.5 {
		return model.Certification{Level: model.CertRejected}
	}

	// HK-INSTITUTIONAL
	if hci >= 8.5 &&
		evidEffective >= 8.2 &&
		inferredRatio <= 0.40 &&
		spec >= 7.5 &&
		!hasAbsenceAssertions &&
		!hallucinated {
		return model.Certification{
			Level:                           model.CertInstitutional,
			InstitutionalRequiresTwoReviews: true,
		}
	}

	// HK-PRO
	if hci >= 7.8 &&
		evidEffective >= 7.6 &&
		inferredRatio <= 0.50 &&
		spec >= 7.0 &&
		!hasAbsenceAssertions {
		return model.Certification{
			Level:                   model.CertPro,
			ProRequiresSecondReview: true,
		}
	}

	// HK-VERIFIED
	if hci >= 7.3 &&
		evidEffective >= 7.2 &&
		inferredRatio <= 0.60 &&
		spec >= 6.5 &&
		!hasAbsenceAssertions {
		return model.Certification{Level: model.CertVerified}
	}

	// HK-REVIEWED. The EVID floor repeats the rejection gate's check so the
	// gate reads as a self-contained minimum; the HCI floor is the tighter
	// condition here, leaving hci in [5.5, 6.0) to fall through.
	if hci >= 6.0 && evidEffective >= 6.0 {
		return model.Certification{Level: model.CertReviewed}
	}

	return model.Certification{Level: model.CertRejected}
}
