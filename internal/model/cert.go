package model

// CertLevel is one of the five mutually exclusive certification tiers,
// ordered by strictness: INSTITUTIONAL > PRO > VERIFIED > REVIEWED > REJECTED
type CertLevel string

const (
	CertInstitutional CertLevel = "HK-INSTITUTIONAL"
	CertPro           CertLevel = "HK-PRO"
	CertVerified      CertLevel = "HK-VERIFIED"
	CertReviewed      CertLevel = "HK-REVIEWED"
	CertRejected      CertLevel = "HK-REJECTED"
)

// CertMeta holds the presentation constants for a certification tier
type CertMeta struct {
	BG     string
	Border string
	Text   string
	Icon   string
	Label  string
}

// certMeta maps each tier to its badge colours (HKP v1.1 palette).
// Presentation data lives here, never in the classifier.
var certMeta = map[CertLevel]CertMeta{
	CertInstitutional: {BG: "#1A1200", Border: "#D4AF37", Text: "#D4AF37", Icon: "🏛", Label: "HK-INSTITUTIONAL"},
	CertPro:           {BG: "#0D2010", Border: "#D4AF37", Text: "#34D399", Icon: "⭐", Label: "HK-PRO"},
	CertVerified:      {BG: "#0D2010", Border: "#34D399", Text: "#34D399", Icon: "✅", Label: "HK-VERIFIED"},
	CertReviewed:      {BG: "#1A1500", Border: "#FBBF24", Text: "#FBBF24", Icon: "🔍", Label: "HK-REVIEWED"},
	CertRejected:      {BG: "#1A0A0A", Border: "#F87171", Text: "#F87171", Icon: "❌", Label: "HK-REJECTED"},
}

// Meta returns the badge metadata for the tier. Unknown tiers fall back to
// the rejected palette so a rendering path never dereferences a missing entry.
func (l CertLevel) Meta() CertMeta {
	if m, ok := certMeta[l]; ok {
		return m
	}
	return certMeta[CertRejected]
}

// CertLevelOrder lists the tiers from strictest to laxest, the order gates
// are evaluated and batch distributions are printed.
var CertLevelOrder = []CertLevel{
	CertInstitutional,
	CertPro,
	CertVerified,
	CertReviewed,
	CertRejected,
}
