package pipeline

import (
	"fmt"
	"html/template"
	"os"

	"github.com/humanklu/hkp/internal/model"
)

// Renderer produces the human-viewable report.html. Rendering is
// deterministic given the score record and claims.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a renderer with the report template parsed
func NewRenderer() *Renderer {
	return &Renderer{tmpl: reportTemplate}
}

type dimRow struct {
	Key      string
	Label    string
	Score    float64
	BarWidth int
}

type claimView struct {
	ID      string
	Type    string
	Color   string
	Absence bool
	Text    string
}

type reportData struct {
	Title           string
	Topic           string
	Summary         string
	ReportID        string
	Date            string
	PipelineVersion string

	Cert model.CertLevel
	Meta model.CertMeta

	HCI         float64
	EvidEff     float64
	InferredPct string

	CeilingNote string
	AbsenceIDs  string
	ProNote     string

	Dims   []dimRow
	Claims []claimView
}

// WriteHTML renders the report for one run and writes it to path
func (r *Renderer) WriteHTML(path string, rec *model.InputRecord, summary string, claims []model.Claim, sci *model.ScoreRecord, now string) error {
	topic := rec.Topic
	if topic == "" {
		topic = "General"
	}

	absenceIDs := make(map[string]bool, len(sci.AbsenceAssertionFlags))
	idList := ""
	for _, f := range sci.AbsenceAssertionFlags {
		absenceIDs[f.ClaimID] = true
		if idList != "" {
			idList += ", "
		}
		idList += f.ClaimID
	}

	views := make([]claimView, 0, len(claims))
	for _, c := range claims {
		color := "#FBBF24"
		if c.EvidenceType == model.EvidenceVerified {
			color = "#34D399"
		}
		views = append(views, claimView{
			ID:      c.ID,
			Type:    string(c.EvidenceType),
			Color:   color,
			Absence: absenceIDs[c.ID],
			Text:    c.Text,
		})
	}

	dims := []dimRow{
		{Key: "EVID", Label: "Evidence Integrity", Score: sci.EvidEffective},
		{Key: "MECH", Label: "Mechanism Clarity", Score: sci.Dimensions.MECH.Score},
		{Key: "INC", Label: "Incentive Decode", Score: sci.Dimensions.INC.Score},
		{Key: "RISK", Label: "Risk Realism", Score: sci.Dimensions.RISK.Score},
		{Key: "SPEC", Label: "Specificity", Score: sci.Dimensions.SPEC.Score},
	}
	for i := range dims {
		dims[i].BarWidth = int(dims[i].Score * 10)
	}

	ceilingNote := ""
	if sci.CeilingApplied != nil {
		ceilingNote = *sci.CeilingApplied
	}

	proNote := ""
	if sci.ProRequiresSecondReview {
		proNote = "📋 HK-PRO: Second reviewer required before publication."
	}
	if sci.InstitutionalRequiresTwoReviews {
		proNote = "🏛 HK-INSTITUTIONAL: Two independent reviewers required."
	}

	date := now
	if len(date) > 10 {
		date = date[:10]
	}

	data := reportData{
		Title:           rec.Title,
		Topic:           topic,
		Summary:         summary,
		ReportID:        sci.ReportID,
		Date:            date,
		PipelineVersion: model.PipelineVersion,
		Cert:            sci.CertLevel,
		Meta:            sci.CertLevel.Meta(),
		HCI:             sci.HCI,
		EvidEff:         sci.EvidEffective,
		InferredPct:     fmt.Sprintf("%.0f%%", sci.InferredRatio*100),
		CeilingNote:     ceilingNote,
		AbsenceIDs:      idList,
		ProNote:         proNote,
		Dims:            dims,
		Claims:          views,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := r.tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}} — HumanKlu™</title>
  <style>
    :root{--bg:#0F1117;--surf:#1A1D27;--brd:#2A2D3E;--txt:#E8EAF0;--mut:#8B8FA8;--acc:#6C63FF;
          --cb:{{.Meta.BG}};--cbo:{{.Meta.Border}};--ct:{{.Meta.Text}};}
    *{box-sizing:border-box;margin:0;padding:0}
    body{font-family:'Inter',system-ui,sans-serif;background:var(--bg);color:var(--txt);
          line-height:1.65;padding:2rem;max-width:860px;margin:0 auto}
    .cert-badge{display:inline-flex;align-items:center;gap:.55rem;
      background:var(--cb);border:2px solid var(--cbo);border-radius:999px;
      padding:.45rem 1.1rem;font-size:.82rem;font-weight:800;letter-spacing:.09em;
      color:var(--ct);margin-bottom:1rem;
      box-shadow:0 0 14px color-mix(in srgb,var(--cbo) 35%,transparent)}
    header{border-bottom:1px solid var(--brd);padding-bottom:1.5rem;margin-bottom:2rem}
    h1{font-size:1.8rem;font-weight:800;line-height:1.25;margin-bottom:.5rem}
    .meta{color:var(--mut);font-size:.85rem}.meta span{margin-right:1.5rem}
    section{margin:2rem 0}
    h2{font-size:1.05rem;font-weight:700;color:var(--acc);text-transform:uppercase;
        letter-spacing:.1em;margin-bottom:1rem}
    .sumbox{background:var(--surf);border-left:3px solid var(--acc);
             padding:1rem 1.25rem;border-radius:0 8px 8px 0}
    .sci-card{background:var(--surf);border:1px solid var(--brd);border-radius:12px;padding:1.5rem}
    .sci-hdr{display:flex;justify-content:space-between;align-items:flex-start;
              margin-bottom:1.5rem;flex-wrap:wrap;gap:.75rem}
    .sci-hci{font-size:2.5rem;font-weight:900;color:var(--ct)}
    .sci-pill{background:color-mix(in srgb,var(--cbo) 18%,transparent);
               color:var(--ct);border:1px solid color-mix(in srgb,var(--cbo) 45%,transparent);
               padding:.4rem 1rem;border-radius:999px;font-weight:700;font-size:.9rem;
               letter-spacing:.08em}
    .sci-sub{font-size:.78rem;color:var(--mut);margin-top:.3rem}
    table.dims{width:100%;border-collapse:collapse}
    table.dims td{padding:.5rem .75rem;vertical-align:middle}
    .dname{font-weight:700;font-size:.85rem;width:13rem;white-space:nowrap}
    .dlabel{font-weight:400;color:var(--mut);font-size:.78rem}
    .bar{height:8px;border-radius:4px;min-width:4px}
    .dscore{font-weight:700;font-size:.9rem;text-align:right;width:2.5rem}
    .claim{background:var(--surf);border:1px solid var(--brd);
            border-radius:8px;padding:1rem;margin-bottom:.75rem}
    .claim p{margin-top:.5rem;font-size:.93rem}
    .cid{font-size:.75rem;font-weight:700;color:var(--mut);font-family:monospace;margin-right:.4rem}
    .cbadge{font-size:.72rem;font-weight:700;padding:.15rem .6rem;
             border-radius:999px;color:#0F1117;letter-spacing:.05em;margin-right:.25rem}
    .notice{background:color-mix(in srgb,#FBBF24 12%,transparent);
             border:1px solid color-mix(in srgb,#FBBF24 35%,transparent);
             border-radius:8px;padding:.75rem 1rem;margin-bottom:.75rem;font-size:.88rem}
    .nwarn{background:color-mix(in srgb,#F87171 12%,transparent);
            border-color:color-mix(in srgb,#F87171 35%,transparent)}
    footer{margin-top:3rem;padding-top:1.5rem;border-top:1px solid var(--brd);
            color:var(--mut);font-size:.8rem;display:flex;
            justify-content:space-between;flex-wrap:wrap;gap:.5rem}
    code{font-family:monospace;font-size:.82rem;color:var(--acc);
          background:var(--surf);padding:.15rem .4rem;border-radius:4px}
  </style>
</head>
<body>
  <header>
    <div class="cert-badge">{{.Meta.Icon}} HumanKlu™ · {{.Cert}}</div>
    <h1>{{.Title}}</h1>
    <div class="meta">
      <span>📋 {{.ReportID}}</span>
      <span>🕒 {{.Date}}</span>
      <span>🏷 {{.Topic}}</span>
      <span>⚗️ {{.PipelineVersion}}</span>
    </div>
  </header>

  <section>
    <h2>Summary</h2>
    <div class="sumbox"><p>{{.Summary}}</p></div>
  </section>

  <section>
    <h2>Signal Confidence Index</h2>
    <div class="sci-card">
      <div class="sci-hdr">
        <div>
          <div style="color:var(--mut);font-size:.8rem;margin-bottom:.25rem">Human Calibration Index</div>
          <div class="sci-hci">{{.HCI}}<span style="font-size:1.2rem;color:var(--mut)">/10</span></div>
          <div class="sci-sub">Inferred: {{.InferredPct}} of claims · EVID_eff: {{.EvidEff}}</div>
        </div>
        <div style="text-align:right">
          <div class="sci-pill">{{.Cert}}</div>
        </div>
      </div>
      {{if .CeilingNote}}<div class="notice">⚠️ <b>EVID Ceiling Applied:</b> {{.CeilingNote}}</div>{{end}}
      {{if .AbsenceIDs}}<div class="notice nwarn">🚩 <b>Absence Assertions Detected:</b> {{.AbsenceIDs}}</div>{{end}}
      {{if .ProNote}}<div class="notice">{{.ProNote}}</div>{{end}}
      <table class="dims">
      {{range .Dims}}
        <tr>
          <td class="dname">{{.Key}}<span class="dlabel"> {{.Label}}</span></td>
          <td><div class="bar" style="width:{{.BarWidth}}%;background:{{$.Meta.Border}}"></div></td>
          <td class="dscore">{{.Score}}</td>
        </tr>
      {{end}}
      </table>
    </div>
  </section>

  <section>
    <h2>Claim Ledger</h2>
    {{range .Claims}}
    <div class="claim">
      <span class="cid">{{.ID}}</span>
      <span class="cbadge" style="background:{{.Color}}">{{.Type}}</span>
      {{if .Absence}}<span class="cbadge" style="background:#F87171">ABSENCE_ASSERTION</span>{{end}}
      <p>{{.Text}}</p>
    </div>
    {{end}}
  </section>

  <footer>
    <span>HumanKlu™ {{.PipelineVersion}} · © 2026 HumanKlu</span>
    <span>Report: <code>{{.ReportID}}</code></span>
  </footer>
</body>
</html>
`))
