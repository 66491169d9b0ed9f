package worker

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/humanklu/hkp/internal/model"
)

// ErrorLevel is the pseudo-tier recorded for runs that failed outright
const ErrorLevel = "ERROR"

// RunRecord is one row of the batch summary
type RunRecord struct {
	RunID         string   `json:"run_id"`
	InputFile     string   `json:"input_file"`
	Title         string   `json:"title"`
	ReportID      string   `json:"report_id"`
	CertLevel     string   `json:"certification_level"`
	HCI           *float64 `json:"hci"`
	EvidEffective *float64 `json:"evid_effective"`
	InferredRatio *float64 `json:"inferred_ratio"`
	Flags         []string `json:"flags"`
}

// BatchSummary aggregates a whole batch: per-run rows, tier distribution,
// and averages over the runs that produced a score
type BatchSummary struct {
	TotalRuns        int            `json:"total_runs"`
	CountsByLevel    map[string]int `json:"counts_by_level"`
	AvgHCI           *float64       `json:"avg_hci"`
	AvgEvidEffective *float64       `json:"avg_evid_effective"`
	AvgInferredRatio *float64       `json:"avg_inferred_ratio"`
	Runs             []RunRecord    `json:"runs"`
}

// BuildSummary converts batch outcomes into the summary artifact. Failed
// runs become ERROR rows with null metrics and the error text as a flag.
func BuildSummary(outcomes []*RunOutcome) *BatchSummary {
	summary := &BatchSummary{
		TotalRuns:     len(outcomes),
		CountsByLevel: make(map[string]int),
		Runs:          make([]RunRecord, 0, len(outcomes)),
	}

	var hciSum, evidSum, ratioSum float64
	valid := 0

	for _, o := range outcomes {
		rec := RunRecord{
			RunID:     o.RunID,
			InputFile: filepath.Base(o.InputPath),
			Title:     o.Title,
		}

		if o.Err != nil {
			rec.ReportID = ErrorLevel
			rec.CertLevel = ErrorLevel
			rec.Flags = []string{o.Err.Error()}
		} else {
			r := o.Result
			rec.ReportID = r.ReportID
			rec.CertLevel = string(r.CertLevel)
			hci, evid, ratio := r.HCI, r.EvidEffective, r.InferredRatio
			rec.HCI = &hci
			rec.EvidEffective = &evid
			rec.InferredRatio = &ratio
			rec.Flags = r.Flags

			hciSum += hci
			evidSum += evid
			ratioSum += ratio
			valid++
		}

		summary.CountsByLevel[rec.CertLevel]++
		summary.Runs = append(summary.Runs, rec)
	}

	if valid > 0 {
		n := float64(valid)
		summary.AvgHCI = roundPtr(hciSum/n, 3)
		summary.AvgEvidEffective = roundPtr(evidSum/n, 3)
		summary.AvgInferredRatio = roundPtr(ratioSum/n, 4)
	}

	return summary
}

// WriteCSV writes the per-run rows as summary.csv
func (s *BatchSummary) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := []string{
		"run_id", "input_file", "title", "report_id",
		"certification_level", "hci", "evid_effective",
		"inferred_ratio", "flags",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range s.Runs {
		row := []string{
			r.RunID, r.InputFile, r.Title, r.ReportID,
			r.CertLevel,
			formatMetric(r.HCI),
			formatMetric(r.EvidEffective),
			formatMetric(r.InferredRatio),
			strings.Join(r.Flags, "|"),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// LevelCount returns the number of runs at the given tier
func (s *BatchSummary) LevelCount(level model.CertLevel) int {
	return s.CountsByLevel[string(level)]
}

func formatMetric(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func roundPtr(x float64, decimals int) *float64 {
	pow := math.Pow(10, float64(decimals))
	r := math.Round(x*pow) / pow
	return &r
}
