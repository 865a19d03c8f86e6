package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/beesafe/broodwatch/internal/corridor"
)

// Report is everything one broodcheck run prints.
type Report struct {
	Verdict corridor.Verdict

	// Series is set when neural series validation ran.
	Series *corridor.SeriesResult
}

// Write renders r to w in the given format: text | json | prometheus.
func Write(w io.Writer, format string, r Report) error {
	switch format {
	case "text", "":
		return writeText(w, r)
	case "json":
		return writeJSON(w, r)
	case "prometheus":
		return writePrometheus(w, r)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

func writeText(w io.Writer, r Report) error {
	v := r.Verdict
	if _, err := fmt.Fprintf(w, "Healthy: %t\nHours outside %s–%s°C: %s\n%s\n",
		v.IsHealthy,
		formatFloat(corridor.MinBroodTempC), formatFloat(corridor.MaxBroodTempC),
		formatFloat(v.HoursOutsideCorridor),
		v.Recommendation,
	); err != nil {
		return err
	}

	s := r.Series
	if s == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Hive: %s\nSamples: %d\nBeeSafe compliant: %t\nHB score: %.3f\nSafe fraction: %.3f\nLongest violation: %s\nViolations: %d\n",
		s.HiveID, s.TotalSamples, s.Compliant, s.HBScore, s.SafeFraction,
		s.LongestViolation, len(s.Violations),
	); err != nil {
		return err
	}
	for _, vi := range s.Violations {
		if _, err := fmt.Fprintf(w, "  %s %s %.2f > %.2f\n",
			vi.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"), vi.Kind, vi.Value, vi.Threshold,
		); err != nil {
			return err
		}
	}
	return nil
}

// jsonReport is the wire shape of the json format.
type jsonReport struct {
	IsHealthy            bool        `json:"is_healthy"`
	HoursOutsideCorridor float64     `json:"hours_outside_corridor"`
	Recommendation       string      `json:"recommendation"`
	Series               *jsonSeries `json:"series,omitempty"`
}

type jsonSeries struct {
	HiveID            string          `json:"hive_id"`
	TotalSamples      int             `json:"total_samples"`
	Compliant         bool            `json:"is_beesafe_compliant"`
	HBScore           float64         `json:"hb_score"`
	SafeFraction      float64         `json:"safe_fraction"`
	LongestViolationS float64         `json:"longest_violation_seconds"`
	DurationExceeded  bool            `json:"duration_exceeded"`
	Violations        []jsonViolation `json:"violations"`
}

type jsonViolation struct {
	Timestamp string  `json:"timestamp"` // RFC3339
	Kind      string  `json:"kind"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

func writeJSON(w io.Writer, r Report) error {
	out := jsonReport{
		IsHealthy:            r.Verdict.IsHealthy,
		HoursOutsideCorridor: r.Verdict.HoursOutsideCorridor,
		Recommendation:       r.Verdict.Recommendation,
	}
	if s := r.Series; s != nil {
		js := &jsonSeries{
			HiveID:            s.HiveID,
			TotalSamples:      s.TotalSamples,
			Compliant:         s.Compliant,
			HBScore:           s.HBScore,
			SafeFraction:      s.SafeFraction,
			LongestViolationS: s.LongestViolation.Seconds(),
			DurationExceeded:  s.DurationExceeded,
			Violations:        make([]jsonViolation, 0, len(s.Violations)),
		}
		for _, v := range s.Violations {
			js.Violations = append(js.Violations, jsonViolation{
				Timestamp: v.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
				Kind:      string(v.Kind),
				Value:     v.Value,
				Threshold: v.Threshold,
			})
		}
		out.Series = js
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func writePrometheus(w io.Writer, r Report) error {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveVerdict(r.Verdict)
	if r.Series != nil {
		m.ObserveSeries(*r.Series)
	}

	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("report: gather: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("report: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// formatFloat prints v with the fewest digits that round-trip, so whole
// hours print as "1", not "1.000000".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
