package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/beesafe/broodwatch/internal/corridor"
)

var healthyVerdict = corridor.Verdict{
	IsHealthy:            true,
	HoursOutsideCorridor: 1,
	Recommendation:       corridor.RecommendationMaintain,
}

func sampleSeries() *corridor.SeriesResult {
	ts := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	return &corridor.SeriesResult{
		HiveID:           "hive-7",
		TotalSamples:     3,
		SafeFraction:     0.5,
		HBScore:          0.45,
		Compliant:        false,
		LongestViolation: 10 * time.Minute,
		Violations: []corridor.Violation{
			{Timestamp: ts, Kind: corridor.BrainOverheat, Value: 40.5, Threshold: 39},
			{Timestamp: ts.Add(5 * time.Minute), Kind: corridor.BrainOverheat, Value: 41, Threshold: 39},
			{Timestamp: ts.Add(5 * time.Minute), Kind: corridor.WBGTOverheat, Value: 31, Threshold: 30},
		},
	}
}

func TestWrite_TextVerdictOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "text", Report{Verdict: healthyVerdict}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "Healthy: true\n" +
		"Hours outside 33–36°C: 1\n" +
		"Corridor maintained – no action required.\n"
	if buf.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWrite_EmptyFormatIsText(t *testing.T) {
	var a, b bytes.Buffer
	if err := Write(&a, "", Report{Verdict: healthyVerdict}); err != nil {
		t.Fatal(err)
	}
	if err := Write(&b, "text", Report{Verdict: healthyVerdict}); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Errorf("empty format = %q, text = %q", a.String(), b.String())
	}
}

func TestWrite_TextUnhealthyFractionalHours(t *testing.T) {
	v := corridor.Verdict{
		IsHealthy:            false,
		HoursOutsideCorridor: 5,
		Recommendation:       corridor.RecommendationMitigate,
	}
	var buf bytes.Buffer
	if err := Write(&buf, "text", Report{Verdict: v}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "Healthy: false" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[1] != "Hours outside 33–36°C: 5" {
		t.Errorf("line 2 = %q", lines[1])
	}
	if lines[2] != corridor.RecommendationMitigate {
		t.Errorf("line 3 = %q", lines[2])
	}
}

func TestWrite_TextWithSeries(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "text", Report{Verdict: healthyVerdict, Series: sampleSeries()}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Hive: hive-7\n",
		"Samples: 3\n",
		"BeeSafe compliant: false\n",
		"HB score: 0.450\n",
		"Safe fraction: 0.500\n",
		"Longest violation: 10m0s\n",
		"Violations: 3\n",
		"  2026-06-01T12:00:00Z brain_overheat 40.50 > 39.00\n",
		"  2026-06-01T12:05:00Z wbgt_overheat 31.00 > 30.00\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "json", Report{Verdict: healthyVerdict, Series: sampleSeries()}); err != nil {
		t.Fatal(err)
	}

	var got jsonReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if !got.IsHealthy || got.HoursOutsideCorridor != 1 || got.Recommendation != corridor.RecommendationMaintain {
		t.Errorf("verdict fields = %+v", got)
	}
	if got.Series == nil {
		t.Fatal("series missing")
	}
	if got.Series.HiveID != "hive-7" || got.Series.LongestViolationS != 600 {
		t.Errorf("series = %+v", got.Series)
	}
	if len(got.Series.Violations) != 3 || got.Series.Violations[2].Kind != "wbgt_overheat" {
		t.Errorf("violations = %+v", got.Series.Violations)
	}
	if got.Series.Violations[0].Timestamp != "2026-06-01T12:00:00Z" {
		t.Errorf("timestamp = %q", got.Series.Violations[0].Timestamp)
	}
}

func TestWrite_JSONOmitsMissingSeries(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "json", Report{Verdict: healthyVerdict}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "series") {
		t.Errorf("unexpected series key: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "Corridor maintained – no action required.") {
		t.Errorf("recommendation escaped or missing: %s", buf.String())
	}
}

func TestWrite_Prometheus(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "prometheus", Report{Verdict: healthyVerdict}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"# TYPE broodwatch_healthy gauge\n",
		"broodwatch_healthy 1\n",
		"broodwatch_hours_outside_corridor 1\n",
		"broodwatch_max_drift_hours 4\n",
		"broodwatch_corridor_min_celsius 33\n",
		"broodwatch_corridor_max_celsius 36\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "broodwatch_neural_") {
		t.Errorf("neural families present without a series:\n%s", out)
	}
}

func TestWrite_PrometheusWithSeries(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "prometheus", Report{Verdict: healthyVerdict, Series: sampleSeries()}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`broodwatch_neural_hb_score{hive="hive-7"} 0.45`,
		`broodwatch_neural_compliant{hive="hive-7"} 0`,
		`broodwatch_neural_violations{hive="hive-7",kind="brain_overheat"} 2`,
		`broodwatch_neural_violations{hive="hive-7",kind="cooldown_too_slow"} 0`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "xml", Report{Verdict: healthyVerdict})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q on error", buf.String())
	}
}

func TestMetrics_ObserveVerdict(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveVerdict(corridor.Verdict{IsHealthy: false, HoursOutsideCorridor: 6})

	if got := testutil.ToFloat64(m.healthy); got != 0 {
		t.Errorf("healthy = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.hours); got != 6 {
		t.Errorf("hours = %v, want 6", got)
	}
	if got := testutil.ToFloat64(m.maxDrift); got != corridor.MaxDriftHours {
		t.Errorf("max drift = %v", got)
	}
}

func TestMetrics_ObserveSeries(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveSeries(*sampleSeries())

	if n := testutil.CollectAndCount(m.violations); n != 4 {
		t.Errorf("violation series = %d, want one per kind (4)", n)
	}
	if got := testutil.ToFloat64(m.violations.WithLabelValues("hive-7", string(corridor.WBGTOverheat))); got != 1 {
		t.Errorf("wbgt violations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.safeFraction.WithLabelValues("hive-7")); got != 0.5 {
		t.Errorf("safe fraction = %v, want 0.5", got)
	}
}

func TestMetrics_RegisterTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewMetrics(reg)
}
