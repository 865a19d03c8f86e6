package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/beesafe/broodwatch/internal/config"
	"github.com/beesafe/broodwatch/internal/corridor"
)

// promSource reads brood temperatures from a Prometheus text exposition,
// either a local file or an HTTP endpoint. Each sample line of the configured
// metric family becomes one corridor.Sample.
type promSource struct {
	src    config.Source
	client *http.Client
	now    func() time.Time
}

func (s *promSource) Samples(ctx context.Context) ([]corridor.Sample, error) {
	var (
		mfs map[string]*dto.MetricFamily
		err error
	)
	if s.src.Path != "" {
		mfs, err = readMetricsFile(s.src.Path)
	} else {
		mfs, err = fetchMetrics(ctx, s.client, s.src.Endpoint)
	}
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", s.target(), err)
	}

	mf, ok := mfs[s.src.Metric]
	if !ok {
		slog.Warn("source: metric family not found", "target", s.target(), "metric", s.src.Metric)
		return nil, nil
	}

	readAt := s.now()
	var out []corridor.Sample
	for _, m := range mf.GetMetric() {
		if !matchLabels(m, s.src.Labels) {
			continue
		}
		v, ok := metricValue(m)
		if !ok {
			continue
		}
		ts := readAt
		if m.TimestampMs != nil {
			ts = time.UnixMilli(m.GetTimestampMs()).UTC()
		}
		out = append(out, corridor.Sample{Timestamp: ts, TemperatureC: v})
	}

	slices.SortStableFunc(out, func(a, b corridor.Sample) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out, nil
}

func (s *promSource) target() string {
	if s.src.Path != "" {
		return s.src.Path
	}
	return s.src.Endpoint
}

// fetchMetrics performs an HTTP GET to url and returns parsed metric families.
func fetchMetrics(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseMetrics(resp.Body)
}

func readMetricsFile(path string) (map[string]*dto.MetricFamily, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return parseMetrics(f)
}

// parseMetrics decodes a Prometheus text exposition from r into metric families.
// Any parse error fails the whole read: every line is one reading, so a
// partial result would undercount drift.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// metricValue returns the gauge or untyped value of m.
func metricValue(m *dto.Metric) (float64, bool) {
	switch {
	case m.Gauge != nil:
		return m.Gauge.GetValue(), true
	case m.Untyped != nil:
		return m.Untyped.GetValue(), true
	default:
		return 0, false
	}
}

// matchLabels reports whether m carries every label in want.
func matchLabels(m *dto.Metric, want map[string]string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		have[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}
