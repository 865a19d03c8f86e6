package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/beesafe/broodwatch/internal/corridor"
)

// Metrics holds the gauges describing one verdict and, optionally, one
// neural series result.
type Metrics struct {
	healthy  prometheus.Gauge
	hours    prometheus.Gauge
	maxDrift prometheus.Gauge
	minC     prometheus.Gauge
	maxC     prometheus.Gauge

	hbScore      *prometheus.GaugeVec
	safeFraction *prometheus.GaugeVec
	compliant    *prometheus.GaugeVec
	violations   *prometheus.GaugeVec
}

// NewMetrics creates the gauges and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		healthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "broodwatch_healthy",
			Help: "1 if drift hours are within the allowed maximum, else 0.",
		}),
		hours: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "broodwatch_hours_outside_corridor",
			Help: "Samples outside the brood corridor, one hour each.",
		}),
		maxDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "broodwatch_max_drift_hours",
			Help: "Largest drift total still considered healthy.",
		}),
		minC: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "broodwatch_corridor_min_celsius",
			Help: "Lower brood corridor bound.",
		}),
		maxC: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "broodwatch_corridor_max_celsius",
			Help: "Upper brood corridor bound.",
		}),
		hbScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "broodwatch_neural_hb_score",
			Help: "Honey-bee neuro-safety score in [0, 1].",
		}, []string{"hive"}),
		safeFraction: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "broodwatch_neural_safe_fraction",
			Help: "Share of elapsed time inside the neural corridor.",
		}, []string{"hive"}),
		compliant: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "broodwatch_neural_compliant",
			Help: "1 if the series is BeeSafe compliant, else 0.",
		}, []string{"hive"}),
		violations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "broodwatch_neural_violations",
			Help: "Corridor violations in the series by kind.",
		}, []string{"hive", "kind"}),
	}

	reg.MustRegister(m.healthy, m.hours, m.maxDrift, m.minC, m.maxC,
		m.hbScore, m.safeFraction, m.compliant, m.violations)
	return m
}

// ObserveVerdict sets the brood corridor gauges from v.
func (m *Metrics) ObserveVerdict(v corridor.Verdict) {
	m.healthy.Set(boolToFloat(v.IsHealthy))
	m.hours.Set(v.HoursOutsideCorridor)
	m.maxDrift.Set(corridor.MaxDriftHours)
	m.minC.Set(corridor.MinBroodTempC)
	m.maxC.Set(corridor.MaxBroodTempC)
}

// ObserveSeries sets the neural gauges for res.HiveID. Until it is called
// the labelled families stay empty and are left out of a gather.
func (m *Metrics) ObserveSeries(res corridor.SeriesResult) {
	m.hbScore.WithLabelValues(res.HiveID).Set(res.HBScore)
	m.safeFraction.WithLabelValues(res.HiveID).Set(res.SafeFraction)
	m.compliant.WithLabelValues(res.HiveID).Set(boolToFloat(res.Compliant))

	counts := map[corridor.ViolationKind]int{
		corridor.HiveInternalOverheat: 0,
		corridor.BrainOverheat:        0,
		corridor.WBGTOverheat:         0,
		corridor.CooldownTooSlow:      0,
	}
	for _, v := range res.Violations {
		counts[v.Kind]++
	}
	for kind, n := range counts {
		m.violations.WithLabelValues(res.HiveID, string(kind)).Set(float64(n))
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
