package corridor

import (
	"fmt"
	"math"
	"time"
)

// Brood corridor bounds in °C. Both bounds are inside the band.
const (
	MinBroodTempC = 33.0
	MaxBroodTempC = 36.0
)

// MaxDriftHours is the largest drift total that still counts as healthy.
const MaxDriftHours = 4.0

// HoursPerSample is the exposure each sample stands for, regardless of the
// gap to its neighbours.
const HoursPerSample = 1.0

// Recommendation texts. The choice depends only on the health flag.
const (
	RecommendationMaintain = "Corridor maintained – no action required."
	RecommendationMitigate = "Thermal stress detected. Recommend passive external shading or improved ventilation (zero-harm only)."
)

// Sample is one brood temperature reading.
type Sample struct {
	Timestamp    time.Time
	TemperatureC float64
}

// Verdict is the outcome of one Evaluate call.
type Verdict struct {
	IsHealthy            bool
	HoursOutsideCorridor float64
	Recommendation       string
}

// InvalidSampleError reports a sample whose temperature is not a finite number.
type InvalidSampleError struct {
	Index        int
	TemperatureC float64
}

func (e *InvalidSampleError) Error() string {
	return fmt.Sprintf("corridor: sample %d has non-finite temperature %v", e.Index, e.TemperatureC)
}

// Evaluate scans samples once and counts drift hours.
//
// A sample drifts when its temperature is below MinBroodTempC, above
// MaxBroodTempC, or NaN. The series is healthy while the drift total is at
// most MaxDriftHours. An empty slice is healthy with zero drift.
func Evaluate(samples []Sample) Verdict {
	var hours float64
	for _, s := range samples {
		if !InBand(s.TemperatureC) {
			hours += HoursPerSample
		}
	}

	healthy := hours <= MaxDriftHours
	return Verdict{
		IsHealthy:            healthy,
		HoursOutsideCorridor: hours,
		Recommendation:       recommendationFor(healthy),
	}
}

// InBand reports whether t lies inside the brood corridor, bounds included.
// NaN is never in band.
func InBand(t float64) bool {
	return t >= MinBroodTempC && t <= MaxBroodTempC
}

// CheckSamples returns an *InvalidSampleError for the first sample whose
// temperature is NaN or infinite, or nil if all are finite.
func CheckSamples(samples []Sample) error {
	for i, s := range samples {
		if math.IsNaN(s.TemperatureC) || math.IsInf(s.TemperatureC, 0) {
			return &InvalidSampleError{Index: i, TemperatureC: s.TemperatureC}
		}
	}
	return nil
}

func recommendationFor(healthy bool) string {
	if healthy {
		return RecommendationMaintain
	}
	return RecommendationMitigate
}
