package corridor

import (
	"errors"
	"fmt"
	"time"
)

// Compliance thresholds for ValidateSeries.
const (
	MinSafeFraction     = 0.95
	MinHBScore          = 0.9
	violationPenalty    = 0.02
	secondsPerMinute    = 60.0
	defaultMaxViolation = 15 * time.Minute
)

// ErrEmptySeries is returned by ValidateSeries when no samples are given.
var ErrEmptySeries = errors.New("corridor: no samples provided")

// MixedHiveError is returned when a series carries more than one hive ID.
type MixedHiveError struct {
	Expected string
	Found    string
}

func (e *MixedHiveError) Error() string {
	return fmt.Sprintf("corridor: mixed hive IDs in series: expected %s, found %s", e.Expected, e.Found)
}

// ThermalSample is one time-stamped measurement window at a hive.
// All temperatures are in °C.
type ThermalSample struct {
	Timestamp     time.Time
	HiveID        string
	AmbientC      float64
	HiveInternalC float64
	WBGTC         float64 // wet bulb globe temperature at hive height
	SolarWm2      float64
	HumidityPct   float64
	BrainTempC    float64 // estimated bee thorax/brain temperature
}

// NeuralCorridor holds the hard caps a hive series must stay under.
type NeuralCorridor struct {
	MaxHiveInternalC float64
	MaxBrainTempC    float64
	MaxWBGTC         float64

	// MaxViolationDuration is the longest contiguous window allowed above
	// any cap before SeriesResult.DurationExceeded is set.
	MaxViolationDuration time.Duration

	// MinCooldownRatePerMin is how fast (°C/min) the hottest dimension must
	// fall once a cap was breached. Zero or negative disables the check.
	MinCooldownRatePerMin float64
}

// DefaultNeuralCorridor returns the conservative honey-bee corridor:
// 35 °C hive internal, 39 °C brain proxy, 30 °C WBGT, 15 minutes maximum
// violation, 0.5 °C/min cooldown.
func DefaultNeuralCorridor() NeuralCorridor {
	return NeuralCorridor{
		MaxHiveInternalC:      35.0,
		MaxBrainTempC:         39.0,
		MaxWBGTC:              30.0,
		MaxViolationDuration:  defaultMaxViolation,
		MinCooldownRatePerMin: 0.5,
	}
}

// ViolationKind names the corridor dimension that failed.
type ViolationKind string

const (
	HiveInternalOverheat ViolationKind = "hive_internal_overheat"
	BrainOverheat        ViolationKind = "brain_overheat"
	WBGTOverheat         ViolationKind = "wbgt_overheat"
	CooldownTooSlow      ViolationKind = "cooldown_too_slow"
)

// Violation is one failed check at one sample.
type Violation struct {
	Timestamp time.Time
	HiveID    string
	Kind      ViolationKind
	Value     float64
	Threshold float64
}

// SeriesResult is the outcome of ValidateSeries.
type SeriesResult struct {
	HiveID       string
	TotalSamples int
	Violations   []Violation

	// SafeFraction is the share (0–1) of elapsed time spent fully inside
	// the corridor.
	SafeFraction float64

	// HBScore is the honey-bee neuro-safety score in [0, 1].
	HBScore float64

	Compliant bool

	// LongestViolation is the longest contiguous window above any cap.
	LongestViolation time.Duration
	DurationExceeded bool
}

// ValidateSeries checks a time-ordered series for a single hive against c.
//
// Every sample is checked against the three caps. Between consecutive
// samples the gap counts as safe time when the later sample is fully safe,
// and, when the earlier sample was over a cap, the cooldown rate is checked.
// Cooldown violations weigh twice in the HB score penalty.
func ValidateSeries(c NeuralCorridor, samples []ThermalSample) (SeriesResult, error) {
	if len(samples) == 0 {
		return SeriesResult{}, ErrEmptySeries
	}

	hiveID := samples[0].HiveID
	for _, s := range samples[1:] {
		if s.HiveID != hiveID {
			return SeriesResult{}, &MixedHiveError{Expected: hiveID, Found: s.HiveID}
		}
	}

	res := SeriesResult{HiveID: hiveID, TotalSamples: len(samples)}

	var (
		safeSeconds, totalSeconds float64
		cooldownViolations        int
		inViolation               bool
		violationStart            time.Time
	)

	for i, s := range samples {
		if i > 0 {
			prev := samples[i-1]
			dt := wholeSeconds(s.Timestamp.Sub(prev.Timestamp))
			if dt < 0 {
				dt = 0
			}
			totalSeconds += dt

			if c.safe(s) {
				safeSeconds += dt
				if inViolation {
					res.noteViolationWindow(s.Timestamp.Sub(violationStart).Truncate(time.Second))
					inViolation = false
				}
			} else if !inViolation {
				inViolation = true
				violationStart = prev.Timestamp
			}

			if c.MinCooldownRatePerMin > 0 && !c.safe(prev) && dt > 0 {
				rate := maxDrop(prev, s) / (dt / secondsPerMinute)
				if rate < c.MinCooldownRatePerMin {
					cooldownViolations++
					res.Violations = append(res.Violations, Violation{
						Timestamp: s.Timestamp,
						HiveID:    hiveID,
						Kind:      CooldownTooSlow,
						Value:     rate,
						Threshold: c.MinCooldownRatePerMin,
					})
				}
			}
		}

		res.Violations = append(res.Violations, c.capViolations(s)...)
	}

	if inViolation {
		res.noteViolationWindow(samples[len(samples)-1].Timestamp.Sub(violationStart).Truncate(time.Second))
	}
	res.DurationExceeded = res.LongestViolation > c.MaxViolationDuration

	if totalSeconds <= 0 {
		// Single sample or no elapsed time: judge the instant alone.
		totalSeconds = 1
		safeSeconds = 0
		if len(res.Violations) == 0 {
			safeSeconds = 1
		}
	}

	res.SafeFraction = clamp01(safeSeconds / totalSeconds)

	hb := res.SafeFraction - violationPenalty*float64(len(res.Violations)+cooldownViolations)
	if hb < 0 {
		hb = 0
	}
	res.HBScore = hb
	res.Compliant = res.SafeFraction >= MinSafeFraction && res.HBScore >= MinHBScore

	return res, nil
}

func (c NeuralCorridor) safe(s ThermalSample) bool {
	return s.HiveInternalC <= c.MaxHiveInternalC &&
		s.BrainTempC <= c.MaxBrainTempC &&
		s.WBGTC <= c.MaxWBGTC
}

// capViolations returns one Violation per cap that s exceeds.
func (c NeuralCorridor) capViolations(s ThermalSample) []Violation {
	var out []Violation
	check := func(kind ViolationKind, value, limit float64) {
		if value > limit {
			out = append(out, Violation{
				Timestamp: s.Timestamp,
				HiveID:    s.HiveID,
				Kind:      kind,
				Value:     value,
				Threshold: limit,
			})
		}
	}
	check(HiveInternalOverheat, s.HiveInternalC, c.MaxHiveInternalC)
	check(BrainOverheat, s.BrainTempC, c.MaxBrainTempC)
	check(WBGTOverheat, s.WBGTC, c.MaxWBGTC)
	return out
}

func (r *SeriesResult) noteViolationWindow(d time.Duration) {
	if d > r.LongestViolation {
		r.LongestViolation = d
	}
}

// maxDrop returns the largest temperature decrease from prev to cur across
// the three capped dimensions. Negative means every dimension warmed.
func maxDrop(prev, cur ThermalSample) float64 {
	d := prev.HiveInternalC - cur.HiveInternalC
	if b := prev.BrainTempC - cur.BrainTempC; b > d {
		d = b
	}
	if w := prev.WBGTC - cur.WBGTC; w > d {
		d = w
	}
	return d
}

// clamp01 restricts v to the range [0, 1].
// wholeSeconds drops the sub-second part of d, rounding toward zero.
func wholeSeconds(d time.Duration) float64 {
	return float64(d / time.Second)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
