// Package corridor classifies hive temperature series against bee safety
// corridors.
//
// evaluate.go provides the pure Evaluate([]Sample) function for the brood
// corridor: every sample outside 33.0–36.0 °C counts as one hour of drift,
// and more than 4 drift hours makes the series unhealthy. Timestamps are
// carried but never used; the one-hour-per-sample assumption is literal.
// NaN temperatures count as drift. CheckSamples lets strict callers reject
// non-finite input before evaluation.
//
// series.go provides ValidateSeries for multi-sensor series checked against
// a NeuralCorridor (hive internal, brain proxy and WBGT caps plus a cooldown
// rate), returning violations, safe fraction and the HB score.
//
// Both functions are stateless and safe for concurrent use.
package corridor
