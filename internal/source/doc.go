// Package source provides the brood temperature sample providers.
// Each provider returns an ordered []corridor.Sample; the evaluator never
// reads files or sockets itself.
//
// Implemented providers: demo (two built-in hourly readings, demo.go), CSV
// files with a timestamp/temperature_c header (csv.go) and Prometheus text
// expositions from a file or HTTP endpoint (prometheus.go). Factory:
// New(config.Source) returns the correct Source.
//
// The CSV provider also implements SeriesSource, reading the multi-sensor
// columns used by corridor.ValidateSeries.
//
// Endpoint authentication (API key, bearer token, basic) is handled by the
// shared authRoundTripper in base.go.
package source
