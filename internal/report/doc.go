// Package report renders a corridor verdict, and optionally a neural series
// result, for humans or machines.
//
// Formats:
//   - text: three lines (health, drift hours, recommendation), followed by a
//     series block when one is present.
//   - json: a single object on one line.
//   - prometheus: a text exposition of the broodwatch_* gauges, suitable for
//     the node_exporter textfile collector.
//
// metrics.go owns the gauge definitions so the same Metrics can be
// registered on any prometheus.Registerer.
package report
