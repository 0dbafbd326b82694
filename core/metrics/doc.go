// Package metrics defines the observability contract of the planner. A run
// is reported once through MetricsSink; sinks able to store per-day data
// also implement AllocationRecorder. Concrete sinks live in infra/metrics
// and are created from configuration through NewMetricsSink.
package metrics
