// Package metrics provides the concrete metrics sinks: PromSink exposes run
// gauges and histograms to Prometheus, InfluxSink writes runs and daily
// allocations to InfluxDB. Importing the package registers both, plus a
// "nop" sink, with the core/metrics factory.
package metrics
