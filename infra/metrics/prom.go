package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/workplan/core/metrics"
)

// PromSink records simulation runs in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	days        *prometheus.GaugeVec
	unscheduled prometheus.Gauge
	rejected    prometheus.Counter
	duration    prometheus.Histogram
	utilization prometheus.Histogram
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workplan_runs_total",
		Help: "Total number of simulation runs by outcome",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if s.days, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "workplan_last_run_days",
		Help: "Day counts of the most recent run",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if s.unscheduled, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "workplan_last_run_unscheduled_tasks",
		Help: "Tasks left unscheduled by the most recent run",
	})); err != nil {
		return nil, err
	}
	if s.rejected, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workplan_rejected_rows_total",
		Help: "Input rows rejected before simulation",
	})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "workplan_simulation_duration_seconds",
		Help:    "Wall time spent simulating a run",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "workplan_daily_utilization_ratio",
		Help:    "Share of the worker pool assigned on each simulated day",
		Buckets: prometheus.LinearBuckets(0.25, 0.25, 4),
	})); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when an identical one
// exists, so several sinks can share a registerer.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the run counter and the last-run gauges.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	outcome := "complete"
	if ev.Summary.Unscheduled > 0 {
		outcome = "incomplete"
	}
	s.runs.WithLabelValues(outcome).Inc()
	s.days.WithLabelValues("working").Set(float64(ev.Summary.WorkingDays))
	s.days.WithLabelValues("calendar").Set(float64(ev.Summary.CalendarDays))
	s.days.WithLabelValues("makespan").Set(float64(ev.Summary.MakespanDays))
	s.unscheduled.Set(float64(ev.Summary.Unscheduled))
	s.rejected.Add(float64(ev.Rejected))
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordAllocations observes the pool utilisation of every logged day.
func (s *PromSink) RecordAllocations(ev coremetrics.AllocationEvent) error {
	if ev.Pool <= 0 {
		return nil
	}
	for _, d := range ev.Daily {
		s.utilization.Observe(float64(d.Total()) / float64(ev.Pool))
	}
	return nil
}
