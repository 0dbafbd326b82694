package metrics

import (
	"time"

	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/report"
)

// RunEvent describes a finished simulation.
type RunEvent struct {
	RunID    string
	Time     time.Time
	Duration time.Duration
	Pool     int
	Rejected int
	Warnings int
	Summary  report.Summary
}

// MetricsSink records simulation runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// AllocationEvent carries the daily allocation log of a run.
type AllocationEvent struct {
	RunID string
	Pool  int
	Daily []model.DayAllocation
}

// AllocationRecorder is implemented by sinks storing per-day assignments.
type AllocationRecorder interface {
	RecordAllocations(ev AllocationEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error { return nil }

func (NopSink) RecordAllocations(AllocationEvent) error { return nil }

// MultiSink fans out events to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordAllocations forwards the log to the sinks that support it.
func (m *MultiSink) RecordAllocations(ev AllocationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AllocationRecorder); ok {
			if err := rec.RecordAllocations(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
