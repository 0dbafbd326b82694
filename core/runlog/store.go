// Package runlog persists simulation runs so that past schedules can be
// listed and compared.
package runlog

import (
	"context"
	"time"

	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/planner"
	"github.com/kilianp07/workplan/core/report"
	"github.com/kilianp07/workplan/core/scheduler"
)

// RunRecord captures one simulation: its inputs, its outcome and the
// derived summary.
type RunRecord struct {
	ID        string              `json:"id"`
	Timestamp time.Time           `json:"timestamp"`
	Settings  scheduler.Settings  `json:"settings"`
	Tasks     []model.Task        `json:"tasks"`
	Rejected  []planner.Rejection `json:"rejected,omitempty"`
	Warnings  []string            `json:"warnings,omitempty"`
	Result    *scheduler.Result   `json:"result"`
	Summary   report.Summary      `json:"summary"`
}

// RunQuery defines filters for retrieving records. Zero values disable a
// filter. Limit keeps only the most recent matches.
type RunQuery struct {
	Start time.Time
	End   time.Time
	Task  string
	Limit int
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// matchTime applies the time window of q.
func (q RunQuery) matchTime(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return true
}

// matchTask reports whether the run scheduled or tried to schedule q.Task.
func (q RunQuery) matchTask(r RunRecord) bool {
	if q.Task == "" {
		return true
	}
	for _, t := range r.Tasks {
		if t.Name == q.Task {
			return true
		}
	}
	return false
}

func (q RunQuery) match(r RunRecord) bool {
	return q.matchTime(r) && q.matchTask(r)
}

func (q RunQuery) limit(recs []RunRecord) []RunRecord {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}
