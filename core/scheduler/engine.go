package scheduler

import (
	"github.com/kilianp07/workplan/core/logger"
	"github.com/kilianp07/workplan/core/model"
)

// Engine runs simulations for a fixed configuration. It holds no state
// between runs, so one Engine may be reused.
type Engine struct {
	cfg Config
	cal Calendar
	log logger.Logger
}

// New validates cfg and returns an Engine. A nil logger discards output.
func New(cfg Config, log logger.Logger) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.StartDate = model.Day(cfg.StartDate)
	return &Engine{cfg: cfg, cal: NewCalendar(cfg.Holidays), log: logger.OrNop(log)}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Calendar returns the working-day calendar in use.
func (e *Engine) Calendar() Calendar { return e.cal }

// Run simulates tasks and returns their schedules and the daily allocation
// log. The input slice is not modified.
func (e *Engine) Run(tasks []model.Task) *Result {
	sim := newSimulation(e.cfg, e.cal, e.log, tasks)
	sim.run()
	res := sim.result()
	e.log.Infof("simulated %d working days over %d calendar days: %d/%d tasks scheduled",
		res.WorkingDays(), res.CalendarDays, len(tasks)-len(res.Unscheduled), len(tasks))
	for _, name := range res.Unscheduled {
		e.log.Warnf("task %q could not be scheduled", name)
	}
	if res.CeilingReached {
		e.log.Warnf("stopped after %d calendar days with %d tasks unfinished", res.CalendarDays, len(res.Unscheduled))
	}
	return res
}

// Run is a convenience wrapper building an Engine for a single simulation.
func Run(cfg Config, tasks []model.Task, log logger.Logger) (*Result, error) {
	e, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	return e.Run(tasks), nil
}
