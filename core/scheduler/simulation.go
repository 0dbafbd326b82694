package scheduler

import (
	"sort"
	"time"

	"github.com/kilianp07/workplan/core/logger"
	"github.com/kilianp07/workplan/core/model"
)

// taskState is the mutable runtime view of a task. Only the simulation that
// created it touches it.
type taskState struct {
	model.Task
	remaining  int
	assigned   int
	start      time.Time
	end        time.Time
	inProgress bool
	completed  bool
}

// simulation carries everything a single Run mutates. Each daily sweep
// first computes its transitions from the current state, then applies them.
type simulation struct {
	cfg Config
	cal Calendar
	log logger.Logger

	tasks      []*taskState // input order
	byPriority []*taskState // ascending priority, ties in input order
	active     []*taskState // in progress and not completed, in admission order
	done       map[string]bool
	ends       map[string]time.Time
	nDone      int

	day      time.Time
	dayCount int
	daily    []model.DayAllocation
}

func newSimulation(cfg Config, cal Calendar, log logger.Logger, tasks []model.Task) *simulation {
	s := &simulation{
		cfg:   cfg,
		cal:   cal,
		log:   log,
		tasks: make([]*taskState, len(tasks)),
		done:  make(map[string]bool, len(tasks)),
		ends:  make(map[string]time.Time, len(tasks)),
	}
	for i, t := range tasks {
		t.Dependencies = append([]string(nil), t.Dependencies...)
		if t.HasManualStart() {
			d := model.Day(*t.ManualStart)
			t.ManualStart = &d
		}
		s.tasks[i] = &taskState{Task: t, remaining: t.TotalHours}
	}
	s.byPriority = append([]*taskState(nil), s.tasks...)
	sort.SliceStable(s.byPriority, func(i, j int) bool {
		return s.byPriority[i].Priority < s.byPriority[j].Priority
	})
	return s
}

func (s *simulation) allCompleted() bool { return s.nDone == len(s.tasks) }

// run advances day by day until every task is complete or the calendar-day
// ceiling is reached. Skipped non-working days count towards the ceiling.
func (s *simulation) run() {
	s.day = s.cal.NextWorkingDay(s.cfg.StartDate)
	for !s.allCompleted() && s.dayCount < s.cfg.MaxDays {
		for !s.cal.IsWorkingDay(s.day) {
			s.advance()
		}
		s.step()
		s.advance()
	}
}

func (s *simulation) advance() {
	s.day = s.day.AddDate(0, 0, 1)
	s.dayCount++
}

func (s *simulation) step() {
	s.completeFinished()
	s.admitReady()
	s.allocate()
	s.applyWork()
}

// completeFinished closes every active task whose remaining effort is used up.
func (s *simulation) completeFinished() {
	var finished []*taskState
	for _, t := range s.active {
		if t.remaining <= 0 {
			finished = append(finished, t)
		}
	}
	if len(finished) == 0 {
		return
	}
	for _, t := range finished {
		t.completed = true
		t.end = s.day
		t.assigned = 0
		s.done[t.Name] = true
		s.ends[t.Name] = s.day
		s.nDone++
		s.log.Debugw("task completed", map[string]any{"task": t.Name, "day": model.FormatDate(s.day)})
	}
	next := s.active[:0]
	for _, t := range s.active {
		if !t.completed {
			next = append(next, t)
		}
	}
	s.active = next
}

// admitReady moves pending tasks to in progress, in priority order, once all
// their dependencies are complete and their manual start has arrived.
func (s *simulation) admitReady() {
	var ready []*taskState
	for _, t := range s.byPriority {
		if t.completed || t.inProgress {
			continue
		}
		if t.HasManualStart() && s.day.Before(*t.ManualStart) {
			continue
		}
		if !s.dependenciesDone(t) {
			continue
		}
		ready = append(ready, t)
	}
	for _, t := range ready {
		t.inProgress = true
		if t.start.IsZero() {
			t.start = s.day
			if t.HasManualStart() {
				t.start = s.manualStart(t)
			}
		}
		s.active = append(s.active, t)
		s.log.Debugw("task admitted", map[string]any{"task": t.Name, "day": model.FormatDate(s.day)})
	}
}

// manualStart is the recorded start of a task with a manual start: the
// manual date, or the end of its last dependency when that is later. It may
// fall on a non-working day or before the first simulated day.
func (s *simulation) manualStart(t *taskState) time.Time {
	start := *t.ManualStart
	for _, d := range t.Dependencies {
		if end := s.ends[d]; end.After(start) {
			start = end
		}
	}
	return start
}

func (s *simulation) dependenciesDone(t *taskState) bool {
	for _, d := range t.Dependencies {
		if !s.done[d] {
			return false
		}
	}
	return true
}

// allocate hands out the pool greedily: active tasks in ascending priority
// each take what they can use today, until the pool runs dry.
func (s *simulation) allocate() {
	order := append([]*taskState(nil), s.active...)
	sort.SliceStable(order, func(i, j int) bool { return order[i].Priority < order[j].Priority })

	available := s.cfg.Workers
	grants := make([]int, len(order))
	for i, t := range order {
		if available <= 0 {
			continue
		}
		demand := min(t.RequestedWorkers, ceilDiv(t.remaining, s.cfg.HoursPerWorkerPerDay))
		grants[i] = min(available, demand)
		available -= grants[i]
	}
	for i, t := range order {
		t.assigned = grants[i]
	}
}

// applyWork burns one day of effort on every in-progress task and appends
// the day to the allocation log.
func (s *simulation) applyWork() {
	entry := model.DayAllocation{Date: s.day, Workers: make(map[string]int, len(s.tasks))}
	for _, t := range s.tasks {
		if t.inProgress && !t.completed {
			t.remaining -= t.assigned * s.cfg.HoursPerWorkerPerDay
		}
		if t.inProgress {
			entry.Workers[t.Name] = t.assigned
		} else {
			entry.Workers[t.Name] = 0
		}
	}
	s.daily = append(s.daily, entry)
}

func (s *simulation) result() *Result {
	res := &Result{
		Schedules:      make([]model.TaskSchedule, len(s.tasks)),
		Daily:          s.daily,
		TaskOrder:      make([]string, len(s.tasks)),
		FirstDay:       s.cal.NextWorkingDay(s.cfg.StartDate),
		CalendarDays:   s.dayCount,
		CeilingReached: !s.allCompleted(),
	}
	for i, t := range s.tasks {
		res.TaskOrder[i] = t.Name
		res.Schedules[i] = model.TaskSchedule{
			Name:             t.Name,
			RequestedWorkers: t.RequestedWorkers,
			Priority:         t.Priority,
			Start:            t.start,
			End:              t.end,
			Started:          t.inProgress,
			Completed:        t.completed,
		}
		if !t.completed {
			res.Unscheduled = append(res.Unscheduled, t.Name)
		}
	}
	return res
}

// ceilDiv divides rounding towards positive infinity.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}
