// Package app wires one planning run end to end: task rows are parsed,
// simulated, summarised, then persisted, exported, recorded in the metrics
// sinks and published over MQTT.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/workplan/config"
	coremetrics "github.com/kilianp07/workplan/core/metrics"
	"github.com/kilianp07/workplan/core/model"
	coremqtt "github.com/kilianp07/workplan/core/mqtt"
	"github.com/kilianp07/workplan/core/planner"
	"github.com/kilianp07/workplan/core/report"
	"github.com/kilianp07/workplan/core/runlog"
	"github.com/kilianp07/workplan/core/scheduler"
	"github.com/kilianp07/workplan/infra/logger"
	_ "github.com/kilianp07/workplan/infra/metrics"
	"github.com/kilianp07/workplan/infra/mqtt"
	"github.com/kilianp07/workplan/pkg/export"
)

// ErrNoTasks is returned when no input row survives validation.
var ErrNoTasks = errors.New("no schedulable tasks")

// Options holds the collaborators of a Service. Nil fields are replaced by
// no-op implementations.
type Options struct {
	Store     runlog.Store
	Sink      coremetrics.MetricsSink
	Publisher coremqtt.Publisher
	Export    config.ExportConfig
	// Defaults are the settings requests are merged onto.
	Defaults scheduler.Settings
	Logger   logger.Logger
	// Now and NewID are overridden in tests.
	Now   func() time.Time
	NewID func() string
}

// Service runs schedules and fans the results out.
type Service struct {
	store     runlog.Store
	sink      coremetrics.MetricsSink
	publisher coremqtt.Publisher
	export    config.ExportConfig
	defaults  scheduler.Settings
	log       logger.Logger
	now       func() time.Time
	newID     func() string
	closers   []func() error
}

// New creates a Service from explicit collaborators.
func New(opts Options) *Service {
	s := &Service{
		store:     opts.Store,
		sink:      opts.Sink,
		publisher: opts.Publisher,
		export:    opts.Export,
		defaults:  opts.Defaults,
		log:       opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.store == nil {
		s.store = runlog.NopStore{}
	}
	if s.sink == nil {
		s.sink = coremetrics.NopSink{}
	}
	if s.log == nil {
		s.log = logger.New("service")
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// NewFromConfig builds the store, metrics sinks and MQTT publisher
// described by cfg.
func NewFromConfig(cfg *config.Config) (*Service, error) {
	store, err := runlog.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("run store: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	opts := Options{Store: store, Sink: sink, Export: cfg.Export, Defaults: cfg.Schedule}
	var pub *mqtt.PahoPublisher
	if cfg.MQTT.Enabled() {
		if pub, err = mqtt.NewPahoPublisher(cfg.MQTT); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		opts.Publisher = pub
	}
	svc := New(opts)
	svc.closers = append(svc.closers, store.Close)
	if pub != nil {
		svc.closers = append(svc.closers, func() error { pub.Disconnect(); return nil })
	}
	return svc, nil
}

// Outcome is everything produced by one run.
type Outcome struct {
	RunID    string              `json:"run_id"`
	Time     time.Time           `json:"time"`
	Settings scheduler.Settings  `json:"settings"`
	Build    planner.BuildResult `json:"-"`
	Warnings []string            `json:"warnings,omitempty"`
	Result   *scheduler.Result   `json:"-"`
	Document export.Document     `json:"result"`
	Summary  report.Summary      `json:"-"`
	Exported []string            `json:"exported,omitempty"`
	Rejected []planner.Rejection `json:"rejected,omitempty"`
}

// Pool is the worker pool size the run used.
func (o *Outcome) Pool() int { return o.Settings.Workers }

// Schedule validates settings and rows, simulates the plan and distributes
// the result. Side effects other than export only log their failures.
func (s *Service) Schedule(ctx context.Context, settings scheduler.Settings, rows []planner.Row) (*Outcome, error) {
	now := s.now()
	settings.SetDefaults()
	if settings.StartDate == "" {
		settings.StartDate = model.FormatDate(now)
	}
	cfg, holidayWarnings, err := settings.Resolve()
	if err != nil {
		return nil, err
	}
	build := planner.Build(rows, cfg.Workers)
	out := &Outcome{
		RunID:    s.newID(),
		Time:     now,
		Settings: settings,
		Build:    build,
		Rejected: build.Rejected,
	}
	for _, w := range holidayWarnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	for _, w := range build.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	for _, r := range build.Rejected {
		s.log.Warnf("skipping %s", r)
	}
	for _, w := range out.Warnings {
		s.log.Warnf("%s", w)
	}
	if len(build.Tasks) == 0 {
		return out, fmt.Errorf("%w: %d rows rejected", ErrNoTasks, len(build.Rejected))
	}
	for task, missing := range planner.MissingDependencies(build.Tasks) {
		s.log.Warnf("task %q depends on unknown tasks %v", task, missing)
	}

	engine, err := scheduler.New(cfg, s.log)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	res := engine.Run(build.Tasks)
	elapsed := time.Since(started)

	out.Result = res
	out.Summary = report.Summarize(res, cfg.Workers)
	out.Document = export.NewDocument(res, cfg.Workers)
	for _, o := range out.Document.Overcapacity {
		s.log.Errorf("overcapacity on %s: %d workers assigned, pool is %d", model.FormatDate(o.Date), o.Total, o.Pool)
	}
	s.log.Infof("run %s: %d/%d tasks scheduled in %d working days", out.RunID, out.Summary.Scheduled, out.Summary.Tasks, out.Summary.WorkingDays)

	s.persist(ctx, out, build.Tasks)
	s.record(out, elapsed)
	s.publish(out)

	if len(s.export.Formats) > 0 {
		paths, err := export.WriteFiles(s.export.Dir, s.export.Basename, s.export.Formats, res, cfg.Workers)
		out.Exported = paths
		if err != nil {
			return out, fmt.Errorf("export: %w", err)
		}
		s.log.Infof("exported %d files to %s", len(paths), s.export.Dir)
	}
	return out, nil
}

// ScheduleFile loads rows from a task file and schedules them.
func (s *Service) ScheduleFile(ctx context.Context, settings scheduler.Settings, path string) (*Outcome, error) {
	rows, err := planner.LoadRows(path)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return s.Schedule(ctx, settings, rows)
}

// Runs queries the run store.
func (s *Service) Runs(ctx context.Context, q runlog.RunQuery) ([]runlog.RunRecord, error) {
	return s.store.Query(ctx, q)
}

// Publisher returns the result publisher, nil when MQTT is disabled.
func (s *Service) Publisher() coremqtt.Publisher { return s.publisher }

func (s *Service) persist(ctx context.Context, out *Outcome, tasks []model.Task) {
	rec := runlog.RunRecord{
		ID:        out.RunID,
		Timestamp: out.Time,
		Settings:  out.Settings,
		Tasks:     tasks,
		Rejected:  out.Rejected,
		Warnings:  out.Warnings,
		Result:    out.Result,
		Summary:   out.Summary,
	}
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Errorf("store run %s: %v", out.RunID, err)
	}
}

func (s *Service) record(out *Outcome, elapsed time.Duration) {
	ev := coremetrics.RunEvent{
		RunID:    out.RunID,
		Time:     out.Time,
		Duration: elapsed,
		Pool:     out.Pool(),
		Rejected: len(out.Rejected),
		Warnings: len(out.Warnings),
		Summary:  out.Summary,
	}
	if err := s.sink.RecordRun(ev); err != nil {
		s.log.Errorf("record run metrics: %v", err)
	}
	if rec, ok := s.sink.(coremetrics.AllocationRecorder); ok {
		if err := rec.RecordAllocations(coremetrics.AllocationEvent{RunID: out.RunID, Pool: out.Pool(), Daily: out.Result.Daily}); err != nil {
			s.log.Errorf("record allocations: %v", err)
		}
	}
}

// Notice is the MQTT payload announcing a finished run.
type Notice struct {
	RunID       string                 `json:"run_id"`
	Time        time.Time              `json:"time"`
	Summary     report.Summary         `json:"summary"`
	Schedule    []export.ScheduleEntry `json:"schedule"`
	Unscheduled []string               `json:"unscheduled"`
}

func (s *Service) publish(out *Outcome) {
	if s.publisher == nil {
		return
	}
	n := Notice{
		RunID:       out.RunID,
		Time:        out.Time,
		Summary:     out.Summary,
		Schedule:    out.Document.Schedule,
		Unscheduled: out.Document.Unscheduled,
	}
	for _, topic := range []string{"runs/" + out.RunID, "runs/latest"} {
		if err := s.publisher.Publish(topic, n); err != nil {
			s.log.Errorf("publish %s: %v", topic, err)
		}
	}
}

// Close releases the resources opened by NewFromConfig.
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
