package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	coremqtt "github.com/kilianp07/workplan/core/mqtt"
	"github.com/kilianp07/workplan/core/planner"
	"github.com/kilianp07/workplan/core/scheduler"
)

// ErrBadRequest marks a request body that could not be decoded.
var ErrBadRequest = errors.New("bad schedule request")

// Request is the wire form of a schedule request, shared by the HTTP API
// and the MQTT request topic. Tasks is a JSON list of task objects;
// TasksCSV carries a CSV task table instead.
type Request struct {
	Settings scheduler.Settings `json:"settings"`
	Tasks    json.RawMessage    `json:"tasks,omitempty"`
	TasksCSV string             `json:"tasks_csv,omitempty"`
}

// DecodeRequest reads a Request and converts its tasks to rows.
func DecodeRequest(r io.Reader) (scheduler.Settings, []planner.Row, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req.Settings, nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	var (
		rows []planner.Row
		err  error
	)
	switch {
	case req.TasksCSV != "":
		rows, err = planner.ReadCSV(strings.NewReader(req.TasksCSV))
	case len(req.Tasks) > 0:
		rows, err = planner.DecodeRows(strings.NewReader(string(req.Tasks)), "json")
	default:
		err = errors.New("tasks or tasks_csv is required")
	}
	if err != nil {
		return req.Settings, nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return req.Settings, rows, nil
}

// mergeSettings overlays the non-zero fields of o on base.
func mergeSettings(base, o scheduler.Settings) scheduler.Settings {
	if o.Workers != 0 {
		base.Workers = o.Workers
	}
	if o.HoursPerWorkerPerDay != 0 {
		base.HoursPerWorkerPerDay = o.HoursPerWorkerPerDay
	}
	if o.StartDate != "" {
		base.StartDate = o.StartDate
	}
	if o.Holidays != nil {
		base.Holidays = o.Holidays
	}
	if o.MaxDays != 0 {
		base.MaxDays = o.MaxDays
	}
	return base
}

// ScheduleRequest decodes a Request and schedules it on top of the
// service's default settings.
func (s *Service) ScheduleRequest(ctx context.Context, r io.Reader) (*Outcome, error) {
	settings, rows, err := DecodeRequest(r)
	if err != nil {
		return nil, err
	}
	return s.Schedule(ctx, mergeSettings(s.defaults, settings), rows)
}

// RequestTopic is the subtopic on which schedule requests are accepted.
const RequestTopic = "requests"

// ListenMQTT schedules every Request received on the request topic. The
// outcome is published like any other run; failures go to runs/errors.
func (s *Service) ListenMQTT(ctx context.Context, sub coremqtt.Subscriber) error {
	return sub.Subscribe(RequestTopic, func(topic string, payload []byte) {
		if _, err := s.ScheduleRequest(ctx, strings.NewReader(string(payload))); err != nil {
			s.log.Errorf("request on %s: %v", topic, err)
			if s.publisher != nil {
				_ = s.publisher.Publish("runs/errors", map[string]string{"error": err.Error()})
			}
		}
	})
}
