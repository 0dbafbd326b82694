package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	coremetrics "github.com/kilianp07/workplan/core/metrics"
	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/report"
)

type captureServer struct {
	mu     sync.Mutex
	bodies []string
}

func (c *captureServer) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	c.mu.Lock()
	c.bodies = append(c.bodies, string(data))
	c.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (c *captureServer) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, b := range c.bodies {
		for _, l := range strings.Split(strings.TrimSpace(b), "\n") {
			if l != "" {
				out = append(out, l)
			}
		}
	}
	return out
}

func TestInfluxSink_RecordRun(t *testing.T) {
	capture := &captureServer{}
	srv := httptest.NewServer(http.HandlerFunc(capture.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Unix(1700000000, 0)
	err := sink.RecordRun(coremetrics.RunEvent{
		RunID:   "r1",
		Time:    now,
		Summary: report.Summary{Tasks: 10, Scheduled: 10, WorkingDays: 31, MeanUtilization: 0.73456},
	})
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	lines := capture.lines()
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %v", lines)
	}
	l := lines[0]
	for _, want := range []string{"schedule_run,run_id=r1 ", "tasks=10i", "working_days=31i", "mean_utilization=0.735", " 1700000000000000000"} {
		if !strings.Contains(l, want) {
			t.Errorf("line %q missing %q", l, want)
		}
	}
}

func TestInfluxSink_RecordAllocations(t *testing.T) {
	capture := &captureServer{}
	srv := httptest.NewServer(http.HandlerFunc(capture.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	daily := []model.DayAllocation{
		{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Workers: map[string]int{"A": 3, "B": 1}},
		{Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), Workers: map[string]int{"A": 0, "B": 4}},
	}
	if err := sink.RecordAllocations(coremetrics.AllocationEvent{RunID: "r1", Pool: 4, Daily: daily}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	lines := capture.lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 points, got %v", lines)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "task_allocation,run_id=r1,task=") {
			t.Errorf("unexpected line %q", l)
		}
	}
}

func TestInfluxSink_RecordAllocations_Empty(t *testing.T) {
	capture := &captureServer{}
	srv := httptest.NewServer(http.HandlerFunc(capture.handler))
	defer srv.Close()
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL})
	defer sink.Close()
	daily := []model.DayAllocation{{Date: time.Now(), Workers: map[string]int{"A": 0}}}
	if err := sink.RecordAllocations(coremetrics.AllocationEvent{Daily: daily}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(capture.lines()) != 0 {
		t.Fatalf("expected no write for an all-zero log")
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not queried")
	}
}
