package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	runs   int
	allocs int
	err    error
}

func (r *recordSink) RecordRun(RunEvent) error {
	r.runs++
	return r.err
}

func (r *recordSink) RecordAllocations(AllocationEvent) error {
	r.allocs++
	return nil
}

type runOnly struct{ runs int }

func (r *runOnly) RecordRun(RunEvent) error {
	r.runs++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &runOnly{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordRun(RunEvent{RunID: "r"}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordAllocations(AllocationEvent{RunID: "r"}); err != nil {
		t.Fatalf("record allocations: %v", err)
	}
	if s1.runs != 1 || s2.runs != 1 {
		t.Fatalf("runs not forwarded")
	}
	if s1.allocs != 1 {
		t.Fatalf("allocations not forwarded")
	}
}

func TestMultiSink_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &runOnly{}
	if err := NewMultiSink(s1, s2).RecordRun(RunEvent{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s2.runs != 0 {
		t.Fatalf("second sink should not be called")
	}
}
