package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/restkit/component"
)

type stubComponent struct {
	name     string
	startErr error
	log      *[]string
}

func (s *stubComponent) Name() string { return s.name }

func (s *stubComponent) Start(context.Context) error {
	*s.log = append(*s.log, "start "+s.name)
	return s.startErr
}

func (s *stubComponent) Stop(context.Context) error {
	*s.log = append(*s.log, "stop "+s.name)
	return nil
}

func (s *stubComponent) Health(context.Context) component.Health {
	return component.Health{Name: s.name, Status: component.StatusHealthy}
}

func (s *stubComponent) Reset(context.Context) error {
	*s.log = append(*s.log, "reset "+s.name)
	return nil
}

func (s *stubComponent) Snapshot(context.Context) (any, error) { return nil, nil }
func (s *stubComponent) Restore(context.Context, any) error    { return nil }

func TestManager_Order(t *testing.T) {
	var log []string
	m := NewManager(context.Background())
	m.Add(&stubComponent{name: "a", log: &log})
	m.Add(&stubComponent{name: "b", log: &log})

	if err := m.StartAll(); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := m.ResetAll(); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	if err := m.StopAll(); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := []string{"start a", "start b", "reset a", "reset b", "stop b", "stop a"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], log[i])
		}
	}
	if m.Get("b") == nil || m.Get("missing") != nil {
		t.Error("Get returned the wrong component")
	}
}

func TestManager_StartRollsBack(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	m := NewManager(context.Background())
	m.Add(&stubComponent{name: "a", log: &log})
	m.Add(&stubComponent{name: "b", startErr: boom, log: &log})

	err := m.StartAll()
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if log[len(log)-1] != "stop a" {
		t.Errorf("expected a to be stopped after the failure, got %v", log)
	}
	log = nil
	if err := m.StopAll(); err != nil || len(log) != 0 {
		t.Errorf("nothing should be left to stop, got %v %v", err, log)
	}
}

func TestSetup(t *testing.T) {
	var log []string
	c := &stubComponent{name: "a", log: &log}
	cleanup, err := Setup(context.Background(), c)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if len(log) != 2 || log[1] != "stop a" {
		t.Errorf("unexpected lifecycle %v", log)
	}
}
