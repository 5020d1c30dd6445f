package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/kilianp07/gridsim/core/factory"
	"github.com/kilianp07/gridsim/core/topology"
)

type closeErrRecorder struct {
	NopRecorder
	err error
}

func (c closeErrRecorder) Close() error { return c.err }

func init() {
	_ = RegisterRecorder("test-mem", func(map[string]any) (Recorder, error) { return &memRecorder{}, nil })
	_ = RegisterRecorder("test-fail", func(map[string]any) (Recorder, error) { return nil, errors.New("no disk") })
}

func TestNewRecorder(t *testing.T) {
	r, err := NewRecorder(nil)
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, ok := r.(NopRecorder); !ok {
		t.Fatalf("expected NopRecorder, got %T", r)
	}

	r, err = NewRecorder([]factory.ModuleConfig{{Type: "test-mem"}})
	if err != nil {
		t.Fatalf("single: %v", err)
	}
	if _, ok := r.(*memRecorder); !ok {
		t.Fatalf("expected memRecorder, got %T", r)
	}

	r, err = NewRecorder([]factory.ModuleConfig{{Type: "test-mem"}, {Type: "test-mem"}})
	if err != nil {
		t.Fatalf("multi: %v", err)
	}
	m, ok := r.(*MultiRecorder)
	if !ok || len(m.Recorders) != 2 {
		t.Fatalf("expected MultiRecorder with 2 recorders, got %T", r)
	}
	if err := m.Init(context.Background(), nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := m.Record(context.Background(), 4, topology.Snapshot{}); err != nil {
		t.Fatalf("record: %v", err)
	}
	for _, sub := range m.Recorders {
		if got := sub.(*memRecorder).ticks; len(got) != 1 || got[0] != 4 {
			t.Fatalf("record not forwarded: %v", got)
		}
	}

	if _, err := NewRecorder([]factory.ModuleConfig{{Type: "test-mem"}, {Type: "test-fail"}}); err == nil {
		t.Fatal("expected factory error")
	}
	for _, name := range []string{"test-fail", "test-mem"} {
		found := false
		for _, n := range RecorderTypes() {
			found = found || n == name
		}
		if !found {
			t.Fatalf("%s not listed in %v", name, RecorderTypes())
		}
	}
}

func TestMultiRecorder_CloseJoinsErrors(t *testing.T) {
	a, b := errors.New("a"), errors.New("b")
	m := NewMultiRecorder(closeErrRecorder{err: a}, NopRecorder{}, closeErrRecorder{err: b})
	err := m.Close()
	if !errors.Is(err, a) || !errors.Is(err, b) {
		t.Fatalf("expected both errors, got %v", err)
	}
}
