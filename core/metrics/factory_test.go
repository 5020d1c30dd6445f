package metrics_test

import (
	"testing"

	"github.com/kilianp07/gridsim/core/factory"
	metrics "github.com/kilianp07/gridsim/core/metrics"
)

type countSink struct {
	ticks, runs int
}

func (c *countSink) RecordTick(metrics.TickSummary) error { c.ticks++; return nil }
func (c *countSink) RecordRun(metrics.RunEvent) error     { c.runs++; return nil }

func init() {
	_ = metrics.RegisterMetricsSink("test-count", func(map[string]any) (metrics.MetricsSink, error) {
		return &countSink{}, nil
	})
}

/*
TestNewMetricsSink validates NewMetricsSink behavior with zero, one, and multiple configs.
Cases:
  - no config -> NopSink
  - one config -> the sink itself
  - two configs -> MultiSink with two sub-sinks
  - unknown type -> error
*/
func TestNewMetricsSink(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "test-count"}})
	if err != nil {
		t.Fatalf("create single: %v", err)
	}
	if _, ok := s.(*countSink); !ok {
		t.Fatalf("expected countSink, got %T", s)
	}

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "test-count"}, {Type: "test-count"}})
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(m.Sinks))
	}

	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestMultiSink_OptionalRecorders(t *testing.T) {
	a, b := &countSink{}, &countSink{}
	m := metrics.NewMultiSink(a, metrics.NopSink{}, b)
	if err := m.RecordTick(metrics.TickSummary{}); err != nil {
		t.Fatalf("record tick: %v", err)
	}
	if err := m.RecordRun(metrics.RunEvent{Status: "completed"}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordCommand(metrics.CommandEvent{}); err != nil {
		t.Fatalf("record command: %v", err)
	}
	if a.ticks != 1 || b.ticks != 1 || a.runs != 1 || b.runs != 1 {
		t.Fatalf("records not forwarded: %+v %+v", a, b)
	}
}
