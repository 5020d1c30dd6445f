package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kilianp07/gridsim/core/factory"
	coremetrics "github.com/kilianp07/gridsim/core/metrics"
)

func TestMemorySink(t *testing.T) {
	m := NewMemorySink()
	_ = m.RecordTick(coremetrics.TickSummary{Tick: 0, Generation: 5})
	_ = m.RecordTick(coremetrics.TickSummary{Tick: 1, Generation: 6})
	_ = m.RecordCommand(coremetrics.CommandEvent{Kind: "load_balancing"})
	_ = m.RecordRun(coremetrics.RunEvent{Status: "completed", Ticks: 2})

	if len(m.Summaries()) != 2 || len(m.Commands()) != 1 || len(m.Runs()) != 1 {
		t.Fatalf("unexpected contents: %d %d %d", len(m.Summaries()), len(m.Commands()), len(m.Runs()))
	}
	var buf bytes.Buffer
	if err := m.WriteCSV(&buf); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 3 {
		t.Fatalf("expected 3 lines got %d", lines)
	}
}

func TestFactoryBuiltins(t *testing.T) {
	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "memory"}, {Type: "nop"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	multi, ok := s.(*coremetrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if _, ok := multi.Sinks[0].(*MemorySink); !ok {
		t.Fatalf("expected MemorySink, got %T", multi.Sinks[0])
	}
	if _, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
