package metrics

import (
	"io"
	"sync"

	coremetrics "github.com/kilianp07/gridsim/core/metrics"
	"github.com/kilianp07/gridsim/pkg/export"
)

// MemorySink keeps every summary of a run in memory.
type MemorySink struct {
	mu        sync.Mutex
	summaries []coremetrics.TickSummary
	commands  []coremetrics.CommandEvent
	runs      []coremetrics.RunEvent
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (m *MemorySink) RecordTick(s coremetrics.TickSummary) error {
	m.mu.Lock()
	m.summaries = append(m.summaries, s)
	m.mu.Unlock()
	return nil
}

func (m *MemorySink) RecordCommand(ev coremetrics.CommandEvent) error {
	m.mu.Lock()
	m.commands = append(m.commands, ev)
	m.mu.Unlock()
	return nil
}

func (m *MemorySink) RecordRun(ev coremetrics.RunEvent) error {
	m.mu.Lock()
	m.runs = append(m.runs, ev)
	m.mu.Unlock()
	return nil
}

// Summaries returns a copy of the recorded summaries.
func (m *MemorySink) Summaries() []coremetrics.TickSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremetrics.TickSummary(nil), m.summaries...)
}

// Commands returns a copy of the recorded commands.
func (m *MemorySink) Commands() []coremetrics.CommandEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremetrics.CommandEvent(nil), m.commands...)
}

// Runs returns a copy of the recorded run events.
func (m *MemorySink) Runs() []coremetrics.RunEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremetrics.RunEvent(nil), m.runs...)
}

// WriteCSV writes the summaries as CSV.
func (m *MemorySink) WriteCSV(w io.Writer) error {
	return export.WriteSummariesCSV(w, m.Summaries())
}
