package sim

import (
	"context"
	"errors"

	"github.com/kilianp07/gridsim/core/factory"
	"github.com/kilianp07/gridsim/core/topology"
)

var recorderRegistry = factory.NewRegistry[Recorder]()

// RegisterRecorder adds a recorder factory identified by name.
func RegisterRecorder(name string, f factory.Factory[Recorder]) error {
	return recorderRegistry.Register(name, f)
}

// RecorderTypes lists the registered recorder types.
func RecorderTypes() []string { return recorderRegistry.Names() }

// NewRecorder creates a Recorder from the provided configuration. Several
// configs are combined into a MultiRecorder.
func NewRecorder(cfgs []factory.ModuleConfig) (Recorder, error) {
	if len(cfgs) == 0 {
		return NopRecorder{}, nil
	}
	recs := make([]Recorder, 0, len(cfgs))
	for _, c := range cfgs {
		r, err := recorderRegistry.Create(c)
		if err != nil {
			_ = NewMultiRecorder(recs...).Close()
			return nil, err
		}
		recs = append(recs, r)
	}
	if len(recs) == 1 {
		return recs[0], nil
	}
	return NewMultiRecorder(recs...), nil
}

// MultiRecorder fans snapshots out to several recorders.
type MultiRecorder struct {
	Recorders []Recorder
}

// NewMultiRecorder creates a MultiRecorder with the provided recorders.
func NewMultiRecorder(recs ...Recorder) *MultiRecorder {
	return &MultiRecorder{Recorders: recs}
}

// Init initialises every recorder, stopping at the first error.
func (m *MultiRecorder) Init(ctx context.Context, snap topology.Snapshot) error {
	for _, r := range m.Recorders {
		if err := r.Init(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}

// Record forwards the snapshot, stopping at the first error.
func (m *MultiRecorder) Record(ctx context.Context, tick int, snap topology.Snapshot) error {
	for _, r := range m.Recorders {
		if err := r.Record(ctx, tick, snap); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every recorder and joins their errors.
func (m *MultiRecorder) Close() error {
	var errs []error
	for _, r := range m.Recorders {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
