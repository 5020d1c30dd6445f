package sim

import (
	"context"

	"github.com/kilianp07/gridsim/core/topology"
)

// Recorder persists component snapshots. Init is called once before the
// first tick, Record after every tick and Close when the run ends, whether it
// succeeded or not.
type Recorder interface {
	Init(ctx context.Context, snap topology.Snapshot) error
	Record(ctx context.Context, tick int, snap topology.Snapshot) error
	Close() error
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) Init(context.Context, topology.Snapshot) error        { return nil }
func (NopRecorder) Record(context.Context, int, topology.Snapshot) error { return nil }
func (NopRecorder) Close() error                                        { return nil }
