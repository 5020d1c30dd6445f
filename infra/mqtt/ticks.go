package mqtt

import (
	"context"

	"github.com/kilianp07/gridsim/core/sim"
	"github.com/kilianp07/gridsim/internal/eventbus"
)

// TickPublisher publishes tick events.
type TickPublisher interface {
	PublishTick(ev sim.TickEvent) error
}

// StartTickPublisher subscribes to bus and forwards every tick event to pub
// until ctx is cancelled or the bus is closed. The returned channel is closed
// once the forwarding goroutine has exited.
func StartTickPublisher(ctx context.Context, bus *eventbus.TypedBus[sim.TickEvent], pub TickPublisher) <-chan struct{} {
	done := make(chan struct{})
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				bus.Unsubscribe(sub)
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				_ = pub.PublishTick(ev)
			}
		}
	}()
	return done
}
