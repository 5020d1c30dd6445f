package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/gridsim/core/handler"
	"github.com/kilianp07/gridsim/core/logger"
	"github.com/kilianp07/gridsim/core/metrics"
	"github.com/kilianp07/gridsim/core/topology"
	"github.com/kilianp07/gridsim/internal/eventbus"
)

// TickEvent is published after every completed tick.
type TickEvent struct {
	Tick    int
	Time    int // simulated time at the start of the tick
	Summary metrics.TickSummary
}

// Option configures a Clock.
type Option func(*Clock)

// WithRecorder sets the snapshot recorder.
func WithRecorder(r Recorder) Option { return func(c *Clock) { c.recorder = r } }

// WithMetrics sets the metrics sink.
func WithMetrics(s metrics.MetricsSink) Option { return func(c *Clock) { c.sink = s } }

// WithBus sets the bus tick events are published on.
func WithBus(b *eventbus.TypedBus[TickEvent]) Option { return func(c *Clock) { c.bus = b } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(c *Clock) { c.log = l } }

// WithHandlers overrides the handlers of some relation kinds. Kinds not in
// hs keep the default handler.
func WithHandlers(hs map[topology.RelationKind]handler.Handler) Option {
	return func(c *Clock) {
		for k, h := range hs {
			c.handlers[k] = h
		}
	}
}

// WithTracing wraps every handler with debug tracing.
func WithTracing(on bool) Option { return func(c *Clock) { c.tracing = on } }

// Clock advances a topology tick by tick.
type Clock struct {
	topo     *topology.Topology
	handlers map[topology.RelationKind]handler.Handler
	recorder Recorder
	sink     metrics.MetricsSink
	bus      *eventbus.TypedBus[TickEvent]
	log      logger.Logger
	tracing  bool

	state State
	ticks int
}

// NewClock returns an idle clock for topo.
func NewClock(topo *topology.Topology, opts ...Option) *Clock {
	c := &Clock{
		topo:     topo,
		handlers: handler.Defaults(),
		recorder: NopRecorder{},
		sink:     metrics.NopSink{},
		log:      logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracing {
		for k, h := range c.handlers {
			c.handlers[k] = handler.Traced(k, h, c.log)
		}
	}
	return c
}

// State returns the lifecycle stage of the clock.
func (c *Clock) State() State { return c.state }

// Ticks returns the number of completed ticks.
func (c *Clock) Ticks() int { return c.ticks }

// Run simulates [0, duration] in steps of tickSize, both ends included.
// The first error from a handler, the recorder or ctx aborts the run and
// leaves the clock Failed; component state mutated before the failure is kept.
func (c *Clock) Run(ctx context.Context, duration, tickSize int) (err error) {
	if c.state != Idle {
		return fmt.Errorf("%w: clock is %s", ErrClockState, c.state)
	}
	if duration < 0 || tickSize <= 0 {
		return fmt.Errorf("%w: duration %d, tick size %d", ErrInvalidDuration, duration, tickSize)
	}
	c.state = Running
	start := time.Now()
	c.log.Infof("simulation started: duration=%d tick_size=%d edges=%d", duration, tickSize, c.topo.Len())

	defer func() {
		if cerr := c.recorder.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close recorder: %w", cerr)
		}
		c.finish(err, time.Since(start))
	}()

	if err := c.recorder.Init(ctx, c.topo.Components()); err != nil {
		return fmt.Errorf("init recorder: %w", err)
	}
	for t := 0; t <= duration; t += tickSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.step(ctx, t, t/tickSize); err != nil {
			return err
		}
		c.ticks++
	}
	return nil
}

func (c *Clock) step(ctx context.Context, t, tick int) error {
	for _, kind := range topology.Relations() {
		h := c.handlers[kind]
		conns := c.topo.Connections(kind)
		if h == nil {
			if len(conns) > 0 {
				c.log.Warnf("no handler for %s, skipping %d edges", kind, len(conns))
			}
			continue
		}
		for _, conn := range conns {
			if err := h.Propagate(conn.Source, conn.Target, conn.Params, tick); err != nil {
				return fmt.Errorf("tick %d: %s: %w", tick, kind, err)
			}
		}
	}

	snap := c.topo.Components()
	if err := c.recorder.Record(ctx, tick, snap); err != nil {
		return fmt.Errorf("tick %d: record: %w", tick, err)
	}

	summary := metrics.Summarize(tick, snap)
	if err := c.sink.RecordTick(summary); err != nil {
		c.log.Warnf("metrics sink: %v", err)
	}
	if rec, ok := c.sink.(metrics.CommandRecorder); ok {
		for _, ev := range metrics.Commands(tick, snap) {
			if err := rec.RecordCommand(ev); err != nil {
				c.log.Warnf("metrics sink: %v", err)
				break
			}
		}
	}
	c.log.Debugw("tick", map[string]any{
		"tick":        tick,
		"time":        t,
		"generation":  summary.Generation,
		"consumption": summary.Consumption,
		"net_power":   summary.NetPower,
		"unserved":    summary.Unserved,
	})
	if c.bus != nil {
		c.bus.Publish(TickEvent{Tick: tick, Time: t, Summary: summary})
	}
	return nil
}

func (c *Clock) finish(err error, elapsed time.Duration) {
	ev := metrics.RunEvent{Ticks: c.ticks, Duration: elapsed, Time: time.Now()}
	if err != nil {
		c.state = Failed
		ev.Status = Failed.String()
		ev.Error = err.Error()
		if errors.Is(err, context.Canceled) {
			c.log.Warnf("simulation canceled after %d ticks", c.ticks)
		} else {
			c.log.Errorf("simulation failed after %d ticks: %v", c.ticks, err)
		}
	} else {
		c.state = Completed
		ev.Status = Completed.String()
		c.log.Infof("simulation completed: ticks=%d elapsed=%s", c.ticks, elapsed)
	}
	if rec, ok := c.sink.(metrics.RunRecorder); ok {
		if rerr := rec.RecordRun(ev); rerr != nil {
			c.log.Warnf("metrics sink: %v", rerr)
		}
	}
}
