package app

import (
	"context"
	"fmt"
	"os"
	"time"

	// Built-in recorders register themselves.
	_ "github.com/kilianp07/gridsim/infra/recorder"

	"github.com/kilianp07/gridsim/config"
	coremetrics "github.com/kilianp07/gridsim/core/metrics"
	coremon "github.com/kilianp07/gridsim/core/monitoring"
	"github.com/kilianp07/gridsim/core/sim"
	"github.com/kilianp07/gridsim/core/topology"
	"github.com/kilianp07/gridsim/infra/logger"
	"github.com/kilianp07/gridsim/infra/metrics"
	"github.com/kilianp07/gridsim/infra/monitoring"
	"github.com/kilianp07/gridsim/infra/mqtt"
	"github.com/kilianp07/gridsim/internal/eventbus"
	"github.com/kilianp07/gridsim/pkg/export"
)

// Service runs one configured scenario.
type Service struct {
	Topology *topology.Topology

	cfg       *config.Config
	clock     *sim.Clock
	recorder  sim.Recorder
	sink      coremetrics.MetricsSink
	memory    *metrics.MemorySink
	bus       *eventbus.TypedBus[sim.TickEvent]
	publisher *mqtt.Publisher
	log       logger.Logger
	ran       bool
}

// New builds the topology and every collaborator named in cfg.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	log := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}
	coremon.Init(mon)

	topo, err := BuildTopology(cfg.Grid, cfg.Simulation.Seed)
	if err != nil {
		return nil, fmt.Errorf("build topology: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	memory := metrics.NewMemorySink()
	sink = coremetrics.NewMultiSink(sink, memory)

	recorder, err := sim.NewRecorder(cfg.Recorders)
	if err != nil {
		closeSink(sink)
		return nil, fmt.Errorf("recorder: %w", err)
	}

	svc := &Service{
		Topology: topo,
		cfg:      cfg,
		recorder: recorder,
		sink:     sink,
		memory:   memory,
		bus:      eventbus.NewTyped[sim.TickEvent](),
		log:      log,
	}
	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPublisher(cfg.MQTT, logger.New("mqtt"))
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
		log.Infof("mirroring packets of %d networks to %s", pub.Attach(topo), cfg.MQTT.Broker)
	}
	svc.clock = sim.NewClock(topo,
		sim.WithRecorder(recorder),
		sim.WithMetrics(sink),
		sim.WithBus(svc.bus),
		sim.WithLogger(logger.New("clock")),
		sim.WithTracing(cfg.Simulation.Tracing),
	)
	return svc, nil
}

// Run simulates the configured duration and blocks until the run ends or
// ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.ran = true
	promCtx, stopProm := context.WithCancel(ctx)
	defer stopProm()
	if s.cfg.Prometheus.Enabled {
		go func() {
			defer coremon.Recover()
			if err := metrics.StartPromServer(promCtx, s.cfg.Prometheus.Addr, nil); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	var published <-chan struct{}
	if s.publisher != nil {
		published = mqtt.StartTickPublisher(ctx, s.bus, s.publisher)
	}

	sc := s.cfg.Simulation
	err := s.clock.Run(ctx, sc.Duration, sc.TickSize)
	s.bus.Close()
	if published != nil {
		<-published
	}
	if err != nil {
		coremon.CaptureRunError(err, sc.Name, s.clock.Ticks())
		return fmt.Errorf("run %s: %w", sc.Name, err)
	}
	return nil
}

// Summaries returns the tick summaries recorded so far.
func (s *Service) Summaries() []coremetrics.TickSummary { return s.memory.Summaries() }

// WriteSummary writes the tick summaries as CSV to path.
func (s *Service) WriteSummary(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.memory.WriteCSV(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write summary: %w", err)
	}
	return f.Close()
}

// WriteChart renders the tick summaries as an HTML line chart to path.
func (s *Service) WriteChart(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteSummaryChart(f, s.cfg.Simulation.Name, s.memory.Summaries()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var err error
	if !s.ran {
		// The clock closes the recorder at the end of a run.
		err = s.recorder.Close()
	}
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	closeSink(s.sink)
	coremon.Flush(2 * time.Second)
	return err
}

func closeSink(s coremetrics.MetricsSink) {
	switch v := s.(type) {
	case *coremetrics.MultiSink:
		for _, inner := range v.Sinks {
			closeSink(inner)
		}
	case interface{ Close() }:
		v.Close()
	}
}
