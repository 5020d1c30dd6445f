package metrics

import (
	"errors"

	coremetrics "github.com/kilianp07/gridsim/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exposes the latest tick summary as Prometheus gauges and counts
// commands and runs.
type PromSink struct {
	power    *prometheus.GaugeVec
	energy   *prometheus.GaugeVec
	packets  *prometheus.GaugeVec
	tick     prometheus.Gauge
	ticks    prometheus.Counter
	commands *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewPromSink registers grid metrics on the default Prometheus registerer.
// Expose them with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridsim_power_watts",
			Help: "Instantaneous power per grid stage",
		}, []string{"stage"}),
		energy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridsim_prosumer_energy",
			Help: "Cumulative prosumer energy accounting",
		}, []string{"measure"}),
		packets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridsim_packets",
			Help: "Meter packets handled by communication networks",
		}, []string{"outcome"}),
		tick: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridsim_tick",
			Help: "Index of the last completed tick",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gridsim_ticks_total",
			Help: "Total number of simulated ticks",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridsim_commands_total",
			Help: "Control commands issued by kind",
		}, []string{"kind"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridsim_runs_total",
			Help: "Finished simulation runs by status",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridsim_run_duration_seconds",
			Help:    "Wall-clock duration of simulation runs",
			Buckets: prometheus.DefBuckets,
		}),
	}
	var err error
	if s.power, err = register(reg, s.power); err != nil {
		return nil, err
	}
	if s.energy, err = register(reg, s.energy); err != nil {
		return nil, err
	}
	if s.packets, err = register(reg, s.packets); err != nil {
		return nil, err
	}
	if s.tick, err = register(reg, s.tick); err != nil {
		return nil, err
	}
	if s.ticks, err = register(reg, s.ticks); err != nil {
		return nil, err
	}
	if s.commands, err = register(reg, s.commands); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordTick sets the gauges from s.
func (p *PromSink) RecordTick(s coremetrics.TickSummary) error {
	p.power.WithLabelValues("generation").Set(s.Generation)
	p.power.WithLabelValues("transmission").Set(s.Transmitted)
	p.power.WithLabelValues("substation").Set(s.Transformed)
	p.power.WithLabelValues("distribution").Set(s.Distributed)
	p.power.WithLabelValues("undelivered").Set(s.Undelivered)
	p.power.WithLabelValues("unserved").Set(s.Unserved)
	p.power.WithLabelValues("net").Set(s.NetPower)

	p.energy.WithLabelValues("consumption").Set(s.Consumption)
	p.energy.WithLabelValues("production").Set(s.Production)
	p.energy.WithLabelValues("stored").Set(s.StoredEnergy)

	p.packets.WithLabelValues("delivered").Set(float64(s.PacketsDelivered))
	p.packets.WithLabelValues("dropped").Set(float64(s.PacketsDropped))

	p.tick.Set(float64(s.Tick))
	p.ticks.Inc()
	return nil
}

// RecordCommand counts a control command.
func (p *PromSink) RecordCommand(ev coremetrics.CommandEvent) error {
	p.commands.WithLabelValues(ev.Kind).Inc()
	return nil
}

// RecordRun counts a finished run and observes its duration.
func (p *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	p.runs.WithLabelValues(ev.Status).Inc()
	p.duration.Observe(ev.Duration.Seconds())
	return nil
}
