package app

import (
	"fmt"
	"math/rand/v2"

	"github.com/kilianp07/gridsim/config"
	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/loadpattern"
	"github.com/kilianp07/gridsim/core/topology"
)

// BuildTopology creates every component of cfg and registers its connections
// in relation order. A non-zero seed gives each stochastic component its own
// PCG stream derived from the seed and the component's declaration index.
func BuildTopology(cfg config.GridConfig, seed uint64) (*topology.Topology, error) {
	b := &builder{seed: seed, byName: make(map[string]any)}
	if err := b.components(cfg); err != nil {
		return nil, err
	}
	topo := topology.New()
	for _, kind := range topology.Relations() {
		edges := cfg.Connections[string(kind)]
		if len(edges) == 0 {
			continue
		}
		es := make([]topology.Edge, 0, len(edges))
		for i, e := range edges {
			src, ok := b.byName[e.Source]
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d]: unknown source %q", topology.ErrTopology, kind, i, e.Source)
			}
			dst, ok := b.byName[e.Target]
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d]: unknown target %q", topology.ErrTopology, kind, i, e.Target)
			}
			es = append(es, topology.Edge{Source: src, Target: dst, Params: e.Params})
		}
		if err := topo.Register(kind, es...); err != nil {
			return nil, fmt.Errorf("register %s: %w", kind, err)
		}
	}
	return topo, nil
}

type builder struct {
	seed   uint64
	stream uint64
	byName map[string]any
}

func (b *builder) opts() []grid.Option {
	b.stream++
	if b.seed == 0 {
		return nil
	}
	return []grid.Option{grid.WithRand(rand.NewPCG(b.seed, b.stream))}
}

func (b *builder) add(name string, c any, err error) error {
	if err != nil {
		return err
	}
	if _, dup := b.byName[name]; dup {
		return fmt.Errorf("%w: duplicate component name %q", grid.ErrValidation, name)
	}
	b.byName[name] = c
	return nil
}

func (b *builder) components(cfg config.GridConfig) error {
	for _, g := range cfg.Generators {
		gen, err := newGenerator(g, b.opts())
		if err := b.add(g.Name, gen, err); err != nil {
			return err
		}
	}
	for _, t := range cfg.Transmitters {
		c, err := grid.NewTransmitter(t.Name, t.Efficiency, t.Distance)
		if err := b.add(t.Name, c, err); err != nil {
			return err
		}
	}
	for _, s := range cfg.Substations {
		c, err := grid.NewSubstation(s.Name, s.InputVoltage, s.OutputVoltage, s.Efficiency)
		if err := b.add(s.Name, c, err); err != nil {
			return err
		}
	}
	for _, d := range cfg.Distributors {
		c, err := grid.NewDistributor(d.Name, d.Efficiency, d.Distance)
		if err := b.add(d.Name, c, err); err != nil {
			return err
		}
	}
	networks := make(map[string]*grid.CommunicationNetwork, len(cfg.Networks))
	for _, n := range cfg.Networks {
		c, err := grid.NewCommunicationNetwork(n.Name, n.Reliability, b.opts()...)
		if err := b.add(n.Name, c, err); err != nil {
			return err
		}
		networks[n.Name] = c
	}
	prosumers := make(map[string]*grid.Prosumer, len(cfg.Prosumers))
	for _, p := range cfg.Prosumers {
		load, err := newLoad(p.Load)
		if err != nil {
			return fmt.Errorf("prosumer %s: %w", p.Name, err)
		}
		c, err := grid.NewProsumer(p.Name, grid.ProsumerConfig{
			Kind:            p.Kind,
			StorageCapacity: p.StorageCapacity,
			Load:            load,
			Production:      p.Production,
		}, b.opts()...)
		if err := b.add(p.Name, c, err); err != nil {
			return err
		}
		prosumers[p.Name] = c
	}
	for _, m := range cfg.Meters {
		p, n := prosumers[m.Prosumer], networks[m.Network]
		if p == nil || n == nil {
			return fmt.Errorf("%w: meter %s: unknown prosumer %q or network %q", grid.ErrValidation, m.Name, m.Prosumer, m.Network)
		}
		c, err := grid.NewSmartMeter(m.Name, p, n)
		if err := b.add(m.Name, c, err); err != nil {
			return err
		}
	}
	for _, a := range cfg.Aggregators {
		if err := b.add(a.Name, grid.NewNetAggregator(a.Name), nil); err != nil {
			return err
		}
	}
	for _, u := range cfg.Utilities {
		if err := b.add(u.Name, grid.NewUtilityCompany(u.Name), nil); err != nil {
			return err
		}
	}
	for _, c := range cfg.ControlSystems {
		if err := b.add(c.Name, grid.NewControlSystem(c.Name), nil); err != nil {
			return err
		}
	}
	return nil
}

func newGenerator(g config.GeneratorConfig, opts []grid.Option) (grid.Generator, error) {
	switch g.Type {
	case config.GeneratorWindTurbine:
		return grid.NewWindTurbine(g.Name, g.Capacity, g.Voltage, g.StdDev, opts...)
	case config.GeneratorSolarPanel:
		return grid.NewSolarPanel(g.Name, g.Capacity, g.Voltage, g.StdDev, opts...)
	case config.GeneratorPowerPlant:
		return grid.NewPowerPlant(g.Name, g.Capacity, g.Voltage, g.Fuel, g.ConsumptionRate, g.StdDev, opts...)
	}
	return nil, fmt.Errorf("%w: generator %s: unknown type %q", grid.ErrValidation, g.Name, g.Type)
}

func newLoad(l config.LoadConfig) (grid.LoadPattern, error) {
	switch {
	case l.CSV != "":
		var comma rune
		if l.Comma != "" {
			comma = []rune(l.Comma)[0]
		}
		c, err := loadpattern.LoadCSV(l.CSV, loadpattern.CSVOptions{Comma: comma, Bias: l.Bias})
		if err != nil {
			return nil, err
		}
		return c, nil
	case len(l.Values) > 0:
		c, err := loadpattern.NewCyclic(l.Values, l.Bias)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, nil
}
