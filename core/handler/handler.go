// Package handler implements the per-edge propagation strategies of the grid.
// There is one strategy per topology relation kind; each moves one tick's
// worth of power or telemetry from a source to a target.
package handler

import (
	"fmt"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/topology"
)

// Handler propagates one edge for one tick.
type Handler interface {
	Propagate(src, dst any, params grid.Params, tick int) error
}

// Func adapts a function to Handler.
type Func func(src, dst any, params grid.Params, tick int) error

// Propagate calls f.
func (f Func) Propagate(src, dst any, params grid.Params, tick int) error {
	return f(src, dst, params, tick)
}

// Defaults returns the built-in strategy for every relation kind.
func Defaults() map[topology.RelationKind]Handler {
	return map[topology.RelationKind]Handler{
		topology.GeneratorToTransmitter:  GeneratorToTransmitter{},
		topology.TransmitterToSubstation: TransmitterToSubstation{},
		topology.SubstationToDistributor: SubstationToDistributor{},
		topology.DistributorToProsumer:   DistributorToProsumer{},
		topology.ProsumerToSmartMeter:    ProsumerToSmartMeter{},
		topology.SmartMeterToAggregator:  SmartMeterToAggregator{},
		topology.AggregatorToUtility:     AggregatorToUtility{},
		topology.UtilityToControl:        UtilityToControl{},
	}
}

func endpoints[S, D any](kind topology.RelationKind, src, dst any) (S, D, error) {
	s, ok := src.(S)
	if !ok {
		var zs S
		var zd D
		return zs, zd, fmt.Errorf("%w: %s: unexpected source %T", topology.ErrTypeMismatch, kind, src)
	}
	d, ok := dst.(D)
	if !ok {
		var zd D
		return s, zd, fmt.Errorf("%w: %s: unexpected target %T", topology.ErrTypeMismatch, kind, dst)
	}
	return s, d, nil
}

// GeneratorToTransmitter asks the generator for its output and feeds it to
// the transmitter.
type GeneratorToTransmitter struct{}

func (GeneratorToTransmitter) Propagate(src, dst any, params grid.Params, tick int) error {
	g, t, err := endpoints[grid.Generator, *grid.Transmitter](topology.GeneratorToTransmitter, src, dst)
	if err != nil {
		return err
	}
	out, err := g.Generate(grid.GenerationContext{Tick: tick, Params: params})
	if err != nil {
		return fmt.Errorf("tick %d: %w", tick, err)
	}
	t.Accumulate(tick, out)
	return nil
}

// TransmitterToSubstation forwards the transmitted power and transforms it.
type TransmitterToSubstation struct{}

func (TransmitterToSubstation) Propagate(src, dst any, _ grid.Params, tick int) error {
	t, s, err := endpoints[*grid.Transmitter, *grid.Substation](topology.TransmitterToSubstation, src, dst)
	if err != nil {
		return err
	}
	s.Accumulate(tick, t.Transmit())
	s.Transform()
	return nil
}

// SubstationToDistributor forwards the substation output into the
// distributor, which refills its available pool.
type SubstationToDistributor struct{}

func (SubstationToDistributor) Propagate(src, dst any, _ grid.Params, tick int) error {
	s, d, err := endpoints[*grid.Substation, *grid.Distributor](topology.SubstationToDistributor, src, dst)
	if err != nil {
		return err
	}
	d.Accumulate(tick, s.OutputPower)
	return nil
}

// DistributorToProsumer lets the prosumer run its own consumption and
// production, then covers the remaining demand from the distributor pool.
// Prosumers sharing a distributor are served in edge order.
type DistributorToProsumer struct{}

func (DistributorToProsumer) Propagate(src, dst any, _ grid.Params, _ int) error {
	d, p, err := endpoints[*grid.Distributor, *grid.Prosumer](topology.DistributorToProsumer, src, dst)
	if err != nil {
		return err
	}
	p.GenerateConsumption()
	p.GenerateProduction()
	if p.NetPower > 0 && d.AvailablePower > 0 {
		p.Receive(d.Draw(p.NetPower), d.Name())
		return nil
	}
	p.ResetReceived()
	return nil
}

// ProsumerToSmartMeter takes a reading.
type ProsumerToSmartMeter struct{}

func (ProsumerToSmartMeter) Propagate(src, dst any, _ grid.Params, _ int) error {
	_, m, err := endpoints[*grid.Prosumer, *grid.SmartMeter](topology.ProsumerToSmartMeter, src, dst)
	if err != nil {
		return err
	}
	m.Measure()
	return nil
}

// SmartMeterToAggregator sends the reading over the meter's network. Lost
// packets never reach the aggregator, but the metered prosumer stays
// reachable for commands.
type SmartMeterToAggregator struct{}

func (SmartMeterToAggregator) Propagate(src, dst any, _ grid.Params, tick int) error {
	m, a, err := endpoints[*grid.SmartMeter, *grid.NetAggregator](topology.SmartMeterToAggregator, src, dst)
	if err != nil {
		return err
	}
	a.Serve(m.Prosumer)
	if pkt, ok := m.Send(tick); ok {
		a.Collect(pkt)
	}
	return nil
}

// AggregatorToUtility summarises the collected readings for the utility.
type AggregatorToUtility struct{}

func (AggregatorToUtility) Propagate(src, dst any, _ grid.Params, _ int) error {
	a, u, err := endpoints[*grid.NetAggregator, *grid.UtilityCompany](topology.AggregatorToUtility, src, dst)
	if err != nil {
		return err
	}
	a.Aggregate()
	a.SendToUtility(u)
	return nil
}

// UtilityToControl loads the utility totals into the control system, runs
// the grid analysis for the tick and issues the resulting commands to every
// aggregator reporting to the utility.
type UtilityToControl struct{}

func (UtilityToControl) Propagate(src, dst any, _ grid.Params, tick int) error {
	u, c, err := endpoints[*grid.UtilityCompany, *grid.ControlSystem](topology.UtilityToControl, src, dst)
	if err != nil {
		return err
	}
	total := u.Total()
	if err := c.UpdateGridData(grid.SectionConsumption, map[string]float64{u.Name(): total.TotalUsage}); err != nil {
		return err
	}
	if err := c.UpdateGridData(grid.SectionGeneration, map[string]float64{u.Name(): total.TotalProduction}); err != nil {
		return err
	}
	cmds := c.AnalyzeGrid(tick)
	for _, a := range u.Aggregators() {
		c.IssueCommands(a, cmds)
		a.Relay(cmds)
	}
	return nil
}
