package metrics

import (
	"math"
	"time"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/topology"
	"gonum.org/v1/gonum/stat"
)

// Summarize builds the TickSummary of snap as observed after tick.
func Summarize(tick int, snap topology.Snapshot) TickSummary {
	s := TickSummary{Tick: tick, Time: time.Now()}
	var nets []float64
	for _, g := range snap {
		for _, c := range g.Components {
			switch v := c.(type) {
			case grid.Generator:
				s.Generation += v.Output()
			case *grid.Transmitter:
				s.Transmitted += v.OutputPower
			case *grid.Substation:
				s.Transformed += v.OutputPower
			case *grid.Distributor:
				s.Distributed += v.OutputPower
				s.Undelivered += v.AvailablePower
			case *grid.Prosumer:
				s.Consumption += v.TotalConsumption
				s.Production += v.TotalProduction
				s.StoredEnergy += v.StoredEnergy
				s.NetPower += v.NetPower
				s.Unserved += math.Max(v.NetPower, 0)
				nets = append(nets, v.NetPower)
			case *grid.CommunicationNetwork:
				s.PacketsDelivered += len(v.Transmitted)
				s.PacketsDropped += v.Dropped
			case *grid.ControlSystem:
				s.Commands += len(issuedAt(v, tick))
			}
		}
	}
	if len(nets) > 0 {
		s.MeanNetPower = stat.Mean(nets, nil)
	}
	return s
}

// Commands returns the control commands issued during tick.
func Commands(tick int, snap topology.Snapshot) []CommandEvent {
	var out []CommandEvent
	now := time.Now()
	for _, g := range snap {
		if g.Category != topology.ControlSystems {
			continue
		}
		for _, c := range g.Components {
			ctl, ok := c.(*grid.ControlSystem)
			if !ok {
				continue
			}
			for _, cmd := range issuedAt(ctl, tick) {
				out = append(out, CommandEvent{
					ID:      cmd.ID.String(),
					Tick:    cmd.Tick,
					Control: ctl.Name(),
					Kind:    cmd.Kind,
					Message: cmd.Message,
					Time:    now,
				})
			}
		}
	}
	return out
}

// issuedAt returns the trailing commands of c stamped with tick.
func issuedAt(c *grid.ControlSystem, tick int) []grid.Command {
	i := len(c.Issued)
	for i > 0 && c.Issued[i-1].Tick == tick {
		i--
	}
	return c.Issued[i:]
}
