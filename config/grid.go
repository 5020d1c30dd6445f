package config

import (
	"fmt"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/topology"
)

// Generator types accepted in GeneratorConfig.Type.
const (
	GeneratorWindTurbine = "wind_turbine"
	GeneratorSolarPanel  = "solar_panel"
	GeneratorPowerPlant  = "power_plant"
)

// GridConfig describes a whole grid: its components by category and the
// connections between them keyed by relation kind.
type GridConfig struct {
	Generators     []GeneratorConfig       `json:"generators"`
	Transmitters   []LineConfig            `json:"transmitters"`
	Substations    []SubstationConfig      `json:"substations"`
	Distributors   []LineConfig            `json:"distributors"`
	Networks       []NetworkConfig         `json:"networks"`
	Prosumers      []ProsumerConfig        `json:"prosumers"`
	Meters         []MeterConfig           `json:"meters"`
	Aggregators    []NamedConfig           `json:"aggregators"`
	Utilities      []NamedConfig           `json:"utilities"`
	ControlSystems []NamedConfig           `json:"control_systems"`
	Connections    map[string][]EdgeConfig `json:"connections"`
}

type GeneratorConfig struct {
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Capacity        float64 `json:"capacity"`
	Voltage         float64 `json:"voltage"`
	StdDev          float64 `json:"std_dev"`
	Fuel            float64 `json:"fuel"`
	ConsumptionRate float64 `json:"consumption_rate"`
}

// LineConfig configures a transmitter or a distributor.
type LineConfig struct {
	Name       string  `json:"name"`
	Efficiency float64 `json:"efficiency"`
	Distance   float64 `json:"distance"`
}

type SubstationConfig struct {
	Name          string  `json:"name"`
	InputVoltage  float64 `json:"input_voltage"`
	OutputVoltage float64 `json:"output_voltage"`
	Efficiency    float64 `json:"efficiency"`
}

type NetworkConfig struct {
	Name        string  `json:"name"`
	Reliability float64 `json:"reliability"`
}

// LoadConfig is either an inline list of readings or a household power
// consumption CSV file. Bias is added to every reading.
type LoadConfig struct {
	Values []float64 `json:"values"`
	CSV    string    `json:"csv"`
	Comma  string    `json:"comma"`
	Bias   float64   `json:"bias"`
}

// Empty reports whether no load source is configured.
func (l LoadConfig) Empty() bool { return len(l.Values) == 0 && l.CSV == "" }

type ProsumerConfig struct {
	Name            string                 `json:"name"`
	Kind            string                 `json:"kind"`
	StorageCapacity float64                `json:"storage_capacity"`
	Load            LoadConfig             `json:"load"`
	Production      grid.ProductionPattern `json:"production"`
}

type MeterConfig struct {
	Name     string `json:"name"`
	Prosumer string `json:"prosumer"`
	Network  string `json:"network"`
}

type NamedConfig struct {
	Name string `json:"name"`
}

// EdgeConfig names the two endpoints of a connection.
type EdgeConfig struct {
	Source string      `json:"source"`
	Target string      `json:"target"`
	Params grid.Params `json:"params"`
}

// Names returns every component name in declaration order.
func (g GridConfig) Names() []string {
	var names []string
	for _, c := range g.Generators {
		names = append(names, c.Name)
	}
	for _, c := range g.Transmitters {
		names = append(names, c.Name)
	}
	for _, c := range g.Substations {
		names = append(names, c.Name)
	}
	for _, c := range g.Distributors {
		names = append(names, c.Name)
	}
	for _, c := range g.Networks {
		names = append(names, c.Name)
	}
	for _, c := range g.Prosumers {
		names = append(names, c.Name)
	}
	for _, c := range g.Meters {
		names = append(names, c.Name)
	}
	for _, group := range [][]NamedConfig{g.Aggregators, g.Utilities, g.ControlSystems} {
		for _, c := range group {
			names = append(names, c.Name)
		}
	}
	return names
}

// Validate checks names and connection references. Component ratings are
// validated by the grid constructors.
func (g GridConfig) Validate() error {
	seen := make(map[string]struct{})
	for _, n := range g.Names() {
		if n == "" {
			return fmt.Errorf("component without name")
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("duplicate component name %q", n)
		}
		seen[n] = struct{}{}
	}
	for _, c := range g.Generators {
		switch c.Type {
		case GeneratorWindTurbine, GeneratorSolarPanel, GeneratorPowerPlant:
		default:
			return fmt.Errorf("generator %s: unknown type %q", c.Name, c.Type)
		}
	}
	for _, p := range g.Prosumers {
		if len(p.Load.Values) > 0 && p.Load.CSV != "" {
			return fmt.Errorf("prosumer %s: load takes values or csv, not both", p.Name)
		}
		if len([]rune(p.Load.Comma)) > 1 {
			return fmt.Errorf("prosumer %s: comma must be a single character", p.Name)
		}
	}
	for _, m := range g.Meters {
		if _, ok := seen[m.Prosumer]; !ok {
			return fmt.Errorf("meter %s: unknown prosumer %q", m.Name, m.Prosumer)
		}
		if _, ok := seen[m.Network]; !ok {
			return fmt.Errorf("meter %s: unknown network %q", m.Name, m.Network)
		}
	}
	for kind, edges := range g.Connections {
		if _, err := topology.ParseRelationKind(kind); err != nil {
			return err
		}
		for i, e := range edges {
			if _, ok := seen[e.Source]; !ok {
				return fmt.Errorf("%s[%d]: unknown source %q", kind, i, e.Source)
			}
			if _, ok := seen[e.Target]; !ok {
				return fmt.Errorf("%s[%d]: unknown target %q", kind, i, e.Target)
			}
		}
	}
	return nil
}
