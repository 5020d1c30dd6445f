package grid

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Generator produces power for one tick. Each variant decides what input it
// reads from the context.
type Generator interface {
	Name() string
	Generate(ctx GenerationContext) (float64, error)
	Output() float64
	Fields() []Field
}

// generatorBase holds the state shared by all generator variants.
type generatorBase struct {
	name            string
	NominalCapacity float64 // W
	Voltage         float64 // V
	Current         float64 // A
	OutputPower     float64 // W, recomputed on every Generate
	StdDev          float64 // relative standard deviation of the output

	rng *rand.Rand
}

func newGeneratorBase(name string, capacity, voltage, stdDev float64, opts []Option) (generatorBase, error) {
	if capacity <= 0 {
		return generatorBase{}, fmt.Errorf("%w: generator %s: nominal capacity must be positive", ErrValidation, name)
	}
	if voltage <= 0 {
		return generatorBase{}, fmt.Errorf("%w: generator %s: voltage must be positive", ErrValidation, name)
	}
	if stdDev < 0 {
		return generatorBase{}, fmt.Errorf("%w: generator %s: std dev must not be negative", ErrValidation, name)
	}
	return generatorBase{
		name:            name,
		NominalCapacity: capacity,
		Voltage:         voltage,
		StdDev:          stdDev,
		rng:             newRand(opts),
	}, nil
}

// Name returns the generator name.
func (g *generatorBase) Name() string { return g.name }

// Output returns the power produced by the last Generate call.
func (g *generatorBase) Output() float64 { return g.OutputPower }

func (g *generatorBase) updateCurrent() {
	if g.Voltage > 0 {
		g.Current = g.OutputPower / g.Voltage
	} else {
		g.Current = 0
	}
}

// fromFactor sets the output for an environmental factor in [0,1]. The
// sample never exceeds the instantaneous ceiling capacity*factor.
func (g *generatorBase) fromFactor(factor float64) float64 {
	if factor == 0 {
		g.OutputPower = 0
	} else {
		nominal := g.NominalCapacity * factor
		sample := normal(g.rng, nominal, g.StdDev*nominal)
		g.OutputPower = math.Max(math.Min(sample, nominal), 0)
	}
	g.updateCurrent()
	return g.OutputPower
}

func (g *generatorBase) fields(kind string) []Field {
	return []Field{
		{"name", g.name},
		{"kind", kind},
		{"nominal_capacity", g.NominalCapacity},
		{"voltage", g.Voltage},
		{"current", g.Current},
		{"output", g.OutputPower},
		{"std_dev", g.StdDev},
	}
}

// WindTurbine converts the wind_speed series into power.
type WindTurbine struct {
	generatorBase
}

// NewWindTurbine validates the ratings and returns a turbine.
func NewWindTurbine(name string, capacity, voltage, stdDev float64, opts ...Option) (*WindTurbine, error) {
	b, err := newGeneratorBase(name, capacity, voltage, stdDev, opts)
	if err != nil {
		return nil, err
	}
	return &WindTurbine{generatorBase: b}, nil
}

// Generate reads wind_speed[tick] and produces power.
func (w *WindTurbine) Generate(ctx GenerationContext) (float64, error) {
	f, err := factorAt("wind_speed", ctx.Params.WindSpeed, ctx.Tick)
	if err != nil {
		return 0, fmt.Errorf("wind turbine %s: %w", w.name, err)
	}
	return w.fromFactor(f), nil
}

// Fields implements the recorder snapshot.
func (w *WindTurbine) Fields() []Field { return w.fields("wind_turbine") }

// SolarPanel converts the sunlight series into power.
type SolarPanel struct {
	generatorBase
}

// NewSolarPanel validates the ratings and returns a panel.
func NewSolarPanel(name string, capacity, voltage, stdDev float64, opts ...Option) (*SolarPanel, error) {
	b, err := newGeneratorBase(name, capacity, voltage, stdDev, opts)
	if err != nil {
		return nil, err
	}
	return &SolarPanel{generatorBase: b}, nil
}

// Generate reads sunlight[tick] and produces power.
func (s *SolarPanel) Generate(ctx GenerationContext) (float64, error) {
	f, err := factorAt("sunlight", ctx.Params.Sunlight, ctx.Tick)
	if err != nil {
		return 0, fmt.Errorf("solar panel %s: %w", s.name, err)
	}
	return s.fromFactor(f), nil
}

// Fields implements the recorder snapshot.
func (s *SolarPanel) Fields() []Field { return s.fields("solar_panel") }

// PowerPlant is a fuel-limited thermal plant. It ignores edge parameters and
// burns ConsumptionRate units of fuel per tick until the fuel runs out.
type PowerPlant struct {
	generatorBase
	FuelCapacity    float64
	ConsumptionRate float64
}

// NewPowerPlant validates the ratings and returns a plant.
func NewPowerPlant(name string, capacity, voltage, fuel, rate, stdDev float64, opts ...Option) (*PowerPlant, error) {
	b, err := newGeneratorBase(name, capacity, voltage, stdDev, opts)
	if err != nil {
		return nil, err
	}
	if fuel < 0 || rate < 0 {
		return nil, fmt.Errorf("%w: power plant %s: fuel and consumption rate must not be negative", ErrValidation, name)
	}
	return &PowerPlant{generatorBase: b, FuelCapacity: fuel, ConsumptionRate: rate}, nil
}

// Generate produces power while fuel remains.
func (p *PowerPlant) Generate(GenerationContext) (float64, error) {
	if p.FuelCapacity > 0 {
		sample := normal(p.rng, p.NominalCapacity, p.StdDev*p.NominalCapacity)
		p.OutputPower = math.Max(math.Min(sample, p.NominalCapacity), 0)
		p.FuelCapacity = math.Max(p.FuelCapacity-p.ConsumptionRate, 0)
	} else {
		p.OutputPower = 0
	}
	p.updateCurrent()
	return p.OutputPower, nil
}

// Fields implements the recorder snapshot.
func (p *PowerPlant) Fields() []Field {
	return append(p.fields("power_plant"),
		Field{"fuel_capacity", p.FuelCapacity},
		Field{"consumption_rate", p.ConsumptionRate},
	)
}
