package grid

import (
	"fmt"
	"math"
)

const (
	// TransmitterReferenceKm is the distance over which a transmitter loses
	// exactly (1-efficiency) of its input.
	TransmitterReferenceKm = 100.0
	// DistributorReferenceKm is the same reference for low-voltage lines.
	DistributorReferenceKm = 10.0
)

// lineLoss returns output power after a distance-based loss, clamped to
// [0, input] for non-negative input.
func lineLoss(input, efficiency, distance, reference float64) float64 {
	loss := (1 - efficiency) * distance / reference
	loss = math.Min(math.Max(loss, 0), 1)
	return math.Max(input*(1-loss), 0)
}

func validateLine(kind, name string, efficiency, distance float64) error {
	if efficiency < 0 || efficiency > 1 {
		return fmt.Errorf("%w: %s %s: efficiency must be between 0 and 1", ErrValidation, kind, name)
	}
	if distance < 0 {
		return fmt.Errorf("%w: %s %s: distance must not be negative", ErrValidation, kind, name)
	}
	return nil
}

// intake tracks the power delivered to a stage during one tick so that
// several upstream edges add up instead of overwriting each other.
type intake struct {
	InputPower float64
	tick       int
	seen       bool
}

func (in *intake) accumulate(tick int, power float64) {
	if !in.seen || tick != in.tick {
		in.InputPower = 0
		in.tick = tick
		in.seen = true
	}
	in.InputPower += power
}

// Transmitter is a high-voltage line between generators and substations.
// AvailablePower mirrors the last transmitted output.
type Transmitter struct {
	name string
	intake
	Efficiency     float64
	Distance       float64 // km
	OutputPower    float64
	AvailablePower float64
}

// NewTransmitter validates efficiency and distance.
func NewTransmitter(name string, efficiency, distance float64) (*Transmitter, error) {
	if err := validateLine("transmitter", name, efficiency, distance); err != nil {
		return nil, err
	}
	return &Transmitter{name: name, Efficiency: efficiency, Distance: distance}, nil
}

// Name returns the line name.
func (t *Transmitter) Name() string { return t.name }

// Receive replaces the input power.
func (t *Transmitter) Receive(power float64) { t.InputPower = power }

// Accumulate adds power delivered during tick.
func (t *Transmitter) Accumulate(tick int, power float64) { t.accumulate(tick, power) }

// Transmit applies the line loss and returns the output power.
func (t *Transmitter) Transmit() float64 {
	t.OutputPower = lineLoss(t.InputPower, t.Efficiency, t.Distance, TransmitterReferenceKm)
	t.AvailablePower = t.OutputPower
	return t.OutputPower
}

// Fields implements the recorder snapshot.
func (t *Transmitter) Fields() []Field {
	return []Field{
		{"name", t.name},
		{"efficiency", t.Efficiency},
		{"distance", t.Distance},
		{"input_power", t.InputPower},
		{"output_power", t.OutputPower},
		{"available_power", t.AvailablePower},
	}
}

// Distributor is a low-voltage line feeding prosumers. AvailablePower is the
// pool prosumers draw from during a tick.
type Distributor struct {
	name string
	intake
	Efficiency     float64
	Distance       float64 // km
	OutputPower    float64
	AvailablePower float64
}

// NewDistributor validates efficiency and distance.
func NewDistributor(name string, efficiency, distance float64) (*Distributor, error) {
	if err := validateLine("distributor", name, efficiency, distance); err != nil {
		return nil, err
	}
	return &Distributor{name: name, Efficiency: efficiency, Distance: distance}, nil
}

// Name returns the line name.
func (d *Distributor) Name() string { return d.name }

// Receive replaces the input power and refills the available pool.
func (d *Distributor) Receive(power float64) {
	d.InputPower = power
	d.AvailablePower = d.Distribute()
}

// Accumulate adds power delivered during tick and refills the pool from the
// tick's total input.
func (d *Distributor) Accumulate(tick int, power float64) {
	d.accumulate(tick, power)
	d.AvailablePower = d.Distribute()
}

// Distribute applies the line loss and returns the output power.
func (d *Distributor) Distribute() float64 {
	d.OutputPower = lineLoss(d.InputPower, d.Efficiency, d.Distance, DistributorReferenceKm)
	return d.OutputPower
}

// Draw takes up to power from the pool and returns what was taken.
func (d *Distributor) Draw(power float64) float64 {
	taken := math.Min(math.Max(power, 0), d.AvailablePower)
	d.AvailablePower -= taken
	return taken
}

// Fields implements the recorder snapshot.
func (d *Distributor) Fields() []Field {
	return []Field{
		{"name", d.name},
		{"efficiency", d.Efficiency},
		{"distance", d.Distance},
		{"input_power", d.InputPower},
		{"output_power", d.OutputPower},
		{"available_power", d.AvailablePower},
	}
}

// Substation steps voltage down between transmission and distribution.
type Substation struct {
	name string
	intake
	InputVoltage  float64
	OutputVoltage float64
	Efficiency    float64
	OutputPower   float64
	OutputCurrent float64
}

// NewSubstation requires inputVoltage > outputVoltage > 0 and an efficiency
// in [0,1].
func NewSubstation(name string, inputVoltage, outputVoltage, efficiency float64) (*Substation, error) {
	if efficiency < 0 || efficiency > 1 {
		return nil, fmt.Errorf("%w: substation %s: efficiency must be between 0 and 1", ErrValidation, name)
	}
	if outputVoltage <= 0 {
		return nil, fmt.Errorf("%w: substation %s: output voltage must be positive", ErrValidation, name)
	}
	if inputVoltage <= outputVoltage {
		return nil, fmt.Errorf("%w: substation %s: input voltage must be higher than output voltage", ErrValidation, name)
	}
	return &Substation{
		name:          name,
		InputVoltage:  inputVoltage,
		OutputVoltage: outputVoltage,
		Efficiency:    efficiency,
	}, nil
}

// Name returns the substation name.
func (s *Substation) Name() string { return s.name }

// Receive replaces the input power.
func (s *Substation) Receive(power float64) { s.InputPower = power }

// Accumulate adds power delivered during tick.
func (s *Substation) Accumulate(tick int, power float64) { s.accumulate(tick, power) }

// Transform applies the efficiency and returns the output power. There is
// no distance loss in a substation.
func (s *Substation) Transform() float64 {
	s.OutputPower = s.InputPower * s.Efficiency
	if s.OutputVoltage > 0 {
		s.OutputCurrent = s.OutputPower / s.OutputVoltage
	} else {
		s.OutputCurrent = 0
	}
	return s.OutputPower
}

// Fields implements the recorder snapshot.
func (s *Substation) Fields() []Field {
	return []Field{
		{"name", s.name},
		{"input_voltage", s.InputVoltage},
		{"output_voltage", s.OutputVoltage},
		{"efficiency", s.Efficiency},
		{"input_power", s.InputPower},
		{"output_power", s.OutputPower},
		{"output_current", s.OutputCurrent},
	}
}
