package grid

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Measurement is a smart meter reading of one prosumer.
type Measurement struct {
	Prosumer     string  `json:"prosumer"`
	Usage        float64 `json:"usage"`
	Production   float64 `json:"production"`
	NetPower     float64 `json:"net_power"`
	StoredEnergy float64 `json:"stored_energy"`
}

// Packet is a measurement travelling over a communication network.
type Packet struct {
	ID          uuid.UUID   `json:"id"`
	Tick        int         `json:"tick"`
	Measurement Measurement `json:"measurement"`
}

// PacketMirror receives a copy of every packet a network delivers. It is an
// observability hook; it cannot influence delivery.
type PacketMirror interface {
	MirrorPacket(network string, pkt Packet)
}

// CommunicationNetwork delivers packets with a fixed probability.
type CommunicationNetwork struct {
	name        string
	Reliability float64
	Transmitted []Packet
	Received    []Packet
	Dropped     int

	mirror PacketMirror
	rng    *rand.Rand
}

// NewCommunicationNetwork requires a reliability in [0,1].
func NewCommunicationNetwork(name string, reliability float64, opts ...Option) (*CommunicationNetwork, error) {
	if reliability < 0 || reliability > 1 {
		return nil, fmt.Errorf("%w: network %s: reliability must be between 0 and 1", ErrValidation, name)
	}
	return &CommunicationNetwork{name: name, Reliability: reliability, rng: newRand(opts)}, nil
}

// Name returns the network name.
func (n *CommunicationNetwork) Name() string { return n.name }

// SetMirror installs m as the packet mirror. A nil m disables mirroring.
func (n *CommunicationNetwork) SetMirror(m PacketMirror) { n.mirror = m }

func (n *CommunicationNetwork) delivered() bool {
	// Float64 is in [0,1) so a reliability of 1 always delivers and 0 never does.
	return n.rng.Float64() < n.Reliability
}

// Transmit sends pkt and reports whether it got through.
func (n *CommunicationNetwork) Transmit(pkt Packet) bool {
	if !n.delivered() {
		n.Dropped++
		return false
	}
	n.Transmitted = append(n.Transmitted, pkt)
	if n.mirror != nil {
		n.mirror.MirrorPacket(n.name, pkt)
	}
	return true
}

// Receive accepts pkt and reports whether it got through.
func (n *CommunicationNetwork) Receive(pkt Packet) bool {
	if !n.delivered() {
		n.Dropped++
		return false
	}
	n.Received = append(n.Received, pkt)
	return true
}

// Fields implements the recorder snapshot.
func (n *CommunicationNetwork) Fields() []Field {
	return []Field{
		{"name", n.name},
		{"reliability", n.Reliability},
		{"transmitted", len(n.Transmitted)},
		{"received", len(n.Received)},
		{"dropped", n.Dropped},
	}
}

// SmartMeter reads one prosumer and reports over one network.
type SmartMeter struct {
	name        string
	Prosumer    *Prosumer
	Network     *CommunicationNetwork
	Measurement Measurement
}

// NewSmartMeter binds a meter to a prosumer and a network. The meter is named
// after the prosumer unless name is set.
func NewSmartMeter(name string, p *Prosumer, n *CommunicationNetwork) (*SmartMeter, error) {
	if p == nil || n == nil {
		return nil, fmt.Errorf("%w: smart meter %s needs a prosumer and a network", ErrValidation, name)
	}
	if name == "" {
		name = "meter-" + p.Name()
	}
	return &SmartMeter{name: name, Prosumer: p, Network: n}, nil
}

// Name returns the meter name.
func (m *SmartMeter) Name() string { return m.name }

// Measure snapshots the prosumer.
func (m *SmartMeter) Measure() Measurement {
	p := m.Prosumer
	m.Measurement = Measurement{
		Prosumer:     p.Name(),
		Usage:        p.TotalConsumption,
		Production:   p.TotalProduction,
		NetPower:     p.NetPower,
		StoredEnergy: p.StoredEnergy,
	}
	return m.Measurement
}

// Send measures and transmits the reading for tick.
func (m *SmartMeter) Send(tick int) (Packet, bool) {
	pkt := Packet{ID: uuid.New(), Tick: tick, Measurement: m.Measure()}
	return pkt, m.Network.Transmit(pkt)
}

// Fields implements the recorder snapshot.
func (m *SmartMeter) Fields() []Field {
	return []Field{
		{"name", m.name},
		{"prosumer", m.Prosumer.Name()},
		{"network", m.Network.Name()},
		{"usage", m.Measurement.Usage},
		{"production", m.Measurement.Production},
		{"net_power", m.Measurement.NetPower},
		{"stored_energy", m.Measurement.StoredEnergy},
	}
}
