package grid

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// LoadPattern yields the consumption of one tick. Implementations cycle
// forever.
type LoadPattern interface {
	Next() float64
}

// ProductionPattern describes the normal distribution a prosumer's own
// production is drawn from each tick.
type ProductionPattern struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Prosumer consumes and produces power and buffers it in a bounded store.
//
// NetPower is the signed residual demand: positive means the grid must still
// supply power, negative means a surplus beyond storage is being exported.
// Whenever NetPower is positive the store is empty.
type Prosumer struct {
	name             string
	Kind             string
	TotalConsumption float64
	TotalProduction  float64
	StorageCapacity  float64
	StoredEnergy     float64
	NetPower         float64
	ReceivedPower    float64
	ReceivedFrom     string
	ReceivedCommands []string

	load       LoadPattern
	production ProductionPattern
	rng        *rand.Rand
}

// ProsumerConfig groups the optional parts of a prosumer.
type ProsumerConfig struct {
	Kind            string
	StorageCapacity float64
	Load            LoadPattern
	Production      ProductionPattern
}

// NewProsumer validates the configuration and returns an idle prosumer.
func NewProsumer(name string, cfg ProsumerConfig, opts ...Option) (*Prosumer, error) {
	if cfg.StorageCapacity < 0 {
		return nil, fmt.Errorf("%w: prosumer %s: storage capacity must not be negative", ErrValidation, name)
	}
	if cfg.Production.StdDev < 0 {
		return nil, fmt.Errorf("%w: prosumer %s: production std dev must not be negative", ErrValidation, name)
	}
	return &Prosumer{
		name:             name,
		Kind:             cfg.Kind,
		StorageCapacity:  cfg.StorageCapacity,
		ReceivedCommands: []string{},
		load:             cfg.Load,
		production:       cfg.Production,
		rng:              newRand(opts),
	}, nil
}

// Name returns the prosumer name.
func (p *Prosumer) Name() string { return p.name }

// Consume draws from storage first; whatever storage cannot cover becomes
// demand on the grid.
func (p *Prosumer) Consume(power float64) {
	p.TotalConsumption += power
	used := math.Min(power, p.StoredEnergy)
	p.StoredEnergy -= used
	p.NetPower += power - used
}

// Produce cancels outstanding demand first, then fills storage, and exports
// what is left as negative net power.
func (p *Prosumer) Produce(power float64) {
	p.TotalProduction += power
	if p.NetPower > 0 {
		reduction := math.Min(p.NetPower, power)
		p.NetPower -= reduction
		power -= reduction
	}
	power -= p.store(power)
	p.NetPower -= power
}

// Receive takes power delivered by source. It covers outstanding demand,
// then storage; anything beyond both is dropped.
func (p *Prosumer) Receive(power float64, source string) {
	p.ReceivedPower = power
	p.ReceivedFrom = source
	if p.NetPower > 0 {
		reduction := math.Min(p.NetPower, power)
		p.NetPower -= reduction
		power -= reduction
	}
	p.store(power)
}

// ResetReceived clears what was received during the previous tick.
func (p *Prosumer) ResetReceived() {
	p.ReceivedPower = 0
	p.ReceivedFrom = ""
}

// store puts up to power into free capacity and returns the stored amount.
func (p *Prosumer) store(power float64) float64 {
	if power <= 0 {
		return 0
	}
	free := math.Max(p.StorageCapacity-p.StoredEnergy, 0)
	stored := math.Min(free, power)
	p.StoredEnergy += stored
	return stored
}

// GenerateConsumption consumes the next value of the load pattern.
func (p *Prosumer) GenerateConsumption() {
	if p.load == nil {
		return
	}
	p.Consume(math.Max(p.load.Next(), 0))
}

// GenerateProduction produces one draw of the production pattern, floored
// at zero.
func (p *Prosumer) GenerateProduction() {
	if p.production.Mean == 0 && p.production.StdDev == 0 {
		return
	}
	p.Produce(math.Max(normal(p.rng, p.production.Mean, p.production.StdDev), 0))
}

// ReceiveCommand appends cmd to the command log.
func (p *Prosumer) ReceiveCommand(cmd string) {
	p.ReceivedCommands = append(p.ReceivedCommands, cmd)
}

// Fields implements the recorder snapshot.
func (p *Prosumer) Fields() []Field {
	return []Field{
		{"name", p.name},
		{"kind", p.Kind},
		{"total_consumption", p.TotalConsumption},
		{"total_production", p.TotalProduction},
		{"storage_capacity", p.StorageCapacity},
		{"stored_energy", p.StoredEnergy},
		{"net_power", p.NetPower},
		{"received_power", p.ReceivedPower},
		{"received_from", p.ReceivedFrom},
		{"received_commands", len(p.ReceivedCommands)},
	}
}
