package grid

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
)

// Summary is the aggregated view of a group of prosumers.
type Summary struct {
	Tick              int     `json:"tick"`
	Prosumers         int     `json:"prosumers"`
	TotalUsage        float64 `json:"total_usage"`
	TotalProduction   float64 `json:"total_production"`
	TotalStoredEnergy float64 `json:"total_stored_energy"`
}

// NetAggregator collects meter packets and summarises them for a utility.
type NetAggregator struct {
	name      string
	Collected []Packet
	Summary   Summary
	Commands  map[string][]string

	prosumers []*Prosumer
}

// NewNetAggregator returns an empty aggregator.
func NewNetAggregator(name string) *NetAggregator {
	return &NetAggregator{
		name:     name,
		Commands: make(map[string][]string),
	}
}

// Name returns the aggregator name.
func (a *NetAggregator) Name() string { return a.name }

// Collect stores a delivered packet.
func (a *NetAggregator) Collect(pkt Packet) {
	a.Collected = append(a.Collected, pkt)
}

// Aggregate sums usage, production and stored energy over every collected
// packet. Prosumers counts the distinct prosumers seen.
func (a *NetAggregator) Aggregate() Summary {
	n := len(a.Collected)
	usage := make([]float64, n)
	production := make([]float64, n)
	stored := make([]float64, n)
	seen := make(map[string]struct{})
	tick := 0
	for i, pkt := range a.Collected {
		usage[i] = pkt.Measurement.Usage
		production[i] = pkt.Measurement.Production
		stored[i] = pkt.Measurement.StoredEnergy
		seen[pkt.Measurement.Prosumer] = struct{}{}
		if pkt.Tick > tick {
			tick = pkt.Tick
		}
	}
	a.Summary = Summary{
		Tick:              tick,
		Prosumers:         len(seen),
		TotalUsage:        floats.Sum(usage),
		TotalProduction:   floats.Sum(production),
		TotalStoredEnergy: floats.Sum(stored),
	}
	return a.Summary
}

// Serve records p as reachable for command relay. Repeated calls are no-ops.
func (a *NetAggregator) Serve(p *Prosumer) {
	for _, q := range a.prosumers {
		if q == p {
			return
		}
	}
	a.prosumers = append(a.prosumers, p)
}

// Prosumers returns the prosumers served by a in the order they were first
// seen.
func (a *NetAggregator) Prosumers() []*Prosumer { return a.prosumers }

// SendToUtility hands the current summary to u, which then knows a as one of
// its reporting aggregators.
func (a *NetAggregator) SendToUtility(u *UtilityCompany) {
	u.ReceiveSummary(a.name, a.Summary)
	u.attach(a)
}

// ReceiveCommand logs a command issued by a control system.
func (a *NetAggregator) ReceiveCommand(kind, message string) {
	a.Commands[kind] = append(a.Commands[kind], message)
}

// SendCommand relays cmd to p and logs it under the prosumer's name.
func (a *NetAggregator) SendCommand(p *Prosumer, cmd string) {
	a.Commands[p.Name()] = append(a.Commands[p.Name()], cmd)
	p.ReceiveCommand(cmd)
}

// Relay forwards the demand response commands among cmds to every served
// prosumer. Other command kinds concern generation and stop at the aggregator.
func (a *NetAggregator) Relay(cmds []Command) {
	for _, cmd := range cmds {
		if cmd.Kind != CommandDemandResponse {
			continue
		}
		for _, p := range a.prosumers {
			a.SendCommand(p, cmd.Message)
		}
	}
}

// Fields implements the recorder snapshot.
func (a *NetAggregator) Fields() []Field {
	return []Field{
		{"name", a.name},
		{"collected", len(a.Collected)},
		{"prosumers", a.Summary.Prosumers},
		{"total_usage", a.Summary.TotalUsage},
		{"total_production", a.Summary.TotalProduction},
		{"total_stored_energy", a.Summary.TotalStoredEnergy},
	}
}

// UtilityCompany keeps the latest summary of every aggregator reporting to
// it. A new summary from an aggregator replaces the previous one.
type UtilityCompany struct {
	name      string
	Summaries map[string]Summary
	Received  int

	aggregators []*NetAggregator
}

// NewUtilityCompany returns a utility with no data.
func NewUtilityCompany(name string) *UtilityCompany {
	return &UtilityCompany{name: name, Summaries: make(map[string]Summary)}
}

// Name returns the utility name.
func (u *UtilityCompany) Name() string { return u.name }

// ReceiveSummary replaces the record held for aggregator.
func (u *UtilityCompany) ReceiveSummary(aggregator string, s Summary) {
	u.Summaries[aggregator] = s
	u.Received++
}

func (u *UtilityCompany) attach(a *NetAggregator) {
	for _, b := range u.aggregators {
		if b == a {
			return
		}
	}
	u.aggregators = append(u.aggregators, a)
}

// Aggregators returns the aggregators that have reported to u, in order of
// their first report.
func (u *UtilityCompany) Aggregators() []*NetAggregator { return u.aggregators }

// Total sums the held summaries in aggregator name order.
func (u *UtilityCompany) Total() Summary {
	names := make([]string, 0, len(u.Summaries))
	for name := range u.Summaries {
		names = append(names, name)
	}
	sort.Strings(names)
	var t Summary
	for _, name := range names {
		s := u.Summaries[name]
		t.Prosumers += s.Prosumers
		t.TotalUsage += s.TotalUsage
		t.TotalProduction += s.TotalProduction
		t.TotalStoredEnergy += s.TotalStoredEnergy
		if s.Tick > t.Tick {
			t.Tick = s.Tick
		}
	}
	return t
}

// Fields implements the recorder snapshot.
func (u *UtilityCompany) Fields() []Field {
	t := u.Total()
	return []Field{
		{"name", u.name},
		{"received", u.Received},
		{"aggregators", len(u.Summaries)},
		{"total_usage", t.TotalUsage},
		{"total_production", t.TotalProduction},
		{"total_stored_energy", t.TotalStoredEnergy},
	}
}

// Grid data sections understood by ControlSystem.
const (
	SectionGeneration   = "generation"
	SectionTransmission = "transmission"
	SectionDistribution = "distribution"
	SectionConsumption  = "consumption"
)

// Command kinds produced by ControlSystem.AnalyzeGrid.
const (
	CommandLoadBalancing  = "load_balancing"
	CommandDemandResponse = "demand_response"
	CommandStability      = "stability"
)

// Command is an instruction issued by a control system.
type Command struct {
	ID      uuid.UUID `json:"id"`
	Tick    int       `json:"tick"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
}

// ControlSystem analyses grid data and issues balancing commands.
type ControlSystem struct {
	name     string
	GridData map[string]map[string]float64
	Issued   []Command
}

// NewControlSystem returns a control system with empty sections.
func NewControlSystem(name string) *ControlSystem {
	return &ControlSystem{
		name: name,
		GridData: map[string]map[string]float64{
			SectionGeneration:   {},
			SectionTransmission: {},
			SectionDistribution: {},
			SectionConsumption:  {},
		},
	}
}

// Name returns the control system name.
func (c *ControlSystem) Name() string { return c.name }

// UpdateGridData merges data into section.
func (c *ControlSystem) UpdateGridData(section string, data map[string]float64) error {
	sec, ok := c.GridData[section]
	if !ok {
		return fmt.Errorf("%w: control system %s: unknown grid section %q", ErrValidation, c.name, section)
	}
	for k, v := range data {
		sec[k] = v
	}
	return nil
}

func (c *ControlSystem) total(section string) float64 {
	sec := c.GridData[section]
	keys := make([]string, 0, len(sec))
	for k := range sec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]float64, len(keys))
	for i, k := range keys {
		vals[i] = sec[k]
	}
	return floats.Sum(vals)
}

// AnalyzeGrid derives the commands for tick from the current grid data and
// appends them to Issued.
func (c *ControlSystem) AnalyzeGrid(tick int) []Command {
	generation := c.total(SectionGeneration)
	consumption := c.total(SectionConsumption)
	transmission := c.total(SectionTransmission)
	distribution := c.total(SectionDistribution)

	var cmds []Command
	add := func(kind, msg string) {
		cmds = append(cmds, Command{ID: uuid.New(), Tick: tick, Kind: kind, Message: msg})
	}
	switch {
	case generation > consumption:
		add(CommandLoadBalancing, "Reduce generation")
	case generation < consumption:
		add(CommandLoadBalancing, "Increase generation")
	}
	if consumption > generation*0.9 {
		add(CommandDemandResponse, "Send demand response signal to consumers")
	}
	if transmission > generation*0.8 || distribution > generation*0.8 {
		add(CommandStability, "Adjust transmission and distribution to ensure stability")
	}
	c.Issued = append(c.Issued, cmds...)
	return cmds
}

// IssueCommands forwards cmds to an aggregator.
func (c *ControlSystem) IssueCommands(a *NetAggregator, cmds []Command) {
	for _, cmd := range cmds {
		a.ReceiveCommand(cmd.Kind, cmd.Message)
	}
}

// Fields implements the recorder snapshot.
func (c *ControlSystem) Fields() []Field {
	return []Field{
		{"name", c.name},
		{"generation", c.total(SectionGeneration)},
		{"consumption", c.total(SectionConsumption)},
		{"issued", len(c.Issued)},
	}
}
