package metrics

import "time"

// TickSummary aggregates the grid state after one tick.
type TickSummary struct {
	Tick int       `json:"tick"`
	Time time.Time `json:"time"`

	Generation   float64 `json:"generation"`    // W produced by generators
	Transmitted  float64 `json:"transmitted"`   // W leaving transmitters
	Transformed  float64 `json:"transformed"`   // W leaving substations
	Distributed  float64 `json:"distributed"`   // W leaving distributors
	Undelivered  float64 `json:"undelivered"`   // W left in distributor pools
	Consumption  float64 `json:"consumption"`   // cumulative prosumer consumption
	Production   float64 `json:"production"`    // cumulative prosumer production
	StoredEnergy float64 `json:"stored_energy"`
	NetPower     float64 `json:"net_power"`
	MeanNetPower float64 `json:"mean_net_power"`
	Unserved     float64 `json:"unserved"` // positive net power still owed to prosumers

	PacketsDelivered int `json:"packets_delivered"`
	PacketsDropped   int `json:"packets_dropped"`
	Commands         int `json:"commands"` // control commands issued during the tick
}

// MetricsSink records per-tick summaries.
type MetricsSink interface {
	RecordTick(s TickSummary) error
}

// RunEvent describes a finished run.
type RunEvent struct {
	Status   string
	Ticks    int
	Duration time.Duration
	Error    string
	Time     time.Time
}

// RunRecorder is implemented by sinks that record run outcomes.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// CommandEvent is a control command issued during a tick.
type CommandEvent struct {
	ID      string
	Tick    int
	Control string
	Kind    string
	Message string
	Time    time.Time
}

// CommandRecorder is implemented by sinks that record control commands.
type CommandRecorder interface {
	RecordCommand(ev CommandEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordTick(TickSummary) error     { return nil }
func (NopSink) RecordRun(RunEvent) error         { return nil }
func (NopSink) RecordCommand(CommandEvent) error { return nil }
