// Package metrics defines the observability surface of a simulation run.
//
// A MetricsSink receives one TickSummary per tick. Sinks may additionally
// implement RunRecorder or CommandRecorder; callers discover those with a type
// assertion so that simple sinks only need RecordTick. Sinks are built from
// configuration through the registry in factory.go, and NewMetricsSink wraps
// several configured sinks into a MultiSink.
package metrics
