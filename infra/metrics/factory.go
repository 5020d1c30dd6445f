package metrics

import (
	"github.com/kilianp07/gridsim/core/factory"
	coremetrics "github.com/kilianp07/gridsim/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("memory", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewMemorySink(), nil
	})

	// The HTTP endpoint is started separately from the prometheus config section.
	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL      string `json:"url"`
			Token    string `json:"token"`
			Org      string `json:"org"`
			Bucket   string `json:"bucket"`
			Scenario string `json:"scenario"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket, c.Scenario), nil
	})
}
