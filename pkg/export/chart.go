package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/gridsim/core/metrics"
)

// WriteSummaryChart renders the power flow of a run as a standalone HTML
// line chart with one series per grid stage.
func WriteSummaryChart(w io.Writer, title string, sums []metrics.TickSummary) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "tick"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "W"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{}),
	)

	ticks := make([]string, len(sums))
	for i, s := range sums {
		ticks[i] = strconv.Itoa(s.Tick)
	}
	line.SetXAxis(ticks).
		AddSeries("generation", series(sums, func(s metrics.TickSummary) float64 { return s.Generation })).
		AddSeries("distributed", series(sums, func(s metrics.TickSummary) float64 { return s.Distributed })).
		AddSeries("net power", series(sums, func(s metrics.TickSummary) float64 { return s.NetPower })).
		AddSeries("stored energy", series(sums, func(s metrics.TickSummary) float64 { return s.StoredEnergy }))

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func series(sums []metrics.TickSummary, value func(metrics.TickSummary) float64) []opts.LineData {
	data := make([]opts.LineData, len(sums))
	for i, s := range sums {
		data[i] = opts.LineData{Value: value(s)}
	}
	return data
}
