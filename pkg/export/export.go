// Package export turns component snapshots and tick summaries into flat
// CSV records.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/metrics"
)

// Header returns the CSV header of a component: timestep then field keys.
func Header(fields []grid.Field) []string {
	h := make([]string, 0, len(fields)+1)
	h = append(h, "timestep")
	for _, f := range fields {
		h = append(h, f.Key)
	}
	return h
}

// Record returns the CSV record of a component at tick.
func Record(tick int, fields []grid.Field) []string {
	rec := make([]string, 0, len(fields)+1)
	rec = append(rec, strconv.Itoa(tick))
	for _, f := range fields {
		rec = append(rec, FormatValue(f.Value))
	}
	return rec
}

// FormatValue renders v the way it appears in CSV output.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

var summaryHeader = []string{
	"tick", "generation", "transmitted", "transformed", "distributed", "undelivered",
	"consumption", "production", "stored_energy", "net_power", "mean_net_power", "unserved",
	"packets_delivered", "packets_dropped", "commands",
}

// WriteSummariesCSV writes one row per tick summary.
func WriteSummariesCSV(w io.Writer, sums []metrics.TickSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}
	for _, s := range sums {
		rec := []string{
			strconv.Itoa(s.Tick),
			FormatValue(s.Generation),
			FormatValue(s.Transmitted),
			FormatValue(s.Transformed),
			FormatValue(s.Distributed),
			FormatValue(s.Undelivered),
			FormatValue(s.Consumption),
			FormatValue(s.Production),
			FormatValue(s.StoredEnergy),
			FormatValue(s.NetPower),
			FormatValue(s.MeanNetPower),
			FormatValue(s.Unserved),
			strconv.Itoa(s.PacketsDelivered),
			strconv.Itoa(s.PacketsDropped),
			strconv.Itoa(s.Commands),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
