package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/metrics"
)

func TestHeaderAndRecord(t *testing.T) {
	fields := []grid.Field{{Key: "name", Value: "d1"}, {Key: "output_power", Value: 900000.5}, {Key: "count", Value: 3}}
	h := Header(fields)
	if len(h) != 4 || h[0] != "timestep" || h[2] != "output_power" {
		t.Fatalf("unexpected header %v", h)
	}
	rec := Record(7, fields)
	want := []string{"7", "d1", "900000.5", "3"}
	for i := range want {
		if rec[i] != want[i] {
			t.Fatalf("field %d: expected %q got %q", i, want[i], rec[i])
		}
	}
}

func TestWriteSummariesCSV(t *testing.T) {
	var buf bytes.Buffer
	sums := []metrics.TickSummary{{Tick: 0, Generation: 10}, {Tick: 1, Generation: 12.5, Commands: 2}}
	if err := WriteSummariesCSV(&buf, sums); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[2][1] != "12.5" || rows[2][14] != "2" {
		t.Fatalf("unexpected row %v", rows[2])
	}
}
