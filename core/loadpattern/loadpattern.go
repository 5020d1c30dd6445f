// Package loadpattern provides consumption sequences for prosumers. A
// pattern is an endless cycle over a finite list of readings with a fixed
// additive bias.
package loadpattern

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrEmpty is returned when a pattern would have no readings.
var ErrEmpty = errors.New("load pattern has no readings")

// Columns summed into one consumption reading, in W. Global_active_power is
// given in kW and scaled by 1000.
const (
	ColumnActivePower = "Global_active_power"
	ColumnSubMeter1   = "Sub_metering_1"
	ColumnSubMeter2   = "Sub_metering_2"
	ColumnSubMeter3   = "Sub_metering_3"
)

// Cyclic replays a fixed list of readings forever.
type Cyclic struct {
	values []float64
	bias   float64
	pos    int
}

// NewCyclic returns a pattern over values with bias added to every reading.
func NewCyclic(values []float64, bias float64) (*Cyclic, error) {
	if len(values) == 0 {
		return nil, ErrEmpty
	}
	return &Cyclic{values: append([]float64(nil), values...), bias: bias}, nil
}

// Next returns the current reading plus the bias and advances, wrapping to
// the start after the last reading.
func (c *Cyclic) Next() float64 {
	if c.pos >= len(c.values) {
		c.pos = 0
	}
	v := c.values[c.pos] + c.bias
	c.pos++
	return v
}

// Reset restarts the cycle.
func (c *Cyclic) Reset() { c.pos = 0 }

// Len returns the number of readings in one cycle.
func (c *Cyclic) Len() int { return len(c.values) }

// CSVOptions tunes CSV parsing.
type CSVOptions struct {
	Comma rune    // field separator, ',' when zero
	Bias  float64 // added to every reading
}

// LoadCSV reads a household power consumption file and returns its cycle.
func LoadCSV(path string, opts CSVOptions) (*Cyclic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open load pattern: %w", err)
	}
	defer f.Close()
	values, err := ParseCSV(f, opts.Comma)
	if err != nil {
		return nil, fmt.Errorf("load pattern %s: %w", path, err)
	}
	return NewCyclic(values, opts.Bias)
}

// ParseCSV reads one reading per row:
// Global_active_power*1000 + Sub_metering_1 + Sub_metering_2 + Sub_metering_3.
// Rows with missing values (empty or "?") are skipped.
func ParseCSV(r io.Reader, comma rune) ([]float64, error) {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	cols := []string{ColumnActivePower, ColumnSubMeter1, ColumnSubMeter2, ColumnSubMeter3}
	pos := make([]int, len(cols))
	for i, c := range cols {
		p, ok := idx[c]
		if !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
		pos[i] = p
	}

	var values []float64
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		v, ok := reading(rec, pos)
		if ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, ErrEmpty
	}
	return values, nil
}

func reading(rec []string, pos []int) (float64, bool) {
	var sum float64
	for i, p := range pos {
		if p >= len(rec) {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[p]), 64)
		if err != nil {
			return 0, false
		}
		if i == 0 {
			v *= 1000
		}
		sum += v
	}
	return sum, true
}
