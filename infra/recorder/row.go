// Package recorder persists simulation snapshots. Every recorder writes one
// row per component per tick; the CSV recorder additionally splits rows into
// one file per component category.
package recorder

import (
	"time"

	"github.com/kilianp07/gridsim/core/topology"
)

// Row is one component observed at one tick.
type Row struct {
	Tick      int            `json:"tick"`
	Category  string         `json:"category"`
	Component string         `json:"component"`
	Fields    map[string]any `json:"fields"`
	Time      time.Time      `json:"time"`
}

// RowQuery filters rows. Zero values match everything; MaxTick < 0 means no
// upper bound.
type RowQuery struct {
	Category  string
	Component string
	MinTick   int
	MaxTick   int
}

func (q RowQuery) match(r Row) bool {
	if q.Category != "" && r.Category != q.Category {
		return false
	}
	if q.Component != "" && r.Component != q.Component {
		return false
	}
	if r.Tick < q.MinTick {
		return false
	}
	if q.MaxTick >= 0 && r.Tick > q.MaxTick {
		return false
	}
	return true
}

// rows flattens snap into rows stamped with tick.
func rows(tick int, snap topology.Snapshot) []Row {
	now := time.Now().UTC()
	var out []Row
	for _, g := range snap {
		for _, c := range g.Components {
			fields := c.Fields()
			m := make(map[string]any, len(fields))
			for _, f := range fields {
				m[f.Key] = f.Value
			}
			out = append(out, Row{
				Tick:      tick,
				Category:  string(g.Category),
				Component: c.Name(),
				Fields:    m,
				Time:      now,
			})
		}
	}
	return out
}
