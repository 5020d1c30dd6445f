package handler

import (
	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/logger"
	"github.com/kilianp07/gridsim/core/topology"
)

type traced struct {
	kind topology.RelationKind
	next Handler
	log  logger.Logger
}

// Traced wraps h so that every call is logged at debug level with its
// endpoints, tick and outcome.
func Traced(kind topology.RelationKind, h Handler, log logger.Logger) Handler {
	return &traced{kind: kind, next: h, log: log}
}

func (t *traced) Propagate(src, dst any, params grid.Params, tick int) error {
	fields := map[string]any{
		"relation": string(t.kind),
		"source":   nameOf(src),
		"target":   nameOf(dst),
		"tick":     tick,
	}
	t.log.Debugw("propagate", fields)
	err := t.next.Propagate(src, dst, params, tick)
	done := map[string]any{
		"relation": string(t.kind),
		"tick":     tick,
	}
	if err != nil {
		done["error"] = err.Error()
	}
	t.log.Debugw("propagated", done)
	return err
}

func nameOf(c any) string {
	if n, ok := c.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "?"
}
