// Package sim drives a grid topology through discrete ticks.
//
// A Clock runs once. Every tick visits the relation kinds in topology order
// and, within a kind, the edges in registration order, calling the handler of
// the kind for each edge. After the handlers the post-tick snapshot goes to
// the Recorder, a TickSummary goes to the metrics sink and a TickEvent is
// published on the bus.
package sim
