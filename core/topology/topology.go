package topology

import (
	"fmt"
	"reflect"

	"github.com/kilianp07/gridsim/core/grid"
)

// Component is what every registered grid element provides.
type Component interface {
	Name() string
	Fields() []grid.Field
}

// Edge is one (source, target, params) tuple handed to Register.
type Edge struct {
	Source any
	Target any
	Params grid.Params
}

// Connection is a registered edge.
type Connection struct {
	Kind   RelationKind
	Source any
	Target any
	Params grid.Params
}

// Group is the members of one category in registration order.
type Group struct {
	Category   Category
	Components []Component
}

// Snapshot is a read-only view of the registered components.
type Snapshot []Group

// Len returns the number of components across all groups.
func (s Snapshot) Len() int {
	n := 0
	for _, g := range s {
		n += len(g.Components)
	}
	return n
}

// Topology owns the component registry and the connection registry of a grid.
// It is not safe for concurrent use; assemble it before the run starts.
type Topology struct {
	components  map[Category][]Component
	known       map[Component]struct{}
	connections map[RelationKind][]Connection
	accepted    map[RelationKind][2]reflect.Type
}

// New returns an empty topology.
func New() *Topology {
	return &Topology{
		components:  make(map[Category][]Component),
		known:       make(map[Component]struct{}),
		connections: make(map[RelationKind][]Connection),
		accepted:    make(map[RelationKind][2]reflect.Type),
	}
}

// Register validates and adds edges of kind. The first edge ever registered
// for a kind fixes the concrete source and target types for that kind. All
// edges are validated before anything is added, so a failing call leaves the
// topology untouched.
func (t *Topology) Register(kind RelationKind, edges ...Edge) error {
	r, ok := rules[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRelationKind, kind)
	}
	accepted := t.accepted[kind]
	for i, e := range edges {
		if err := checkEndpoint(kind, i, "source", e.Source, r.source, &accepted[0]); err != nil {
			return err
		}
		if err := checkEndpoint(kind, i, "target", e.Target, r.target, &accepted[1]); err != nil {
			return err
		}
	}
	if len(edges) == 0 {
		return nil
	}
	t.accepted[kind] = accepted
	for _, e := range edges {
		t.add(r.source, e.Source.(Component))
		t.add(r.target, e.Target.(Component))
		t.connections[kind] = append(t.connections[kind], Connection{
			Kind:   kind,
			Source: e.Source,
			Target: e.Target,
			Params: e.Params,
		})
	}
	return nil
}

func checkEndpoint(kind RelationKind, i int, side string, c any, want Category, accepted *reflect.Type) error {
	got, ok := CategoryOf(c)
	if !ok || got != want {
		return fmt.Errorf("%w: %s edge %d: %s %T is not one of %s", ErrTypeMismatch, kind, i, side, c, want)
	}
	typ := reflect.TypeOf(c)
	if *accepted == nil {
		*accepted = typ
		return nil
	}
	if typ != *accepted {
		return fmt.Errorf("%w: %s edge %d: %s is %s but the relation carries %s", ErrTypeMismatch, kind, i, side, typ, *accepted)
	}
	return nil
}

func (t *Topology) add(cat Category, c Component) {
	if _, ok := t.known[c]; ok {
		return
	}
	t.known[c] = struct{}{}
	t.components[cat] = append(t.components[cat], c)
	if m, ok := c.(*grid.SmartMeter); ok {
		t.add(CommunicationNetworks, m.Network)
	}
}

// Components returns the registered components grouped by category. Empty
// categories are omitted.
func (t *Topology) Components() Snapshot {
	var snap Snapshot
	for _, cat := range Categories() {
		members := t.components[cat]
		if len(members) == 0 {
			continue
		}
		snap = append(snap, Group{Category: cat, Components: append([]Component(nil), members...)})
	}
	return snap
}

// Connections returns the edges of kind in registration order.
func (t *Topology) Connections(kind RelationKind) []Connection {
	return append([]Connection(nil), t.connections[kind]...)
}

// Len returns the total number of registered edges.
func (t *Topology) Len() int {
	n := 0
	for _, c := range t.connections {
		n += len(c)
	}
	return n
}
