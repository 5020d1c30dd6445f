package topology

import (
	"errors"
	"fmt"
)

// ErrTopology is the root of every graph assembly failure.
var ErrTopology = errors.New("topology error")

// ErrInvalidRelationKind is returned for an unknown relation kind.
var ErrInvalidRelationKind = fmt.Errorf("%w: invalid relation kind", ErrTopology)

// ErrTypeMismatch is returned when an endpoint does not fit its relation.
var ErrTypeMismatch = fmt.Errorf("%w: type mismatch", ErrTopology)
