package sim

import "errors"

// ErrInvalidDuration is returned for a negative duration or a non-positive
// tick size.
var ErrInvalidDuration = errors.New("invalid duration")

// ErrClockState is returned when Run is called on a clock that already ran.
var ErrClockState = errors.New("invalid clock state")

// State is the lifecycle stage of a Clock.
type State int

const (
	Idle State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}
