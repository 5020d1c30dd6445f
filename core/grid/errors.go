package grid

import "errors"

// ErrValidation is returned when a component is built or fed with values
// outside their admissible range.
var ErrValidation = errors.New("validation error")

// ErrIndexOutOfRange is returned when an input series is shorter than the
// tick that needs it.
var ErrIndexOutOfRange = errors.New("index out of range")
