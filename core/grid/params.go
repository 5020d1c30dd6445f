package grid

import "fmt"

// Params carries per-edge inputs. Series are indexed by tick.
type Params struct {
	WindSpeed []float64 `json:"wind_speed"`
	Sunlight  []float64 `json:"sunlight"`
}

// GenerationContext is what a generator sees when asked to produce power.
type GenerationContext struct {
	Tick   int
	Params Params
}

// Field is a single named value of a component snapshot.
type Field struct {
	Key   string
	Value any
}

// factorAt returns values[tick], checking the index and the [0,1] range.
func factorAt(series string, values []float64, tick int) (float64, error) {
	if tick < 0 || tick >= len(values) {
		return 0, fmt.Errorf("%w: %s has %d values, tick %d requested", ErrIndexOutOfRange, series, len(values), tick)
	}
	f := values[tick]
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("%w: %s must be between 0 and 1, got %v at tick %d", ErrValidation, series, f, tick)
	}
	return f, nil
}
