package config

import "fmt"

// SimulationConfig controls the clock.
type SimulationConfig struct {
	// Name labels the run in metrics and error reports.
	Name string `json:"name"`
	// Duration is the last simulated time; ticks run from 0 to Duration
	// inclusive.
	Duration int    `json:"duration"`
	TickSize int    `json:"tick_size"`
	// Seed makes stochastic components reproducible. Zero seeds from the
	// wall clock.
	Seed    uint64 `json:"seed"`
	Tracing bool   `json:"tracing"`
}

func (c *SimulationConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "gridsim"
	}
	if c.TickSize == 0 {
		c.TickSize = 1
	}
}

func (c SimulationConfig) Validate() error {
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %d", c.Duration)
	}
	if c.TickSize <= 0 {
		return fmt.Errorf("tick_size must be positive, got %d", c.TickSize)
	}
	return nil
}
