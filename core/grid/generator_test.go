package grid

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindTurbine_Generate(t *testing.T) {
	w, err := NewWindTurbine("w1", 2_000_000, 690, 0.1, WithRand(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	params := Params{WindSpeed: []float64{0.5, 0, 1}}

	for tick, f := range params.WindSpeed {
		out, err := w.Generate(GenerationContext{Tick: tick, Params: params})
		require.NoError(t, err)
		ceiling := 2_000_000 * f
		if out < 0 || out > ceiling {
			t.Fatalf("tick %d: output %v outside [0, %v]", tick, out, ceiling)
		}
		if f == 0 && out != 0 {
			t.Fatalf("tick %d: expected no output without wind, got %v", tick, out)
		}
		if w.Current != out/690 {
			t.Fatalf("tick %d: current %v does not match output", tick, w.Current)
		}
	}
}

func TestWindTurbine_ShortSeries(t *testing.T) {
	w, err := NewWindTurbine("w1", 1000, 230, 0)
	require.NoError(t, err)
	_, err = w.Generate(GenerationContext{Tick: 2, Params: Params{WindSpeed: []float64{0.3}}})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestSolarPanel_FactorOutOfRange(t *testing.T) {
	s, err := NewSolarPanel("s1", 1000, 230, 0)
	require.NoError(t, err)
	_, err = s.Generate(GenerationContext{Params: Params{Sunlight: []float64{1.5}}})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSolarPanel_NoNoise(t *testing.T) {
	s, err := NewSolarPanel("s1", 1000, 250, 0)
	require.NoError(t, err)
	out, err := s.Generate(GenerationContext{Params: Params{Sunlight: []float64{0.4}}})
	require.NoError(t, err)
	if out != 400 {
		t.Fatalf("expected 400 got %v", out)
	}
	if s.Current != 1.6 {
		t.Fatalf("expected 1.6 A got %v", s.Current)
	}
}

func TestPowerPlant_FuelRunsOut(t *testing.T) {
	p, err := NewPowerPlant("coal", 1000, 400, 25, 10, 0)
	require.NoError(t, err)
	for i, want := range []float64{1000, 1000, 1000, 0} {
		out, err := p.Generate(GenerationContext{Tick: i})
		require.NoError(t, err)
		if out != want {
			t.Fatalf("tick %d: expected %v got %v", i, want, out)
		}
	}
	if p.FuelCapacity != 0 {
		t.Fatalf("fuel should be clamped at 0, got %v", p.FuelCapacity)
	}
}

func TestGenerator_Validation(t *testing.T) {
	if _, err := NewWindTurbine("w", 0, 230, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for capacity, got %v", err)
	}
	if _, err := NewSolarPanel("s", 100, 0, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for voltage, got %v", err)
	}
	if _, err := NewPowerPlant("p", 100, 230, -1, 1, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for fuel, got %v", err)
	}
}
