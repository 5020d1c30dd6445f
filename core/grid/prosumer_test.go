package grid

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seriesLoad struct {
	values []float64
	i      int
}

func (s *seriesLoad) Next() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func newTestProsumer(t *testing.T, capacity float64) *Prosumer {
	t.Helper()
	p, err := NewProsumer("house", ProsumerConfig{Kind: "household", StorageCapacity: capacity}, WithRand(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	return p
}

func TestProsumer_ConsumeThenProduce(t *testing.T) {
	p := newTestProsumer(t, 5000)
	p.Consume(10000)
	assert.Equal(t, 10000.0, p.NetPower)
	assert.Equal(t, 0.0, p.StoredEnergy)

	p.Produce(12000)
	assert.Equal(t, 0.0, p.NetPower)
	assert.Equal(t, 2000.0, p.StoredEnergy)
	assert.Equal(t, 10000.0, p.TotalConsumption)
	assert.Equal(t, 12000.0, p.TotalProduction)
}

func TestProsumer_SurplusExported(t *testing.T) {
	p := newTestProsumer(t, 1000)
	p.Produce(3000)
	assert.Equal(t, 1000.0, p.StoredEnergy)
	assert.Equal(t, -2000.0, p.NetPower)
}

func TestProsumer_ConsumeUsesStorageFirst(t *testing.T) {
	p := newTestProsumer(t, 1000)
	p.Produce(800)
	p.Consume(500)
	assert.Equal(t, 300.0, p.StoredEnergy)
	assert.Equal(t, 0.0, p.NetPower)
	p.Consume(500)
	assert.Equal(t, 0.0, p.StoredEnergy)
	assert.Equal(t, 200.0, p.NetPower)
}

func TestProsumer_ProduceConsumeRoundTrip(t *testing.T) {
	p := newTestProsumer(t, 10000)
	p.Consume(1000)
	net, stored := p.NetPower, p.StoredEnergy

	p.Produce(2500)
	p.Consume(2500)
	assert.InDelta(t, net, p.NetPower, 1e-9)
	assert.InDelta(t, stored, p.StoredEnergy, 1e-9)
}

func TestProsumer_ReceiveDropsExcess(t *testing.T) {
	p := newTestProsumer(t, 100)
	p.Consume(50)
	p.Receive(500, "d1")
	assert.Equal(t, 0.0, p.NetPower)
	assert.Equal(t, 100.0, p.StoredEnergy)
	assert.Equal(t, 500.0, p.ReceivedPower)
	assert.Equal(t, "d1", p.ReceivedFrom)

	p.ResetReceived()
	assert.Equal(t, 0.0, p.ReceivedPower)
	assert.Empty(t, p.ReceivedFrom)
}

func TestProsumer_StorageInvariant(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1))
	p := newTestProsumer(t, 750)
	for i := 0; i < 5000; i++ {
		amount := r.Float64() * 1000
		switch r.IntN(3) {
		case 0:
			p.Consume(amount)
		case 1:
			p.Produce(amount)
		default:
			p.Receive(amount, "grid")
		}
		if p.StoredEnergy < 0 || p.StoredEnergy > p.StorageCapacity {
			t.Fatalf("step %d: stored %v outside [0, %v]", i, p.StoredEnergy, p.StorageCapacity)
		}
		if p.NetPower > 1e-9 && p.StoredEnergy > 1e-9 {
			t.Fatalf("step %d: net %v with non-empty store %v", i, p.NetPower, p.StoredEnergy)
		}
	}
}

func TestProsumer_GenerateFromPatterns(t *testing.T) {
	load := &seriesLoad{values: []float64{100, 200}}
	p, err := NewProsumer("house", ProsumerConfig{
		StorageCapacity: 0,
		Load:            load,
		Production:      ProductionPattern{Mean: 50},
	}, WithRand(rand.NewPCG(1, 1)))
	require.NoError(t, err)

	p.GenerateConsumption()
	p.GenerateProduction()
	assert.Equal(t, 100.0, p.TotalConsumption)
	assert.Equal(t, 50.0, p.TotalProduction)
	assert.Equal(t, 50.0, p.NetPower)

	p.GenerateConsumption()
	assert.Equal(t, 300.0, p.TotalConsumption)
}

func TestProsumer_NoPatternsIsNoop(t *testing.T) {
	p := newTestProsumer(t, 10)
	p.GenerateConsumption()
	p.GenerateProduction()
	assert.Zero(t, p.TotalConsumption)
	assert.Zero(t, p.TotalProduction)
}

func TestProsumer_Validation(t *testing.T) {
	if _, err := NewProsumer("p", ProsumerConfig{StorageCapacity: -1}); err == nil {
		t.Fatal("expected error for negative capacity")
	}
}
