package grid

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	packets []Packet
}

func (m *recordingMirror) MirrorPacket(_ string, pkt Packet) { m.packets = append(m.packets, pkt) }

func TestCommunicationNetwork_Reliability(t *testing.T) {
	if _, err := NewCommunicationNetwork("n", 1.1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	always, err := NewCommunicationNetwork("always", 1, WithRand(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	never, err := NewCommunicationNetwork("never", 0, WithRand(rand.NewPCG(1, 1)))
	require.NoError(t, err)

	mirror := &recordingMirror{}
	always.SetMirror(mirror)
	for i := 0; i < 100; i++ {
		pkt := Packet{Tick: i}
		if !always.Transmit(pkt) || !always.Receive(pkt) {
			t.Fatalf("packet %d dropped on a reliable network", i)
		}
		if never.Transmit(pkt) {
			t.Fatalf("packet %d delivered on a dead network", i)
		}
	}
	assert.Len(t, always.Transmitted, 100)
	assert.Len(t, always.Received, 100)
	assert.Len(t, mirror.packets, 100)
	assert.Equal(t, 100, never.Dropped)
}

func TestSmartMeter_Send(t *testing.T) {
	p := newTestProsumer(t, 100)
	p.Consume(300)
	n, err := NewCommunicationNetwork("lan", 1)
	require.NoError(t, err)
	m, err := NewSmartMeter("", p, n)
	require.NoError(t, err)
	assert.Equal(t, "meter-house", m.Name())

	pkt, ok := m.Send(4)
	require.True(t, ok)
	assert.Equal(t, 4, pkt.Tick)
	assert.Equal(t, Measurement{Prosumer: "house", Usage: 300, NetPower: 300}, pkt.Measurement)
	assert.NotEqual(t, pkt.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestSmartMeter_RequiresCollaborators(t *testing.T) {
	if _, err := NewSmartMeter("m", nil, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
