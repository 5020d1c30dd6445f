package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetAggregator_SumsEveryPacket(t *testing.T) {
	a := NewNetAggregator("agg")
	a.Collect(Packet{Tick: 0, Measurement: Measurement{Prosumer: "a", Usage: 10, Production: 1, StoredEnergy: 5}})
	a.Collect(Packet{Tick: 0, Measurement: Measurement{Prosumer: "b", Usage: 20, Production: 2}})
	a.Collect(Packet{Tick: 1, Measurement: Measurement{Prosumer: "a", Usage: 15, Production: 3, StoredEnergy: 1}})

	s := a.Aggregate()
	assert.Equal(t, Summary{Tick: 1, Prosumers: 2, TotalUsage: 45, TotalProduction: 6, TotalStoredEnergy: 6}, s)
	assert.Len(t, a.Collected, 3)
}

func TestNetAggregator_AggregateEmpty(t *testing.T) {
	a := NewNetAggregator("agg")
	assert.Equal(t, Summary{}, a.Aggregate())
}

func TestUtilityCompany_ReplacesPerAggregator(t *testing.T) {
	u := NewUtilityCompany("utility")
	a := NewNetAggregator("agg")
	a.Collect(Packet{Measurement: Measurement{Prosumer: "a", Usage: 10}})
	a.Aggregate()
	a.SendToUtility(u)

	a.Collect(Packet{Tick: 1, Measurement: Measurement{Prosumer: "a", Usage: 12}})
	a.Aggregate()
	a.SendToUtility(u)

	u.ReceiveSummary("other", Summary{Prosumers: 1, TotalUsage: 3})

	require.Len(t, u.Summaries, 2)
	assert.Equal(t, 22.0, u.Summaries["agg"].TotalUsage)
	assert.Equal(t, 25.0, u.Total().TotalUsage)
	assert.Equal(t, 3, u.Received)
	assert.Equal(t, []*NetAggregator{a}, u.Aggregators())
}

func TestNetAggregator_RelayDemandResponse(t *testing.T) {
	p := newTestProsumer(t, 0)
	a := NewNetAggregator("agg")
	a.Serve(p)
	a.Serve(p)
	require.Len(t, a.Prosumers(), 1)

	a.Relay([]Command{
		{Kind: CommandLoadBalancing, Message: "Increase generation"},
		{Kind: CommandDemandResponse, Message: "Send demand response signal to consumers"},
	})
	assert.Equal(t, []string{"Send demand response signal to consumers"}, p.ReceivedCommands)
	assert.Equal(t, []string{"Send demand response signal to consumers"}, a.Commands["house"])
}

func TestNetAggregator_SendCommand(t *testing.T) {
	p := newTestProsumer(t, 0)
	a := NewNetAggregator("agg")
	a.SendCommand(p, "shed load")
	assert.Equal(t, []string{"shed load"}, p.ReceivedCommands)
	assert.Equal(t, []string{"shed load"}, a.Commands["house"])
}

func TestControlSystem_AnalyzeGrid(t *testing.T) {
	cases := []struct {
		name  string
		data  map[string]map[string]float64
		kinds []string
		first string
	}{
		{
			name: "surplus",
			data: map[string]map[string]float64{
				SectionGeneration:  {"u": 1000},
				SectionConsumption: {"u": 500},
			},
			kinds: []string{CommandLoadBalancing},
			first: "Reduce generation",
		},
		{
			name: "deficit",
			data: map[string]map[string]float64{
				SectionGeneration:  {"u": 500},
				SectionConsumption: {"u": 1000},
			},
			kinds: []string{CommandLoadBalancing, CommandDemandResponse},
			first: "Increase generation",
		},
		{
			name: "congested lines",
			data: map[string]map[string]float64{
				SectionGeneration:   {"u": 1000},
				SectionConsumption:  {"u": 1000},
				SectionTransmission: {"t": 900},
			},
			kinds: []string{CommandDemandResponse, CommandStability},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewControlSystem("ctl")
			for section, data := range tc.data {
				require.NoError(t, c.UpdateGridData(section, data))
			}
			cmds := c.AnalyzeGrid(3)
			var kinds []string
			for _, cmd := range cmds {
				kinds = append(kinds, cmd.Kind)
				assert.Equal(t, 3, cmd.Tick)
			}
			assert.Equal(t, tc.kinds, kinds)
			if tc.first != "" {
				assert.Equal(t, tc.first, cmds[0].Message)
			}
			assert.Len(t, c.Issued, len(cmds))
		})
	}
}

func TestControlSystem_UnknownSection(t *testing.T) {
	c := NewControlSystem("ctl")
	if err := c.UpdateGridData("weather", map[string]float64{"x": 1}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestControlSystem_IssueCommands(t *testing.T) {
	c := NewControlSystem("ctl")
	require.NoError(t, c.UpdateGridData(SectionGeneration, map[string]float64{"u": 10}))
	a := NewNetAggregator("agg")
	c.IssueCommands(a, c.AnalyzeGrid(0))
	assert.Equal(t, []string{"Reduce generation"}, a.Commands[CommandLoadBalancing])
}
