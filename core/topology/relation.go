package topology

import (
	"fmt"

	"github.com/kilianp07/gridsim/core/grid"
)

// RelationKind names the type of an edge in the grid graph.
type RelationKind string

const (
	GeneratorToTransmitter  RelationKind = "generator_to_transmitter"
	TransmitterToSubstation RelationKind = "transmitter_to_substation"
	SubstationToDistributor RelationKind = "substation_to_distributor"
	DistributorToProsumer   RelationKind = "distributor_to_prosumer"
	ProsumerToSmartMeter    RelationKind = "prosumer_to_smart_meter"
	SmartMeterToAggregator  RelationKind = "smart_meter_to_aggregator"
	AggregatorToUtility     RelationKind = "aggregator_to_utility"
	UtilityToControl        RelationKind = "utility_to_control"
)

// Relations returns every relation kind in propagation order.
func Relations() []RelationKind {
	return []RelationKind{
		GeneratorToTransmitter,
		TransmitterToSubstation,
		SubstationToDistributor,
		DistributorToProsumer,
		ProsumerToSmartMeter,
		SmartMeterToAggregator,
		AggregatorToUtility,
		UtilityToControl,
	}
}

// ParseRelationKind validates s as a relation kind.
func ParseRelationKind(s string) (RelationKind, error) {
	k := RelationKind(s)
	if _, ok := rules[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRelationKind, s)
	}
	return k, nil
}

// Category groups components of the same role.
type Category string

const (
	Generators            Category = "generators"
	Transmitters          Category = "transmitters"
	Substations           Category = "substations"
	Distributors          Category = "distributors"
	Prosumers             Category = "prosumers"
	SmartMeters           Category = "smart_meters"
	Aggregators           Category = "aggregators"
	UtilityCompanies      Category = "utility_companies"
	ControlSystems        Category = "control_systems"
	CommunicationNetworks Category = "communication_networks"
)

// Categories returns every category in snapshot order.
func Categories() []Category {
	return []Category{
		Generators,
		Transmitters,
		Substations,
		Distributors,
		Prosumers,
		SmartMeters,
		Aggregators,
		UtilityCompanies,
		ControlSystems,
		CommunicationNetworks,
	}
}

type rule struct {
	source, target Category
}

var rules = map[RelationKind]rule{
	GeneratorToTransmitter:  {Generators, Transmitters},
	TransmitterToSubstation: {Transmitters, Substations},
	SubstationToDistributor: {Substations, Distributors},
	DistributorToProsumer:   {Distributors, Prosumers},
	ProsumerToSmartMeter:    {Prosumers, SmartMeters},
	SmartMeterToAggregator:  {SmartMeters, Aggregators},
	AggregatorToUtility:     {Aggregators, UtilityCompanies},
	UtilityToControl:        {UtilityCompanies, ControlSystems},
}

// Endpoints returns the source and target categories of kind.
func Endpoints(kind RelationKind) (source, target Category, ok bool) {
	r, ok := rules[kind]
	return r.source, r.target, ok
}

// CategoryOf reports the category a component belongs to.
func CategoryOf(c any) (Category, bool) {
	switch c.(type) {
	case grid.Generator:
		return Generators, true
	case *grid.Transmitter:
		return Transmitters, true
	case *grid.Substation:
		return Substations, true
	case *grid.Distributor:
		return Distributors, true
	case *grid.Prosumer:
		return Prosumers, true
	case *grid.SmartMeter:
		return SmartMeters, true
	case *grid.NetAggregator:
		return Aggregators, true
	case *grid.UtilityCompany:
		return UtilityCompanies, true
	case *grid.ControlSystem:
		return ControlSystems, true
	case *grid.CommunicationNetwork:
		return CommunicationNetworks, true
	}
	return "", false
}
