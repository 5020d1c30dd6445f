// Package grid contains the components of the simulated electrical grid.
//
// Generators turn an environmental or fuel input into power, transmission
// lines and substations convert that power stage by stage, distributors hand
// it to prosumers, and the telemetry layer (smart meters, communication
// networks, aggregators, utilities and control systems) reports on the
// prosumers' state. Apart from Prosumer and the fuel counter of PowerPlant,
// every component is a transform recomputed each tick.
package grid
