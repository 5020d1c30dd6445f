// Package infra contains technical adapters such as snapshot recorders,
// MQTT publishers and metrics exporters. These packages should depend only
// on the interfaces defined in the core packages.
package infra
