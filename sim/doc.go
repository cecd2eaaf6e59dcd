// Package sim provides the core model of the ranked-choice election simulator.
//
// # Reading Guide
//
// Start with these files to understand one simulated election:
//   - config.go: ZoneConfig (blocs, shares, cohesion, Dirichlet alphas) and its validation
//   - preference.go: per-bloc preference intervals drawn from Dirichlet distributions
//   - ballot.go: ranked ballots sampled from a bloc's preference interval
//   - profile.go: aggregated ballot profiles handed to the STV tabulator
//
// # Architecture
//
// The sim package defines the model types and the slate-preference ballot
// generator; the rest lives in sub-packages:
//   - sim/stv/: Single Transferable Vote tabulation (quota, tiebreaks, fractional transfer)
//   - sim/ensemble/: many independent trials per zone, winner counting and aggregation
//   - sim/scenario/: YAML experiment specs and built-in presets
//   - sim/trace/: round-by-round election traces
//
// # Determinism
//
// Every random draw comes from a PartitionedRNG stream derived from
// (SimulationKey, zone id, trial index, subsystem). A trial's outcome never
// depends on which worker ran it or in what order.
package sim
