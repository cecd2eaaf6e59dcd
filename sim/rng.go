package sim

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible ensemble run.
// Two runs with the same SimulationKey and identical zone configurations
// MUST produce bit-for-bit identical results, regardless of worker count.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemPreference is the RNG subsystem for Dirichlet draws that build
	// preference intervals.
	SubsystemPreference = "preference"

	// SubsystemBallots is the RNG subsystem for bloc membership and ranking draws.
	SubsystemBallots = "ballots"

	// SubsystemTiebreak is the RNG subsystem for STV tie resolution.
	SubsystemTiebreak = "tiebreak"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG streams for one trial.
//
// Derivation formula (PCG with two 64-bit words):
//   - seed1 = masterSeed XOR fnv1a64(zoneID)
//   - seed2 = trialIndex XOR fnv1a64(subsystemName)
//
// Streams never depend on the order in which trials are executed, so trials
// can run on any worker in any order.
//
// Thread-safety: NOT thread-safe. One PartitionedRNG per trial goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	zoneID     string
	trial      int
	sources    map[string]*rand.PCG
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG for the given trial of a zone.
func NewPartitionedRNG(key SimulationKey, zoneID string, trial int) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		zoneID:     zoneID,
		trial:      trial,
		sources:    make(map[string]*rand.PCG),
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(p.Source(name))
	p.subsystems[name] = rng
	return rng
}

// Source returns the rand.Source backing the named subsystem. gonum
// distributions take a rand.Source rather than a *rand.Rand; both views of a
// subsystem share one stream.
func (p *PartitionedRNG) Source(name string) rand.Source {
	if src, ok := p.sources[name]; ok {
		return src
	}
	seed1 := uint64(p.key) ^ fnv1a64(p.zoneID)
	seed2 := uint64(p.trial) ^ fnv1a64(name)
	src := rand.NewPCG(seed1, seed2)
	p.sources[name] = src
	return src
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// String identifies the stream for log lines.
func (p *PartitionedRNG) String() string {
	return "zone=" + p.zoneID + " trial=" + strconv.Itoa(p.trial)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
