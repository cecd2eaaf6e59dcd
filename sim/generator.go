package sim

import "fmt"

// BallotGenerator turns a zone configuration into one trial's ballot profile.
type BallotGenerator interface {
	GenerateProfile(zone *ZoneConfig, rng *PartitionedRNG) (*BallotProfile, error)
}

// ValidGenerators is the set of recognized ballot generator names.
// An empty string selects slate-preference.
var ValidGenerators = map[string]bool{"": true, "slate-preference": true}

// IsValidGenerator reports whether name is a recognized generator.
func IsValidGenerator(name string) bool {
	return ValidGenerators[name]
}

// NewBallotGenerator creates a generator by name.
// Returns an error on unrecognized names.
func NewBallotGenerator(name string) (BallotGenerator, error) {
	switch name {
	case "", "slate-preference":
		return SlatePreference{}, nil
	default:
		return nil, fmt.Errorf("unknown ballot generator %q; valid: slate-preference", name)
	}
}

// SlatePreference generates ballots from bloc-conditioned preference
// intervals: each bloc splits its support across slates by cohesion and
// within a slate by a Dirichlet(alpha) draw.
type SlatePreference struct{}

// GenerateProfile draws fresh preference intervals for every bloc, then
// zone.NumBallots ballots. Intervals come from the preference stream and
// ballots from the ballot stream, so changing the ballot count leaves the
// intervals unchanged.
func (SlatePreference) GenerateProfile(zone *ZoneConfig, rng *PartitionedRNG) (*BallotProfile, error) {
	cands := NewCandidateSet(zone.Blocs)
	intervals, err := BuildPreferenceIntervals(zone, cands, rng.Source(SubsystemPreference))
	if err != nil {
		return nil, fmt.Errorf("zone %s: %w", zone.ID, err)
	}
	sampler := NewBallotSampler(zone.Shares, intervals, zone.MaxRanking, rng.ForSubsystem(SubsystemBallots))
	return BuildProfile(sampler, cands, zone.NumBallots), nil
}
