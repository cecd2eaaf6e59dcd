package sim

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Ballot is a strict ranking of candidate indices, most preferred first.
// No candidate appears twice; a ballot may be shorter than the candidate list
// when a truncation rule is active.
type Ballot []int

// BallotSampler draws ballots for single voters: a bloc from the share
// distribution, then a ranking from that bloc's preference interval by
// weighted sampling without replacement.
type BallotSampler struct {
	blocs      distuv.Categorical
	intervals  []PreferenceInterval
	maxRanking int
	rng        *rand.Rand
}

// NewBallotSampler creates a sampler. shares and intervals are indexed by bloc.
// maxRanking > 0 truncates ballots to that many ranks.
func NewBallotSampler(shares []float64, intervals []PreferenceInterval, maxRanking int, rng *rand.Rand) *BallotSampler {
	return &BallotSampler{
		blocs:      distuv.NewCategorical(shares, rng),
		intervals:  intervals,
		maxRanking: maxRanking,
		rng:        rng,
	}
}

// Sample draws one ballot and the index of the voter's bloc.
func (s *BallotSampler) Sample() (Ballot, int) {
	bloc := int(s.blocs.Rand())
	return s.Rank(bloc), bloc
}

// Rank draws a ranking from bloc's preference interval.
// Candidates with positive mass are ranked by the weighted draw itself;
// zero-mass candidates follow in uniformly random order.
func (s *BallotSampler) Rank(bloc int) Ballot {
	mass := s.intervals[bloc].Mass
	ballot := make(Ballot, 0, len(mass))
	ranked := make([]bool, len(mass))

	w := sampleuv.NewWeighted(mass, s.rng)
	for {
		idx, ok := w.Take()
		if !ok {
			break
		}
		// Rounding in the weight heap can land on an item already taken.
		if ranked[idx] {
			continue
		}
		ranked[idx] = true
		ballot = append(ballot, idx)
	}

	if len(ballot) < len(mass) {
		start := len(ballot)
		for c := range mass {
			if !ranked[c] {
				ballot = append(ballot, c)
			}
		}
		rest := ballot[start:]
		s.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	}

	if s.maxRanking > 0 && len(ballot) > s.maxRanking {
		ballot = ballot[:s.maxRanking]
	}
	return ballot
}
