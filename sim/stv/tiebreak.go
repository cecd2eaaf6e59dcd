package stv

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/rcv-sim/rcv-sim/sim"
)

// ValidTiebreaks is the set of recognized tiebreak policy names.
// An empty string selects random.
var ValidTiebreaks = map[string]bool{"": true, "random": true, "first-place": true, "borda": true}

// IsValidTiebreak reports whether name is a recognized tiebreak policy.
func IsValidTiebreak(name string) bool {
	return ValidTiebreaks[name]
}

// TieBreaker resolves ties between candidates.
// tied is sorted by candidate index and holds at least two candidates.
type TieBreaker interface {
	// Winner picks the candidate that ranks highest among tied.
	Winner(tied []int) int
	// Loser picks the candidate that ranks lowest among tied.
	Loser(tied []int) int
}

// NewTieBreaker creates a tiebreak policy by name. Score-based policies
// precompute their scores from profile and fall back to a uniform random
// choice among candidates whose scores are also tied.
func NewTieBreaker(name string, profile *sim.BallotProfile, rng *rand.Rand) (TieBreaker, error) {
	switch name {
	case "", "random":
		return &RandomTieBreaker{rng: rng}, nil
	case "first-place":
		return &ScoreTieBreaker{scores: profile.FirstPreferences(), fallback: &RandomTieBreaker{rng: rng}}, nil
	case "borda":
		return &ScoreTieBreaker{scores: BordaScores(profile), fallback: &RandomTieBreaker{rng: rng}}, nil
	default:
		return nil, fmt.Errorf("unknown tiebreak %q; valid: random, first-place, borda", name)
	}
}

// RandomTieBreaker chooses uniformly among tied candidates.
type RandomTieBreaker struct {
	rng *rand.Rand
}

func (r *RandomTieBreaker) Winner(tied []int) int {
	return tied[r.rng.IntN(len(tied))]
}

func (r *RandomTieBreaker) Loser(tied []int) int {
	return tied[r.rng.IntN(len(tied))]
}

// ScoreTieBreaker ranks tied candidates by a fixed per-candidate score.
type ScoreTieBreaker struct {
	scores   []float64
	fallback TieBreaker
}

func (s *ScoreTieBreaker) Winner(tied []int) int {
	return s.pick(tied, func(a, b float64) bool { return a > b }, s.fallback.Winner)
}

func (s *ScoreTieBreaker) Loser(tied []int) int {
	return s.pick(tied, func(a, b float64) bool { return a < b }, s.fallback.Loser)
}

func (s *ScoreTieBreaker) pick(tied []int, better func(a, b float64) bool, fallback func([]int) int) int {
	best := []int{tied[0]}
	for _, c := range tied[1:] {
		switch {
		case better(s.scores[c], s.scores[best[0]]):
			best = best[:0]
			best = append(best, c)
		case s.scores[c] == s.scores[best[0]]:
			best = append(best, c)
		}
	}
	if len(best) == 1 {
		return best[0]
	}
	return fallback(best)
}

// BordaScores scores each candidate n-1-i points for every ballot ranking it
// at position i, where n is the number of candidates. Unranked candidates
// receive nothing.
func BordaScores(profile *sim.BallotProfile) []float64 {
	n := profile.Candidates.Len()
	scores := make([]float64, n)
	for i, b := range profile.Ballots {
		w := float64(profile.Counts[i])
		for pos, c := range b {
			scores[c] += float64(n-1-pos) * w
		}
	}
	return scores
}

// orderByTally sorts cands by descending tally. Tied groups are
// ordered by repeatedly asking tb for the group's winner. Reports whether the
// policy had to decide anything.
func orderByTally(cands []int, tally []float64, tb TieBreaker) ([]int, bool) {
	sorted := slices.Clone(cands)
	slices.SortStableFunc(sorted, func(a, b int) int {
		switch {
		case tally[a] > tally[b]:
			return -1
		case tally[a] < tally[b]:
			return 1
		}
		return a - b
	})

	broken := false
	out := make([]int, 0, len(sorted))
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && tiedTallies(tally[sorted[j]], tally[sorted[i]]) {
			j++
		}
		group := slices.Clone(sorted[i:j])
		for len(group) > 1 {
			broken = true
			w := tb.Winner(group)
			out = append(out, w)
			group = slices.DeleteFunc(group, func(c int) bool { return c == w })
		}
		out = append(out, group...)
		i = j
	}
	return out, broken
}
