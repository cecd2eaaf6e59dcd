// Package testutil provides shared test infrastructure for the election
// simulator: float assertions and small zone fixtures used across sim/ and
// its sub-package tests.
package testutil

import (
	"math"
	"testing"

	"github.com/rcv-sim/rcv-sim/sim"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertSimplex checks that xs is non-negative and sums to 1 within tol.
func AssertSimplex(t *testing.T, name string, xs []float64, tol float64) {
	t.Helper()
	sum := 0.0
	for i, v := range xs {
		if v < 0 || math.IsNaN(v) {
			t.Errorf("%s[%d] = %v, want non-negative", name, i, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > tol {
		t.Errorf("%s sums to %v, want 1 (tol %v)", name, sum, tol)
	}
}

// TwoBlocZone returns a valid two-bloc zone (tags C and W) with even shares,
// perfect cohesion, unit alphas and the given slate sizes.
func TwoBlocZone(id string, cCands, wCands, seats, ballots, trials int) sim.ZoneConfig {
	return sim.ZoneConfig{
		ID: id,
		Blocs: []sim.Bloc{
			{Tag: "C", Name: "POC Preferred", Candidates: cCands},
			{Tag: "W", Name: "White Preferred", Candidates: wCands},
		},
		Shares:     []float64{0.5, 0.5},
		Cohesion:   [][]float64{{1, 0}, {0, 1}},
		Alphas:     [][]float64{{1, 1}, {1, 1}},
		Seats:      seats,
		NumBallots: ballots,
		NumTrials:  trials,
	}
}

// ThreeBlocZone returns a valid C/WP/WM zone with the given shares and
// cohesion rows, unit alphas and three candidates per slate.
func ThreeBlocZone(id string, shares []float64, cohesion [][]float64, seats, ballots, trials int) sim.ZoneConfig {
	return sim.ZoneConfig{
		ID: id,
		Blocs: []sim.Bloc{
			{Tag: "C", Candidates: 3},
			{Tag: "WP", Candidates: 3},
			{Tag: "WM", Candidates: 3},
		},
		Shares:     shares,
		Cohesion:   cohesion,
		Alphas:     [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
		Seats:      seats,
		NumBallots: ballots,
		NumTrials:  trials,
	}
}

// Profile builds a ballot profile over cands from (ballot, count) pairs given
// as candidate names.
func Profile(t *testing.T, cands *sim.CandidateSet, entries ...ProfileEntry) *sim.BallotProfile {
	t.Helper()
	index := make(map[string]int, cands.Len())
	for i, n := range cands.Names {
		index[n] = i
	}
	p := sim.NewBallotProfile(cands)
	for _, e := range entries {
		b := make(sim.Ballot, len(e.Ranking))
		for i, name := range e.Ranking {
			id, ok := index[name]
			if !ok {
				t.Fatalf("unknown candidate %q", name)
			}
			b[i] = id
		}
		p.Add(b, e.Count)
	}
	return p
}

// ProfileEntry is Count voters casting Ranking.
type ProfileEntry struct {
	Ranking []string
	Count   int
}
