package sim_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcv-sim/rcv-sim/sim"
)

func TestBallotSampler_FullRankingWithoutDuplicates(t *testing.T) {
	// GIVEN intervals with some zero-mass candidates
	intervals := []sim.PreferenceInterval{
		{Bloc: "C", Mass: []float64{0.7, 0.3, 0, 0}},
		{Bloc: "W", Mass: []float64{0, 0, 0.5, 0.5}},
	}
	s := sim.NewBallotSampler([]float64{0.5, 0.5}, intervals, 0, rand.New(rand.NewPCG(1, 1)))

	for i := 0; i < 500; i++ {
		// WHEN sampling a ballot
		b, bloc := s.Sample()

		// THEN it ranks every candidate exactly once
		require.Len(t, b, 4)
		seen := make(map[int]bool)
		for _, c := range b {
			assert.False(t, seen[c], "candidate %d ranked twice in %v", c, b)
			seen[c] = true
		}
		// AND positive-mass candidates come before zero-mass ones
		for _, c := range b[:2] {
			assert.Greater(t, intervals[bloc].Mass[c], 0.0, "ballot %v of bloc %d", b, bloc)
		}
	}
}

func TestBallotSampler_Truncation(t *testing.T) {
	intervals := []sim.PreferenceInterval{{Bloc: "C", Mass: []float64{0.25, 0.25, 0.25, 0.25}}}
	s := sim.NewBallotSampler([]float64{1}, intervals, 2, rand.New(rand.NewPCG(2, 2)))
	for i := 0; i < 50; i++ {
		b, _ := s.Sample()
		assert.Len(t, b, 2)
	}
}

func TestBallotSampler_FollowsPreferenceMass(t *testing.T) {
	// GIVEN a bloc that puts 90% of its mass on candidate 0
	intervals := []sim.PreferenceInterval{{Bloc: "C", Mass: []float64{0.9, 0.1}}}
	s := sim.NewBallotSampler([]float64{1}, intervals, 0, rand.New(rand.NewPCG(3, 3)))

	// WHEN sampling many ballots
	first := 0
	for i := 0; i < 2000; i++ {
		if b := s.Rank(0); b[0] == 0 {
			first++
		}
	}

	// THEN candidate 0 is ranked first about 90% of the time
	assert.InDelta(t, 0.9, float64(first)/2000, 0.03)
}

func TestBallotProfile_AddAndTotal(t *testing.T) {
	cands := sim.NewCandidateSet([]sim.Bloc{{Tag: "C", Candidates: 2}})
	p := sim.NewBallotProfile(cands)
	p.Add(sim.Ballot{0, 1}, 3)
	p.Add(sim.Ballot{1, 0}, 2)
	p.Add(sim.Ballot{0, 1}, 1)
	p.Add(sim.Ballot{1}, 0)

	assert.Equal(t, 6, p.Total())
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []int{4, 2}, p.Counts)
	assert.Equal(t, []float64{4, 2}, p.FirstPreferences())
}

func TestBuildProfile_TotalEqualsBallots(t *testing.T) {
	z := validZone()
	cands := sim.NewCandidateSet(z.Blocs)
	pis, err := sim.BuildPreferenceIntervals(&z, cands, rand.NewPCG(9, 9))
	require.NoError(t, err)
	s := sim.NewBallotSampler(z.Shares, pis, 0, rand.New(rand.NewPCG(10, 10)))

	p := sim.BuildProfile(s, cands, 321)

	assert.Equal(t, 321, p.Total())
	sum := 0
	for _, c := range p.Counts {
		sum += c
	}
	assert.Equal(t, 321, sum)
}

func TestSlatePreference_Deterministic(t *testing.T) {
	// GIVEN the same zone, key and trial
	z := validZone()
	gen, err := sim.NewBallotGenerator("")
	require.NoError(t, err)

	// WHEN generating twice
	p1, err := gen.GenerateProfile(&z, sim.NewPartitionedRNG(42, z.ID, 3))
	require.NoError(t, err)
	p2, err := gen.GenerateProfile(&z, sim.NewPartitionedRNG(42, z.ID, 3))
	require.NoError(t, err)

	// THEN the profiles are identical
	assert.Equal(t, p1.Ballots, p2.Ballots)
	assert.Equal(t, p1.Counts, p2.Counts)
	assert.Equal(t, z.NumBallots, p1.Total())
}

func TestNewBallotGenerator_Unknown(t *testing.T) {
	_, err := sim.NewBallotGenerator("impartial-culture")
	assert.Error(t, err)
	assert.False(t, sim.IsValidGenerator("impartial-culture"))
	assert.True(t, sim.IsValidGenerator("slate-preference"))
}
