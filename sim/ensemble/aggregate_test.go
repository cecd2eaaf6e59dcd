package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcv-sim/rcv-sim/sim"
)

func TestAggregate_ElementwiseSum(t *testing.T) {
	// GIVEN two zones with three trials each
	zones := []ZoneResult{
		{ZoneID: "1", PerBloc: map[string][]int{"C": {1, 0, 2}, "W": {2, 3, 1}}},
		{ZoneID: "2", PerBloc: map[string][]int{"C": {0, 1, 1}, "W": {3, 2, 2}}},
	}

	// WHEN aggregating
	agg, err := Aggregate(zones)
	require.NoError(t, err)

	// THEN index i is the sum of the zones' index i
	assert.Equal(t, []int{1, 1, 3}, agg.PerBloc["C"])
	assert.Equal(t, []int{5, 5, 3}, agg.PerBloc["W"])
	assert.Equal(t, []int{1, 0, 2}, zones[0].PerBloc["C"], "inputs must not be modified")
}

func TestAggregate_UnequalTrialsRejected(t *testing.T) {
	zones := []ZoneResult{
		{ZoneID: "1", PerBloc: map[string][]int{"C": {1, 0}}},
		{ZoneID: "2", PerBloc: map[string][]int{"C": {0, 1, 1}}},
	}
	_, err := Aggregate(zones)
	assert.ErrorIs(t, err, sim.ErrConfiguration)
}

func TestMerge_MissingTagCountsAsZero(t *testing.T) {
	a := AggregateResult{PerBloc: map[string][]int{"C": {1, 2}}}
	b := AggregateResult{PerBloc: map[string][]int{"C": {1, 1}, "WM": {0, 1}}}

	ab, err := Merge(a, b)
	require.NoError(t, err)
	ba, err := Merge(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.Equal(t, []int{2, 3}, ab.PerBloc["C"])
	assert.Equal(t, []int{0, 1}, ab.PerBloc["WM"])
}

func TestMerge_LengthMismatch(t *testing.T) {
	_, err := Merge(
		AggregateResult{PerBloc: map[string][]int{"C": {1}}},
		AggregateResult{PerBloc: map[string][]int{"C": {1, 2}}},
	)
	assert.ErrorIs(t, err, sim.ErrConfiguration)
}

func TestAggregate_NoZones(t *testing.T) {
	agg, err := Aggregate(nil)
	require.NoError(t, err)
	assert.Empty(t, agg.PerBloc)
}
