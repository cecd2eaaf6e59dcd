package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_NilTrace_ReturnsZeroValue(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalRounds)
	assert.Nil(t, s.Elected)
}

func TestSummarize_CountsRoundsAndExhaustion(t *testing.T) {
	// GIVEN a three-round count over 10 votes
	et := NewElectionTrace(2, 4, 10)
	et.RecordRound(RoundRecord{Round: 0, Action: ActionElect, Elected: []string{"C1"}, Surplus: map[string]float64{"C1": 0.2}})
	et.RecordRound(RoundRecord{Round: 1, Action: ActionEliminate, Eliminated: "W2", Exhausted: 3, TieBroken: true})
	et.RecordRound(RoundRecord{Round: 2, Action: ActionFill, Elected: []string{"W1"}, Exhausted: 2})

	// WHEN summarizing
	s := Summarize(et)

	// THEN every action is counted once
	assert.Equal(t, 3, s.TotalRounds)
	assert.Equal(t, 1, s.ElectionRounds)
	assert.Equal(t, 1, s.EliminationRounds)
	assert.Equal(t, 1, s.FillRounds)
	assert.Equal(t, 1, s.TiesBroken)
	assert.Equal(t, []string{"C1", "W1"}, s.Elected)
	assert.Equal(t, []string{"W2"}, s.Eliminated)
	assert.Equal(t, 2.0, s.FinalExhausted)
	assert.InDelta(t, 0.3, s.MaxExhaustedShare, 1e-12)
}

func TestRoundRecord_ActiveWeight(t *testing.T) {
	r := RoundRecord{Tallies: map[string]float64{"C1": 1.5, "W1": 2.5}}
	assert.Equal(t, 4.0, r.ActiveWeight())
}

func TestIsValidTraceLevel(t *testing.T) {
	assert.True(t, IsValidTraceLevel(""))
	assert.True(t, IsValidTraceLevel("none"))
	assert.True(t, IsValidTraceLevel("rounds"))
	assert.False(t, IsValidTraceLevel("decisions"))
}
