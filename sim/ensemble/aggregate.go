package ensemble

import (
	"fmt"

	"github.com/rcv-sim/rcv-sim/sim"
	"github.com/rcv-sim/rcv-sim/sim/trace"
)

// ZoneResult holds one zone's per-trial winner counts.
type ZoneResult struct {
	ZoneID       string               `json:"zone_id"`
	PerBloc      map[string][]int     `json:"per_bloc"` // bloc tag -> winners per trial
	FailedTrials int                  `json:"failed_trials"`
	SampleTrace  *trace.ElectionTrace `json:"sample_trace,omitempty"`
}

// Trials returns the length of the zone's trial sequences.
func (z ZoneResult) Trials() int {
	for _, seq := range z.PerBloc {
		return len(seq)
	}
	return 0
}

// AggregateResult is the city-wide elementwise sum of zone sequences.
type AggregateResult struct {
	PerBloc map[string][]int `json:"per_bloc"`
}

// Merge adds b into a elementwise. Sequences for the same tag must have equal
// length; a tag missing from one side counts as zeros. Merge is associative
// and commutative, so partial aggregates can be combined in any order.
func Merge(a, b AggregateResult) (AggregateResult, error) {
	out := AggregateResult{PerBloc: make(map[string][]int, len(a.PerBloc))}
	for tag, seq := range a.PerBloc {
		out.PerBloc[tag] = append([]int(nil), seq...)
	}
	for tag, seq := range b.PerBloc {
		acc, ok := out.PerBloc[tag]
		if !ok {
			out.PerBloc[tag] = append([]int(nil), seq...)
			continue
		}
		if len(acc) != len(seq) {
			return AggregateResult{}, &sim.ConfigError{
				Field:  "num_trials",
				Reason: fmt.Sprintf("bloc %s: cannot sum %d trials with %d trials", tag, len(acc), len(seq)),
			}
		}
		for i, v := range seq {
			acc[i] += v
		}
	}
	return out, nil
}

// Aggregate folds zone results into the city-wide distribution: index i of
// a bloc's sequence is the sum over zones of that zone's index i.
// Every zone must have run the same number of trials.
func Aggregate(zones []ZoneResult) (AggregateResult, error) {
	out := AggregateResult{PerBloc: make(map[string][]int)}
	trials := -1
	for _, z := range zones {
		n := z.Trials()
		if trials >= 0 && n != trials {
			return AggregateResult{}, &sim.ConfigError{
				Zone:   z.ZoneID,
				Field:  "num_trials",
				Reason: fmt.Sprintf("ran %d trials, other zones ran %d", n, trials),
			}
		}
		trials = n
		var err error
		out, err = Merge(out, AggregateResult{PerBloc: z.PerBloc})
		if err != nil {
			return AggregateResult{}, err
		}
	}
	return out, nil
}
