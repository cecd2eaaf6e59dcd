// Package stv tabulates multi-seat Single Transferable Vote elections with
// fractional surplus transfer.
package stv

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/rcv-sim/rcv-sim/sim"
	"github.com/rcv-sim/rcv-sim/sim/trace"
)

// Options configures one count.
type Options struct {
	Seats    int
	Quota    string     // "droop" (default) or "hare"
	Tiebreak string     // "random" (default), "first-place" or "borda"
	RNG      *rand.Rand // source for random tiebreaks; required when ties may be broken randomly
}

// Result is the outcome of one count.
type Result struct {
	Winners    []string // in election order, exactly Seats long
	Elected    []int    // candidate indices, same order as Winners
	Eliminated []int    // candidate indices in elimination order
	Quota      float64
	Trace      *trace.ElectionTrace
}

type status uint8

const (
	active status = iota
	elected
	eliminated
)

// count holds the mutable state of one tabulation. Voters with identical
// rankings follow identical paths and are scaled identically, so state is
// kept per distinct ballot: the group's total weight and its current
// preference position.
type count struct {
	profile *sim.BallotProfile
	status  []status
	weight  []float64 // per distinct ballot
	pos     []int     // index into the ballot of its current preference; len(ballot) when exhausted
}

// Tabulate runs the STV count over profile.
//
// Each round tallies every non-exhausted ballot's weight to its current
// preference. Active candidates at or above quota are elected in descending
// tally order; each one's ballots are scaled by (T-quota)/T and forwarded to
// their next active preference. If nobody reaches quota the lowest active
// candidate is eliminated and its ballots move on at full weight. Ballots
// with no active preference left are exhausted and drop out of the tally.
// Whenever no more candidates remain active than there are open seats, all
// of them are elected.
//
// Returns a ConfigError when the profile is empty or seats exceed the
// number of candidates.
func Tabulate(profile *sim.BallotProfile, opts Options) (*Result, error) {
	if profile == nil || profile.Total() == 0 {
		return nil, &sim.ConfigError{Field: "profile", Reason: "ballot profile is empty"}
	}
	n := profile.Candidates.Len()
	if opts.Seats < 1 || opts.Seats > n {
		return nil, &sim.ConfigError{Field: "seats", Reason: fmt.Sprintf("%d seats with %d candidates", opts.Seats, n)}
	}
	total := float64(profile.Total())
	quota, err := Quota(opts.Quota, total, opts.Seats)
	if err != nil {
		return nil, &sim.ConfigError{Field: "quota", Reason: err.Error()}
	}
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(0, 0))
	}
	tb, err := NewTieBreaker(opts.Tiebreak, profile, rng)
	if err != nil {
		return nil, &sim.ConfigError{Field: "tiebreak", Reason: err.Error()}
	}

	c := &count{
		profile: profile,
		status:  make([]status, n),
		weight:  make([]float64, profile.Len()),
		pos:     make([]int, profile.Len()),
	}
	for i, k := range profile.Counts {
		c.weight[i] = float64(k)
	}

	res := &Result{Quota: quota, Trace: trace.NewElectionTrace(opts.Seats, quota, total)}
	names := profile.Candidates.Names

	for round := 0; len(res.Elected) < opts.Seats; round++ {
		tally, exhausted := c.tally()
		record := trace.RoundRecord{
			Round:     round,
			Tallies:   make(map[string]float64),
			Exhausted: exhausted,
		}
		standing := c.active()
		for _, cand := range standing {
			record.Tallies[names[cand]] = tally[cand]
		}

		open := opts.Seats - len(res.Elected)
		if len(standing) <= open {
			order, broken := orderByTally(standing, tally, tb)
			for _, cand := range order {
				c.status[cand] = elected
				res.Elected = append(res.Elected, cand)
			}
			record.Action = trace.ActionFill
			record.Elected = profile.Candidates.NamesOf(order)
			record.TieBroken = broken
			res.Trace.RecordRound(record)
			break
		}

		var reached []int
		for _, cand := range standing {
			if tally[cand] >= quota {
				reached = append(reached, cand)
			}
		}

		if len(reached) > 0 {
			order, broken := orderByTally(reached, tally, tb)
			if len(order) > open {
				order = order[:open]
			}
			for _, cand := range order {
				c.status[cand] = elected
				res.Elected = append(res.Elected, cand)
			}
			record.Action = trace.ActionElect
			record.Elected = profile.Candidates.NamesOf(order)
			record.TieBroken = broken
			if len(res.Elected) < opts.Seats {
				record.Surplus = make(map[string]float64, len(order))
				for _, cand := range order {
					frac := 0.0
					if tally[cand] > quota {
						frac = (tally[cand] - quota) / tally[cand]
					}
					record.Surplus[names[cand]] = frac
					c.transfer(cand, frac)
				}
			}
			res.Trace.RecordRound(record)
			continue
		}

		loser, broken := lowest(standing, tally, tb)
		c.status[loser] = eliminated
		res.Eliminated = append(res.Eliminated, loser)
		c.transfer(loser, 1)
		record.Action = trace.ActionEliminate
		record.Eliminated = names[loser]
		record.TieBroken = broken
		res.Trace.RecordRound(record)
	}

	res.Winners = profile.Candidates.NamesOf(res.Elected)
	return res, nil
}

// tally returns per-candidate weight and the weight of exhausted ballots.
// Every ballot's position is first advanced past candidates that are no
// longer active.
func (c *count) tally() ([]float64, float64) {
	out := make([]float64, len(c.status))
	exhausted := 0.0
	for i, b := range c.profile.Ballots {
		c.advance(i)
		if c.pos[i] >= len(b) {
			exhausted += c.weight[i]
			continue
		}
		out[b[c.pos[i]]] += c.weight[i]
	}
	return out, exhausted
}

// transfer scales the weight of every ballot currently held by cand and moves
// it to its next active preference.
func (c *count) transfer(cand int, frac float64) {
	for i, b := range c.profile.Ballots {
		if c.pos[i] < len(b) && b[c.pos[i]] == cand {
			c.weight[i] *= frac
			c.advance(i)
		}
	}
}

func (c *count) advance(i int) {
	b := c.profile.Ballots[i]
	for c.pos[i] < len(b) && c.status[b[c.pos[i]]] != active {
		c.pos[i]++
	}
}

func (c *count) active() []int {
	var out []int
	for cand, s := range c.status {
		if s == active {
			out = append(out, cand)
		}
	}
	return out
}

// tieTolerance is the relative gap below which two tallies count as tied.
// Fractional transfers can leave equal tallies a few ulps apart depending on
// how ballots are grouped.
const tieTolerance = 1e-9

func tiedTallies(a, b float64) bool {
	return math.Abs(a-b) <= tieTolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// lowest returns the active candidate with the smallest tally, asking tb to
// choose when several share it.
func lowest(standing []int, tally []float64, tb TieBreaker) (int, bool) {
	floor := tally[standing[0]]
	for _, cand := range standing[1:] {
		floor = min(floor, tally[cand])
	}
	var tied []int
	for _, cand := range standing {
		if tiedTallies(tally[cand], floor) {
			tied = append(tied, cand)
		}
	}
	if len(tied) == 1 {
		return tied[0], false
	}
	slices.Sort(tied)
	return tb.Loser(tied), true
}
