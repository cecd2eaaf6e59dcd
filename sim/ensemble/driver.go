// Package ensemble runs many independent simulated STV elections per zone
// and folds their per-bloc winner counts into zone and city-wide distributions.
package ensemble

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rcv-sim/rcv-sim/sim"
	"github.com/rcv-sim/rcv-sim/sim/stv"
	"github.com/rcv-sim/rcv-sim/sim/trace"
)

// Options configures an ensemble run. Zero values select the defaults.
type Options struct {
	Key        sim.SimulationKey
	Workers    int    // concurrent trials; 0 = runtime.NumCPU()
	Generator  string // ballot generator name; "" = slate-preference
	Quota      string // "" = droop
	Tiebreak   string // "" = random
	TraceLevel trace.TraceLevel
}

// Validate checks policy names.
func (o Options) Validate() error {
	if !sim.IsValidGenerator(o.Generator) {
		return &sim.ConfigError{Field: "generator", Reason: fmt.Sprintf("unknown ballot generator %q", o.Generator)}
	}
	if !stv.IsValidQuotaRule(o.Quota) {
		return &sim.ConfigError{Field: "quota", Reason: fmt.Sprintf("unknown quota rule %q", o.Quota)}
	}
	if !stv.IsValidTiebreak(o.Tiebreak) {
		return &sim.ConfigError{Field: "tiebreak", Reason: fmt.Sprintf("unknown tiebreak %q", o.Tiebreak)}
	}
	if !trace.IsValidTraceLevel(string(o.TraceLevel)) {
		return &sim.ConfigError{Field: "trace", Reason: fmt.Sprintf("unknown trace level %q", o.TraceLevel)}
	}
	if o.Workers < 0 {
		return &sim.ConfigError{Field: "workers", Reason: fmt.Sprintf("must be non-negative, got %d", o.Workers)}
	}
	return nil
}

// Result is the structured output handed to the reporting layer.
type Result struct {
	Blocs     []string        `json:"blocs"` // tags in first-seen zone order
	Trials    int             `json:"trials"`
	Zones     []ZoneResult    `json:"zones"`
	Aggregate AggregateResult `json:"aggregate"`
	Complete  bool            `json:"complete"`
}

// TrialOutcome is the result of one simulated election.
type TrialOutcome struct {
	Counts   []int // winners per bloc, indexed like ZoneConfig.Blocs
	Election *stv.Result
}

// RunTrial runs one {preference model → ballots → profile → STV} pipeline.
// It is a pure function of the zone, the trial index and opts.Key.
func RunTrial(zone *sim.ZoneConfig, trial int, gen sim.BallotGenerator, opts Options) (TrialOutcome, error) {
	rng := sim.NewPartitionedRNG(opts.Key, zone.ID, trial)
	profile, err := gen.GenerateProfile(zone, rng)
	if err != nil {
		return TrialOutcome{}, fmt.Errorf("generating ballots: %w", err)
	}
	res, err := stv.Tabulate(profile, stv.Options{
		Seats:    zone.Seats,
		Quota:    opts.Quota,
		Tiebreak: opts.Tiebreak,
		RNG:      rng.ForSubsystem(sim.SubsystemTiebreak),
	})
	if err != nil {
		return TrialOutcome{}, fmt.Errorf("tabulating: %w", err)
	}
	counts := NewWinnerCounter(zone.Tags()).Count(res.Winners)
	return TrialOutcome{Counts: counts, Election: res}, nil
}

// runTrialRecovered is RunTrial with a panic reported as the trial's error.
func runTrialRecovered(zone *sim.ZoneConfig, trial int, gen sim.BallotGenerator, opts Options) (out TrialOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = TrialOutcome{}, fmt.Errorf("panic: %v", r)
		}
	}()
	return RunTrial(zone, trial, gen, opts)
}

// Run simulates every zone's NumTrials elections on a bounded worker pool and
// aggregates the results.
//
// All zones are validated and must share NumTrials before any trial starts.
// A trial that fails or panics is recorded as zero winners for every bloc and
// counted in ZoneResult.FailedTrials. When ctx is cancelled no new trials are issued;
// the returned result covers the longest prefix of trial indices completed
// in every zone, Complete is false, and the error is ctx.Err().
func Run(ctx context.Context, zones []sim.ZoneConfig, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	gen, err := sim.NewBallotGenerator(opts.Generator)
	if err != nil {
		return nil, &sim.ConfigError{Field: "generator", Reason: err.Error()}
	}
	return run(ctx, zones, gen, opts)
}

func run(ctx context.Context, zones []sim.ZoneConfig, gen sim.BallotGenerator, opts Options) (*Result, error) {
	if len(zones) == 0 {
		return nil, &sim.ConfigError{Field: "zones", Reason: "at least one zone required"}
	}

	prepared := make([]sim.ZoneConfig, len(zones))
	seen := make(map[string]bool, len(zones))
	for i, z := range zones {
		p, err := z.Prepared()
		if err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, &sim.ConfigError{Zone: p.ID, Field: "id", Reason: "duplicate zone id"}
		}
		seen[p.ID] = true
		if i > 0 && p.NumTrials != prepared[0].NumTrials {
			return nil, &sim.ConfigError{
				Zone:   p.ID,
				Field:  "num_trials",
				Reason: fmt.Sprintf("%d trials, zone %s has %d", p.NumTrials, prepared[0].ID, prepared[0].NumTrials),
			}
		}
		prepared[i] = p
	}
	numTrials := prepared[0].NumTrials

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	logrus.Infof("Running %d zones x %d trials on %d workers (seed %d)", len(prepared), numTrials, workers, opts.Key)

	outcomes := make([][]TrialOutcome, len(prepared))
	failed := make([][]bool, len(prepared))
	done := make([][]bool, len(prepared))
	for z := range prepared {
		outcomes[z] = make([]TrialOutcome, numTrials)
		failed[z] = make([]bool, numTrials)
		done[z] = make([]bool, numTrials)
	}

	// Each task writes only its own (zone, trial) slots; slots are read after Wait.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
issue:
	for t := 0; t < numTrials; t++ {
		for z := range prepared {
			if gctx.Err() != nil {
				break issue
			}
			zone := &prepared[z]
			g.Go(func() error {
				out, err := runTrialRecovered(zone, t, gen, opts)
				if err != nil {
					logrus.Warnf("zone %s trial %d failed, counting zero winners: %v", zone.ID, t, err)
					out = TrialOutcome{Counts: make([]int, len(zone.Blocs))}
					failed[z][t] = true
				} else {
					logrus.Debugf("zone %s trial %d winners %v", zone.ID, t, out.Election.Winners)
					if t != 0 || opts.TraceLevel != trace.TraceLevelRounds {
						out.Election = nil
					}
				}
				outcomes[z][t] = out
				done[z][t] = true
				return nil
			})
		}
	}
	_ = g.Wait()

	completed := numTrials
	for z := range done {
		for t, ok := range done[z] {
			if !ok {
				completed = min(completed, t)
				break
			}
		}
	}

	res := &Result{Trials: completed, Complete: completed == numTrials}
	tagSeen := make(map[string]bool)
	for z, zone := range prepared {
		zr := ZoneResult{ZoneID: zone.ID, PerBloc: make(map[string][]int, len(zone.Blocs))}
		for b, bloc := range zone.Blocs {
			seq := make([]int, completed)
			for t := 0; t < completed; t++ {
				seq[t] = outcomes[z][t].Counts[b]
			}
			zr.PerBloc[bloc.Tag] = seq
			if !tagSeen[bloc.Tag] {
				tagSeen[bloc.Tag] = true
				res.Blocs = append(res.Blocs, bloc.Tag)
			}
		}
		for t := 0; t < completed; t++ {
			if failed[z][t] {
				zr.FailedTrials++
			}
		}
		if opts.TraceLevel == trace.TraceLevelRounds && completed > 0 && outcomes[z][0].Election != nil {
			zr.SampleTrace = outcomes[z][0].Election.Trace
		}
		res.Zones = append(res.Zones, zr)
	}

	agg, err := Aggregate(res.Zones)
	if err != nil {
		return nil, err
	}
	res.Aggregate = agg

	if !res.Complete {
		logrus.Warnf("Run cancelled after %d of %d trials", completed, numTrials)
		return res, ctx.Err()
	}
	logrus.Infof("Completed %d zones x %d trials", len(prepared), numTrials)
	return res, nil
}
