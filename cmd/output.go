package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rcv-sim/rcv-sim/sim/ensemble"
	"github.com/rcv-sim/rcv-sim/sim/scenario"
	"github.com/rcv-sim/rcv-sim/sim/trace"
)

// Report is the persisted outcome of one ensemble run.
type Report struct {
	Seed             int64                                       `json:"seed"`
	Seats            int                                         `json:"seats"`
	NumBallots       int                                         `json:"num_ballots"`
	Trials           int                                         `json:"trials"`
	Complete         bool                                        `json:"complete"`
	Blocs            []string                                    `json:"blocs"`
	BlocNames        map[string]string                           `json:"bloc_names,omitempty"`
	Zones            []ensemble.ZoneResult                       `json:"zones"`
	Aggregate        ensemble.AggregateResult                    `json:"aggregate"`
	ZoneSummaries    map[string]map[string]ensemble.Distribution `json:"zone_summaries"`
	AggregateSummary map[string]ensemble.Distribution            `json:"aggregate_summary"`
}

// NewReport combines the experiment parameters with the ensemble result and
// its per-bloc distribution summaries.
func NewReport(spec *scenario.ExperimentSpec, res *ensemble.Result) *Report {
	r := &Report{
		Seed:             spec.Seed,
		Seats:            spec.Seats,
		NumBallots:       spec.NumBallots,
		Trials:           res.Trials,
		Complete:         res.Complete,
		Blocs:            res.Blocs,
		BlocNames:        make(map[string]string),
		Zones:            res.Zones,
		Aggregate:        res.Aggregate,
		ZoneSummaries:    make(map[string]map[string]ensemble.Distribution, len(res.Zones)),
		AggregateSummary: ensemble.SummarizeBlocs(res.Aggregate.PerBloc, res.Blocs),
	}
	for _, b := range spec.Blocs {
		if b.Name != "" {
			r.BlocNames[b.Tag] = b.Name
		}
	}
	for _, z := range res.Zones {
		r.ZoneSummaries[z.ZoneID] = ensemble.SummarizeBlocs(z.PerBloc, res.Blocs)
	}
	return r
}

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Print displays the per-zone and city-wide winner distributions.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Ensemble Results ===")
	fmt.Fprintf(w, "Seed                 : %d\n", r.Seed)
	fmt.Fprintf(w, "Seats per zone       : %d\n", r.Seats)
	fmt.Fprintf(w, "Ballots per election : %d\n", r.NumBallots)
	fmt.Fprintf(w, "Trials               : %d", r.Trials)
	if !r.Complete {
		fmt.Fprint(w, " (incomplete)")
	}
	fmt.Fprintln(w)

	for _, z := range r.Zones {
		fmt.Fprintf(w, "\n--- Zone %s ---\n", z.ZoneID)
		if z.FailedTrials > 0 {
			fmt.Fprintf(w, "Failed trials        : %d\n", z.FailedTrials)
		}
		r.printBlocs(w, r.ZoneSummaries[z.ZoneID])
		if z.SampleTrace != nil {
			s := trace.Summarize(z.SampleTrace)
			fmt.Fprintf(w, "Trial 0 count        : %d rounds, elected %v, peak exhausted %.1f%%\n",
				s.TotalRounds, s.Elected, 100*s.MaxExhaustedShare)
		}
	}

	fmt.Fprintln(w, "\n--- City-wide ---")
	r.printBlocs(w, r.AggregateSummary)
}

func (r *Report) printBlocs(w io.Writer, dists map[string]ensemble.Distribution) {
	for _, tag := range r.Blocs {
		d, ok := dists[tag]
		if !ok {
			continue
		}
		label := tag
		if name := r.BlocNames[tag]; name != "" {
			label = name
		}
		fmt.Fprintf(w, "%-28s : mean %.3f  sd %.3f  range [%d, %d]  hist %v\n",
			label, d.Mean, d.StdDev, d.Min, d.Max, d.Histogram)
	}
}
