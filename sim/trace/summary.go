package trace

// TraceSummary aggregates statistics from an ElectionTrace.
type TraceSummary struct {
	TotalRounds       int
	ElectionRounds    int
	EliminationRounds int
	FillRounds        int
	TiesBroken        int
	Elected           []string
	Eliminated        []string
	FinalExhausted    float64
	MaxExhaustedShare float64 // largest exhausted weight as a fraction of TotalVotes
}

// Summarize computes aggregate statistics from an ElectionTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(et *ElectionTrace) *TraceSummary {
	summary := &TraceSummary{}
	if et == nil {
		return summary
	}

	summary.TotalRounds = len(et.Rounds)
	for _, r := range et.Rounds {
		switch r.Action {
		case ActionElect:
			summary.ElectionRounds++
		case ActionEliminate:
			summary.EliminationRounds++
		case ActionFill:
			summary.FillRounds++
		}
		if r.TieBroken {
			summary.TiesBroken++
		}
		summary.Elected = append(summary.Elected, r.Elected...)
		if r.Eliminated != "" {
			summary.Eliminated = append(summary.Eliminated, r.Eliminated)
		}
		if et.TotalVotes > 0 {
			if share := r.Exhausted / et.TotalVotes; share > summary.MaxExhaustedShare {
				summary.MaxExhaustedShare = share
			}
		}
	}
	if n := len(et.Rounds); n > 0 {
		summary.FinalExhausted = et.Rounds[n-1].Exhausted
	}
	return summary
}
