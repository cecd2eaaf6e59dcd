package ensemble

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes one bloc's winner counts across trials.
type Distribution struct {
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Min       int     `json:"min"`
	Max       int     `json:"max"`
	Histogram []int   `json:"histogram"` // Histogram[k] = trials with exactly k winners
}

// Summarize computes the distribution of a winner-count sequence.
// Safe for empty sequences (returns zero-value fields).
func Summarize(seq []int) Distribution {
	if len(seq) == 0 {
		return Distribution{}
	}
	xs := make([]float64, len(seq))
	for i, v := range seq {
		xs[i] = float64(v)
	}
	d := Distribution{
		Mean: stat.Mean(xs, nil),
		Min:  slices.Min(seq),
		Max:  slices.Max(seq),
	}
	if len(xs) > 1 {
		d.StdDev = stat.StdDev(xs, nil)
	}
	d.Histogram = make([]int, d.Max+1)
	for _, v := range seq {
		if v >= 0 {
			d.Histogram[v]++
		}
	}
	return d
}

// SummarizeBlocs summarizes every bloc of a per-bloc sequence map, in tags order.
func SummarizeBlocs(perBloc map[string][]int, tags []string) map[string]Distribution {
	out := make(map[string]Distribution, len(tags))
	for _, tag := range tags {
		if seq, ok := perBloc[tag]; ok {
			out[tag] = Summarize(seq)
		}
	}
	return out
}
