package ensemble

import (
	"slices"
	"strings"
)

// WinnerCounter attributes winners to blocs by candidate-name prefix.
// The longest matching tag wins, so with tags W, WP and WM the winner "WP3"
// counts toward WP only.
type WinnerCounter struct {
	tags  []string
	order []int // tag indices sorted by descending tag length
}

// NewWinnerCounter creates a counter for the given bloc tags.
func NewWinnerCounter(tags []string) *WinnerCounter {
	order := make([]int, len(tags))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return len(tags[b]) - len(tags[a])
	})
	return &WinnerCounter{tags: slices.Clone(tags), order: order}
}

// Match returns the index of the bloc owning candidate, or -1.
func (w *WinnerCounter) Match(candidate string) int {
	for _, i := range w.order {
		if strings.HasPrefix(candidate, w.tags[i]) {
			return i
		}
	}
	return -1
}

// Count returns, per tag index, how many winners belong to that bloc.
// Winners matching no tag are ignored.
func (w *WinnerCounter) Count(winners []string) []int {
	counts := make([]int, len(w.tags))
	for _, name := range winners {
		if i := w.Match(name); i >= 0 {
			counts[i]++
		}
	}
	return counts
}
