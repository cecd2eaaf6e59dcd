package sim

import "strconv"

// CandidateSet is the flattened candidate list of a zone. Candidates are laid
// out slate by slate in bloc order; the index into Names is the candidate id
// used by ballots and the tabulator.
type CandidateSet struct {
	Names []string
	Slate []int // bloc index owning each candidate
	// first[b] is the index of bloc b's first candidate.
	first []int
}

// NewCandidateSet builds the candidate list {Tag}1..{Tag}N for every bloc.
func NewCandidateSet(blocs []Bloc) *CandidateSet {
	cs := &CandidateSet{first: make([]int, len(blocs))}
	for b, bloc := range blocs {
		cs.first[b] = len(cs.Names)
		for i := 1; i <= bloc.Candidates; i++ {
			cs.Names = append(cs.Names, bloc.Tag+strconv.Itoa(i))
			cs.Slate = append(cs.Slate, b)
		}
	}
	return cs
}

// Len returns the number of candidates.
func (cs *CandidateSet) Len() int { return len(cs.Names) }

// SlateRange returns the half-open index range [lo, hi) of bloc b's slate.
func (cs *CandidateSet) SlateRange(b int) (lo, hi int) {
	lo = cs.first[b]
	hi = len(cs.Names)
	if b+1 < len(cs.first) {
		hi = cs.first[b+1]
	}
	return lo, hi
}

// NamesOf maps candidate indices to names.
func (cs *CandidateSet) NamesOf(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = cs.Names[id]
	}
	return out
}
