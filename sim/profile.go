package sim

import "encoding/binary"

// BallotProfile is a multiset of ballots: each distinct ranking with the
// number of voters who cast it. Distinct ballots keep first-seen order so
// iteration is deterministic.
type BallotProfile struct {
	Candidates *CandidateSet
	Ballots    []Ballot
	Counts     []int

	index map[string]int
	total int
}

// NewBallotProfile creates an empty profile over the given candidates.
func NewBallotProfile(cands *CandidateSet) *BallotProfile {
	return &BallotProfile{
		Candidates: cands,
		index:      make(map[string]int),
	}
}

// Add records n voters casting ballot b. Non-positive n is ignored.
func (p *BallotProfile) Add(b Ballot, n int) {
	if n <= 0 {
		return
	}
	key := ballotKey(b)
	if i, ok := p.index[key]; ok {
		p.Counts[i] += n
	} else {
		p.index[key] = len(p.Ballots)
		p.Ballots = append(p.Ballots, b)
		p.Counts = append(p.Counts, n)
	}
	p.total += n
}

// Total returns the number of voters in the profile.
func (p *BallotProfile) Total() int { return p.total }

// Len returns the number of distinct ballots.
func (p *BallotProfile) Len() int { return len(p.Ballots) }

// FirstPreferences returns, per candidate, the number of ballots ranking it first.
func (p *BallotProfile) FirstPreferences() []float64 {
	out := make([]float64, p.Candidates.Len())
	for i, b := range p.Ballots {
		if len(b) > 0 {
			out[b[0]] += float64(p.Counts[i])
		}
	}
	return out
}

// BuildProfile samples n ballots and accumulates identical rankings.
func BuildProfile(sampler *BallotSampler, cands *CandidateSet, n int) *BallotProfile {
	p := NewBallotProfile(cands)
	for i := 0; i < n; i++ {
		b, _ := sampler.Sample()
		p.Add(b, 1)
	}
	return p
}

func ballotKey(b Ballot) string {
	buf := make([]byte, 0, 2*len(b))
	for _, c := range b {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(c))
	}
	return string(buf)
}
