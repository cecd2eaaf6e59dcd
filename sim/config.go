package sim

import (
	"fmt"
	"math"
	"strconv"
	"unicode"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// SumTolerance bounds how far a probability row may drift from 1.
const SumTolerance = 1e-9

// MaxCandidates is the largest candidate count a zone may field. Ballots are
// keyed by 16-bit candidate indices.
const MaxCandidates = 1 << 16

// EmptySlatePolicy decides what happens to cohesion weight directed at a
// slate with zero candidates.
type EmptySlatePolicy string

const (
	// EmptySlateRenormalize drops the empty slate's weight and rescales the
	// remaining slates of the row so it still sums to 1.
	EmptySlateRenormalize EmptySlatePolicy = "renormalize"
	// EmptySlateReject reports positive weight on an empty slate as a ConfigError.
	EmptySlateReject EmptySlatePolicy = "reject"
)

// ValidEmptySlatePolicies is the set of recognized empty-slate policy names.
// An empty string selects EmptySlateRenormalize.
var ValidEmptySlatePolicies = map[string]bool{"": true, "renormalize": true, "reject": true}

// Bloc is a voter segment together with the slate of candidates it prefers.
// The slate's candidates are named {Tag}1..{Tag}N.
type Bloc struct {
	Tag        string
	Name       string
	Candidates int
}

// ZoneConfig is the immutable unit of one simulation batch.
// Shares, Cohesion and Alphas are indexed by position in Blocs; Cohesion and
// Alphas are [voting bloc][slate] matrices where slate i belongs to Blocs[i].
// Treat values as read-only once constructed: trials share them across workers.
type ZoneConfig struct {
	ID         string
	Blocs      []Bloc
	Shares     []float64
	Cohesion   [][]float64
	Alphas     [][]float64
	Seats      int
	NumBallots int
	NumTrials  int

	// MaxRanking truncates every sampled ballot to its first MaxRanking ranks.
	// 0 keeps full rankings.
	MaxRanking int

	// NormalizeShares rescales bloc shares that do not sum to 1 instead of
	// rejecting them.
	NormalizeShares bool

	EmptySlate EmptySlatePolicy
}

// Tags returns the bloc tags in configuration order.
func (z *ZoneConfig) Tags() []string {
	tags := make([]string, len(z.Blocs))
	for i, b := range z.Blocs {
		tags[i] = b.Tag
	}
	return tags
}

// NumCandidates returns the total candidate count across all slates.
func (z *ZoneConfig) NumCandidates() int {
	n := 0
	for _, b := range z.Blocs {
		n += b.Candidates
	}
	return n
}

// Validate checks the zone against every ConfigError rule: share and cohesion
// rows summing to 1, positive alphas, seat and ballot bounds, and the
// empty-slate policy. Shares off by more than SumTolerance are an error unless
// NormalizeShares is set.
func (z *ZoneConfig) Validate() error {
	n := len(z.Blocs)
	if z.ID == "" {
		return configErrorf("", "id", "zone id must not be empty")
	}
	if n == 0 {
		return configErrorf(z.ID, "blocs", "at least one bloc required")
	}
	if err := validateTags(z.ID, z.Blocs); err != nil {
		return err
	}
	if len(z.Shares) != n {
		return configErrorf(z.ID, "shares", "got %d shares for %d blocs", len(z.Shares), n)
	}
	if len(z.Cohesion) != n || len(z.Alphas) != n {
		return configErrorf(z.ID, "cohesion", "cohesion and alpha matrices must be %dx%d", n, n)
	}

	for i, s := range z.Shares {
		if math.IsNaN(s) || s < 0 || s > 1 {
			return configErrorf(z.ID, "shares["+z.Blocs[i].Tag+"]", "must be in [0,1], got %v", s)
		}
	}
	if sum := floats.Sum(z.Shares); math.Abs(sum-1) > SumTolerance {
		if !z.NormalizeShares || sum <= 0 {
			return configErrorf(z.ID, "shares", "sum to %v, want 1", sum)
		}
	}

	for i, row := range z.Cohesion {
		tag := z.Blocs[i].Tag
		if len(row) != n {
			return configErrorf(z.ID, "cohesion["+tag+"]", "got %d slates, want %d", len(row), n)
		}
		for j, w := range row {
			if math.IsNaN(w) || w < 0 || w > 1 {
				return configErrorf(z.ID, "cohesion["+tag+"]["+z.Blocs[j].Tag+"]", "must be in [0,1], got %v", w)
			}
		}
		if sum := floats.Sum(row); math.Abs(sum-1) > SumTolerance {
			return configErrorf(z.ID, "cohesion["+tag+"]", "sums to %v, want 1", sum)
		}
	}
	for i, row := range z.Alphas {
		tag := z.Blocs[i].Tag
		if len(row) != n {
			return configErrorf(z.ID, "alphas["+tag+"]", "got %d slates, want %d", len(row), n)
		}
		for j, a := range row {
			if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 {
				return configErrorf(z.ID, "alphas["+tag+"]["+z.Blocs[j].Tag+"]", "must be a finite positive number, got %v", a)
			}
		}
	}

	if !ValidEmptySlatePolicies[string(z.EmptySlate)] {
		return configErrorf(z.ID, "empty_slate", "unknown policy %q", z.EmptySlate)
	}
	for i, row := range z.Cohesion {
		for j, w := range row {
			if z.Blocs[j].Candidates == 0 && w > 0 && z.EmptySlate == EmptySlateReject {
				return configErrorf(z.ID, "cohesion["+z.Blocs[i].Tag+"]["+z.Blocs[j].Tag+"]",
					"weight %v directed at a slate with no candidates", w)
			}
		}
		if _, err := EffectiveCohesion(row, z.Blocs); err != nil {
			return configErrorf(z.ID, "cohesion["+z.Blocs[i].Tag+"]", "%v", err)
		}
	}

	if z.Seats < 1 {
		return configErrorf(z.ID, "seats", "must be at least 1, got %d", z.Seats)
	}
	if total := z.NumCandidates(); z.Seats > total {
		return configErrorf(z.ID, "seats", "%d seats exceed %d candidates", z.Seats, total)
	}
	if z.NumBallots < 1 {
		return configErrorf(z.ID, "num_ballots", "must be at least 1, got %d", z.NumBallots)
	}
	if z.NumTrials < 1 {
		return configErrorf(z.ID, "num_trials", "must be at least 1, got %d", z.NumTrials)
	}
	if z.MaxRanking < 0 {
		return configErrorf(z.ID, "max_ranking", "must be non-negative, got %d", z.MaxRanking)
	}
	return nil
}

// Prepared returns a validated copy of the zone with shares normalized when
// NormalizeShares allows it, and logs each numeric degeneracy it tolerates.
func (z ZoneConfig) Prepared() (ZoneConfig, error) {
	if err := z.Validate(); err != nil {
		return ZoneConfig{}, err
	}
	out := z
	out.Blocs = append([]Bloc(nil), z.Blocs...)
	out.Shares = append([]float64(nil), z.Shares...)
	if sum := floats.Sum(out.Shares); math.Abs(sum-1) > SumTolerance {
		logrus.Warnf("zone %s: bloc shares sum to %v; normalizing", z.ID, sum)
		floats.Scale(1/sum, out.Shares)
	}
	for j, b := range out.Blocs {
		if b.Candidates > 0 {
			continue
		}
		for i := range out.Cohesion {
			if out.Cohesion[i][j] > 0 {
				logrus.Warnf("zone %s: slate %s has no candidates; renormalizing cohesion of bloc %s",
					z.ID, b.Tag, out.Blocs[i].Tag)
			}
		}
	}
	return out, nil
}

// EffectiveCohesion returns the cohesion row with weight on empty slates
// removed and the remainder rescaled to sum to 1. It fails when the row puts
// no weight on any slate that has candidates.
func EffectiveCohesion(row []float64, blocs []Bloc) ([]float64, error) {
	out := make([]float64, len(row))
	for j, w := range row {
		if blocs[j].Candidates > 0 {
			out[j] = w
		}
	}
	sum := floats.Sum(out)
	if sum <= 0 {
		return nil, fmt.Errorf("no cohesion weight on any slate with candidates")
	}
	floats.Scale(1/sum, out)
	return out, nil
}

func validateTags(zone string, blocs []Bloc) error {
	seen := make(map[string]bool, len(blocs))
	total := 0
	for i, b := range blocs {
		field := "blocs[" + strconv.Itoa(i) + "].tag"
		if b.Tag == "" {
			return configErrorf(zone, field, "must not be empty")
		}
		if last := rune(b.Tag[len(b.Tag)-1]); unicode.IsDigit(last) {
			return configErrorf(zone, field, "tag %q must not end in a digit", b.Tag)
		}
		if seen[b.Tag] {
			return configErrorf(zone, field, "duplicate tag %q", b.Tag)
		}
		if b.Candidates < 0 {
			return configErrorf(zone, "blocs["+b.Tag+"].candidates", "must be non-negative, got %d", b.Candidates)
		}
		seen[b.Tag] = true
		total += b.Candidates
	}
	if total > MaxCandidates {
		return configErrorf(zone, "blocs", "%d candidates exceed the limit of %d", total, MaxCandidates)
	}
	return nil
}
