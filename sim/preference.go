package sim

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distmv"
)

// PreferenceInterval is one bloc's probability mass over every candidate of
// the zone. Mass is indexed like CandidateSet.Names and sums to 1.
type PreferenceInterval struct {
	Bloc string
	Mass []float64
}

// Sum returns the total mass of the interval.
func (p PreferenceInterval) Sum() float64 {
	return floats.Sum(p.Mass)
}

// BuildPreferenceInterval draws the preference interval of voting bloc `bloc`.
//
// For each slate s with effective cohesion weight w_s, a Dirichlet vector d_s
// with every concentration parameter equal to alphaRow[s] is drawn over the
// slate's candidates and candidate c in s receives w_s * d_s[c]. Slates with
// no candidates contribute nothing; their weight is spread over the other
// slates by EffectiveCohesion.
//
// Extreme alphas can make the Gamma draws underflow or overflow. A
// degenerate draw is replaced by its limit: below alpha 1 all of the slate's
// mass goes to one uniformly chosen candidate, otherwise it is spread evenly.
func BuildPreferenceInterval(bloc int, cohesionRow, alphaRow []float64, blocs []Bloc, cands *CandidateSet, src rand.Source) (PreferenceInterval, error) {
	weights, err := EffectiveCohesion(cohesionRow, blocs)
	if err != nil {
		return PreferenceInterval{}, fmt.Errorf("bloc %s: %w", blocs[bloc].Tag, err)
	}

	mass := make([]float64, cands.Len())
	for s, w := range weights {
		lo, hi := cands.SlateRange(s)
		size := hi - lo
		if size == 0 || w == 0 {
			continue
		}
		alpha := make([]float64, size)
		for i := range alpha {
			alpha[i] = alphaRow[s]
		}
		draw := distmv.NewDirichlet(alpha, src).Rand(mass[lo:hi])
		if !isSimplex(draw) {
			if alphaRow[s] < 1 {
				logrus.Debugf("bloc %s slate %s: degenerate Dirichlet draw (alpha=%v), using point mass",
					blocs[bloc].Tag, blocs[s].Tag, alphaRow[s])
				for i := range draw {
					draw[i] = 0
				}
				draw[rand.New(src).IntN(size)] = 1
			} else {
				logrus.Debugf("bloc %s slate %s: degenerate Dirichlet draw (alpha=%v), using uniform",
					blocs[bloc].Tag, blocs[s].Tag, alphaRow[s])
				for i := range draw {
					draw[i] = 1 / float64(size)
				}
			}
		}
		floats.Scale(w, draw)
	}
	return PreferenceInterval{Bloc: blocs[bloc].Tag, Mass: mass}, nil
}

// BuildPreferenceIntervals draws one interval per voting bloc of the zone.
func BuildPreferenceIntervals(zone *ZoneConfig, cands *CandidateSet, src rand.Source) ([]PreferenceInterval, error) {
	out := make([]PreferenceInterval, len(zone.Blocs))
	for b := range zone.Blocs {
		pi, err := BuildPreferenceInterval(b, zone.Cohesion[b], zone.Alphas[b], zone.Blocs, cands, src)
		if err != nil {
			return nil, err
		}
		out[b] = pi
	}
	return out, nil
}

func isSimplex(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return math.Abs(floats.Sum(x)-1) <= 1e-6
}
