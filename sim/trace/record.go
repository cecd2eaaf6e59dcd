// Package trace provides round-by-round recording of STV counts.
// This package has no dependencies on sim/ or sim/stv/; it stores pure data types.
package trace

// Action names what a round of the count did.
type Action string

const (
	// ActionElect marks a round in which one or more candidates reached quota.
	ActionElect Action = "elect"
	// ActionEliminate marks a round in which the lowest candidate was removed.
	ActionEliminate Action = "eliminate"
	// ActionFill marks the final round in which the remaining candidates were
	// elected because no more than the open seats were still standing.
	ActionFill Action = "fill"
)

// RoundRecord captures one round of an STV count.
type RoundRecord struct {
	Round      int                `json:"round"`
	Tallies    map[string]float64 `json:"tallies"` // active candidate -> vote weight
	Action     Action             `json:"action"`
	Elected    []string           `json:"elected,omitempty"` // in election order
	Eliminated string             `json:"eliminated,omitempty"`
	Surplus    map[string]float64 `json:"surplus,omitempty"`    // elected candidate -> transferred fraction
	Exhausted  float64            `json:"exhausted"`            // weight on ballots with no active preference
	TieBroken  bool               `json:"tie_broken,omitempty"` // the tiebreak policy decided this round
}

// ActiveWeight returns the total weight tallied to active candidates.
func (r RoundRecord) ActiveWeight() float64 {
	sum := 0.0
	for _, v := range r.Tallies {
		sum += v
	}
	return sum
}
