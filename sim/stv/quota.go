package stv

import (
	"fmt"
	"math"
)

// ValidQuotaRules is the set of recognized quota rule names.
// An empty string selects droop.
var ValidQuotaRules = map[string]bool{"": true, "droop": true, "hare": true}

// IsValidQuotaRule reports whether name is a recognized quota rule.
func IsValidQuotaRule(name string) bool {
	return ValidQuotaRules[name]
}

// DroopQuota returns floor(votes/(seats+1)) + 1.
func DroopQuota(votes float64, seats int) float64 {
	return math.Floor(votes/float64(seats+1)) + 1
}

// HareQuota returns floor(votes/seats).
func HareQuota(votes float64, seats int) float64 {
	return math.Floor(votes / float64(seats))
}

// Quota computes the named quota. The count uses one quota, computed from
// the total ballot count before the first round.
func Quota(rule string, votes float64, seats int) (float64, error) {
	switch rule {
	case "", "droop":
		return DroopQuota(votes, seats), nil
	case "hare":
		return HareQuota(votes, seats), nil
	default:
		return 0, fmt.Errorf("unknown quota rule %q; valid: droop, hare", rule)
	}
}
