// Package scenario loads experiment specifications and provides built-in
// presets for the Portland zone studies.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rcv-sim/rcv-sim/sim"
	"github.com/rcv-sim/rcv-sim/sim/stv"
)

// ExperimentSpec is the top-level experiment configuration.
// Loaded from YAML via LoadExperimentSpec(path).
type ExperimentSpec struct {
	Version         string     `yaml:"version"`
	Seed            int64      `yaml:"seed"`
	Seats           int        `yaml:"seats"`
	NumBallots      int        `yaml:"num_ballots"`
	NumTrials       int        `yaml:"num_trials"`
	Generator       string     `yaml:"generator,omitempty"`
	Quota           string     `yaml:"quota,omitempty"`
	Tiebreak        string     `yaml:"tiebreak,omitempty"`
	NormalizeShares bool       `yaml:"normalize_shares,omitempty"`
	EmptySlate      string     `yaml:"empty_slate,omitempty"`
	MaxRanking      int        `yaml:"max_ranking,omitempty"` // 0 = full rankings
	Blocs           []BlocSpec `yaml:"blocs"`
	Cohesion        Matrix     `yaml:"cohesion"`
	Alphas          Matrix     `yaml:"alphas"`
	Zones           []ZoneSpec `yaml:"zones"`
}

// BlocSpec defines a voter bloc and the size of its preferred slate.
type BlocSpec struct {
	Tag        string `yaml:"tag"`
	Name       string `yaml:"name,omitempty"`
	Candidates int    `yaml:"candidates"`
}

// ZoneSpec defines one zone's bloc shares and optional matrix overrides.
type ZoneSpec struct {
	ID       string             `yaml:"id"`
	Shares   map[string]float64 `yaml:"shares"`
	Cohesion Matrix             `yaml:"cohesion,omitempty"`
	Alphas   Matrix             `yaml:"alphas,omitempty"`
}

// Matrix maps voting bloc tag -> slate tag -> value.
type Matrix map[string]map[string]float64

// LoadExperimentSpec reads and parses a YAML experiment specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadExperimentSpec(path string) (*ExperimentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading experiment spec: %w", err)
	}
	return ParseExperimentSpec(data)
}

// ParseExperimentSpec parses YAML bytes with strict field checking.
func ParseExperimentSpec(data []byte) (*ExperimentSpec, error) {
	var spec ExperimentSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing experiment spec: %w", err)
	}
	if spec.Version == "" {
		spec.Version = "1"
	}
	return &spec, nil
}

// Validate checks the policy names and the shape of the spec. Numeric rules
// (sums, positivity, seats) are checked per zone by sim.ZoneConfig.Validate.
func (s *ExperimentSpec) Validate() error {
	if s.Version != "1" {
		return &sim.ConfigError{Field: "version", Reason: fmt.Sprintf("unsupported version %q", s.Version)}
	}
	if !sim.IsValidGenerator(s.Generator) {
		return &sim.ConfigError{Field: "generator", Reason: fmt.Sprintf("unknown ballot generator %q; valid: slate-preference", s.Generator)}
	}
	if !stv.IsValidQuotaRule(s.Quota) {
		return &sim.ConfigError{Field: "quota", Reason: fmt.Sprintf("unknown quota rule %q; valid: droop, hare", s.Quota)}
	}
	if !stv.IsValidTiebreak(s.Tiebreak) {
		return &sim.ConfigError{Field: "tiebreak", Reason: fmt.Sprintf("unknown tiebreak %q; valid: random, first-place, borda", s.Tiebreak)}
	}
	if !sim.ValidEmptySlatePolicies[s.EmptySlate] {
		return &sim.ConfigError{Field: "empty_slate", Reason: fmt.Sprintf("unknown policy %q; valid: renormalize, reject", s.EmptySlate)}
	}
	if len(s.Blocs) == 0 {
		return &sim.ConfigError{Field: "blocs", Reason: "at least one bloc required"}
	}
	if len(s.Zones) == 0 {
		return &sim.ConfigError{Field: "zones", Reason: "at least one zone required"}
	}
	known := make(map[string]bool, len(s.Blocs))
	for _, b := range s.Blocs {
		known[b.Tag] = true
	}
	if err := checkMatrixTags("cohesion", s.Cohesion, known); err != nil {
		return err
	}
	if err := checkMatrixTags("alphas", s.Alphas, known); err != nil {
		return err
	}
	for _, z := range s.Zones {
		for tag := range z.Shares {
			if !known[tag] {
				return &sim.ConfigError{Zone: z.ID, Field: "shares", Reason: fmt.Sprintf("unknown bloc %q", tag)}
			}
		}
		if err := checkMatrixTags("zones["+z.ID+"].cohesion", z.Cohesion, known); err != nil {
			return err
		}
		if err := checkMatrixTags("zones["+z.ID+"].alphas", z.Alphas, known); err != nil {
			return err
		}
	}
	return nil
}

// ZoneConfigs converts the spec into immutable zone configurations, one per
// zone, and validates each of them.
func (s *ExperimentSpec) ZoneConfigs() ([]sim.ZoneConfig, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	blocs := make([]sim.Bloc, len(s.Blocs))
	for i, b := range s.Blocs {
		blocs[i] = sim.Bloc{Tag: b.Tag, Name: b.Name, Candidates: b.Candidates}
	}

	zones := make([]sim.ZoneConfig, 0, len(s.Zones))
	for _, zs := range s.Zones {
		cohesion := s.Cohesion
		if zs.Cohesion != nil {
			cohesion = zs.Cohesion
		}
		alphas := s.Alphas
		if zs.Alphas != nil {
			alphas = zs.Alphas
		}
		shares := make([]float64, len(blocs))
		for i, b := range blocs {
			shares[i] = zs.Shares[b.Tag]
		}
		z := sim.ZoneConfig{
			ID:              zs.ID,
			Blocs:           blocs,
			Shares:          shares,
			Cohesion:        cohesion.dense(blocs),
			Alphas:          alphas.dense(blocs),
			Seats:           s.Seats,
			NumBallots:      s.NumBallots,
			NumTrials:       s.NumTrials,
			MaxRanking:      s.MaxRanking,
			NormalizeShares: s.NormalizeShares,
			EmptySlate:      sim.EmptySlatePolicy(s.EmptySlate),
		}
		if err := z.Validate(); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// dense lays the matrix out in bloc order; missing entries are zero.
func (m Matrix) dense(blocs []sim.Bloc) [][]float64 {
	out := make([][]float64, len(blocs))
	for i, voter := range blocs {
		out[i] = make([]float64, len(blocs))
		for j, slate := range blocs {
			out[i][j] = m[voter.Tag][slate.Tag]
		}
	}
	return out
}

func checkMatrixTags(field string, m Matrix, known map[string]bool) error {
	for voter, row := range m {
		if !known[voter] {
			return &sim.ConfigError{Field: field, Reason: fmt.Sprintf("unknown bloc %q", voter)}
		}
		for slate := range row {
			if !known[slate] {
				return &sim.ConfigError{Field: field + "[" + voter + "]", Reason: fmt.Sprintf("unknown slate %q", slate)}
			}
		}
	}
	return nil
}
