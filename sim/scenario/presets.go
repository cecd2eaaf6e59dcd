package scenario

import (
	"fmt"
	"maps"
	"slices"
)

// Built-in presets for the Portland four-zone studies.
// Each returns a valid ExperimentSpec ready for ZoneConfigs.

// Zone shares were computed from Portland's voter file.
var (
	portlandShares3Bloc = []map[string]float64{
		{"C": 0.38, "WP": 0.43, "WM": 0.19},
		{"C": 0.26, "WP": 0.68, "WM": 0.06},
		{"C": 0.20, "WP": 0.73, "WM": 0.07},
		{"C": 0.17, "WP": 0.73, "WM": 0.10},
	}
	portlandShares2Bloc = []map[string]float64{
		{"C": 0.38, "W": 0.62},
		{"C": 0.26, "W": 0.74},
		{"C": 0.20, "W": 0.80},
		{"C": 0.17, "W": 0.83},
	}
)

// cohesionScenarios3Bloc lists rows in C, WP, WM order with columns in the same order.
var cohesionScenarios3Bloc = map[string][][]float64{
	"race-predominant":         {{0.8, 0.1, 0.1}, {0.1, 0.45, 0.45}, {0.1, 0.45, 0.45}},
	"race-ideology":            {{0.6, 0.3, 0.1}, {0.3, 0.6, 0.1}, {0.1, 0.1, 0.8}},
	"low-polarization":         {{0.4, 0.3, 0.3}, {0.3, 0.4, 0.3}, {0.3, 0.3, 0.4}},
	"ideology-predominant":     {{0.45, 0.45, 0.1}, {0.45, 0.45, 0.1}, {0.1, 0.1, 0.8}},
	"wp-prefer-poc":            {{0.8, 0.1, 0.1}, {0.8, 0.1, 0.1}, {0.1, 0.1, 0.8}},
	"race-ideology-strong-poc": {{0.8, 0.1, 0.1}, {0.3, 0.6, 0.1}, {0.1, 0.05, 0.85}},
	"poc-cross-wp-maj-cross":   {{0.6, 0.3, 0.1}, {0.45, 0.45, 0.1}, {0.1, 0.05, 0.85}},
	"strong-bloc-cohesion":     {{0.8, 0.1, 0.1}, {0.1, 0.8, 0.1}, {0.1, 0.1, 0.8}},
}

// cohesionScenarios2Bloc lists rows in C, W order.
var cohesionScenarios2Bloc = map[string][][]float64{
	"race-predominant":         {{0.8, 0.2}, {0.1, 0.9}},
	"race-ideology":            {{0.6, 0.4}, {0.25, 0.75}},
	"low-polarization":         {{0.6, 0.4}, {0.4, 0.6}},
	"wp-prefer-poc":            {{0.8, 0.2}, {0.4, 0.6}},
	"race-ideology-strong-poc": {{0.8, 0.2}, {0.3, 0.7}},
	"poc-cross-wp-maj-cross":   {{0.6, 0.4}, {0.3, 0.7}},
}

// DefaultScenario is the cohesion scenario presets start from.
const DefaultScenario = "race-predominant"

var presets = map[string]func(seed int64) *ExperimentSpec{
	"portland-3bloc": Portland3Bloc,
	"portland-2bloc": Portland2Bloc,
}

// PresetNames returns the built-in preset names, sorted.
func PresetNames() []string {
	return slices.Sorted(maps.Keys(presets))
}

// ScenarioNames returns the cohesion scenarios available for a preset, sorted.
func ScenarioNames(preset string) []string {
	switch preset {
	case "portland-3bloc":
		return slices.Sorted(maps.Keys(cohesionScenarios3Bloc))
	case "portland-2bloc":
		return slices.Sorted(maps.Keys(cohesionScenarios2Bloc))
	}
	return nil
}

// Preset returns the named preset with the given cohesion scenario applied.
// An empty scenario keeps DefaultScenario.
func Preset(name, scenario string, seed int64) (*ExperimentSpec, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q; valid: %v", name, PresetNames())
	}
	spec := build(seed)
	if scenario != "" {
		if err := ApplyScenario(spec, name, scenario); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

// ApplyScenario replaces spec's cohesion matrix with a named scenario of preset.
func ApplyScenario(spec *ExperimentSpec, preset, scenario string) error {
	switch preset {
	case "portland-3bloc":
		rows, ok := cohesionScenarios3Bloc[scenario]
		if !ok {
			return fmt.Errorf("unknown scenario %q for %s; valid: %v", scenario, preset, ScenarioNames(preset))
		}
		spec.Cohesion = toMatrix([]string{"C", "WP", "WM"}, rows)
	case "portland-2bloc":
		rows, ok := cohesionScenarios2Bloc[scenario]
		if !ok {
			return fmt.Errorf("unknown scenario %q for %s; valid: %v", scenario, preset, ScenarioNames(preset))
		}
		spec.Cohesion = toMatrix([]string{"C", "W"}, rows)
	default:
		return fmt.Errorf("unknown preset %q; valid: %v", preset, PresetNames())
	}
	return nil
}

// Portland3Bloc models POC (C), White-Progressive (WP) and White-Moderate (WM)
// blocs across Portland's four zones, three seats per zone.
func Portland3Bloc(seed int64) *ExperimentSpec {
	tags := []string{"C", "WP", "WM"}
	spec := &ExperimentSpec{
		Version: "1", Seed: seed, Seats: 3, NumBallots: 1000, NumTrials: 1000,
		Blocs: []BlocSpec{
			{Tag: "C", Name: "POC Preferred", Candidates: 3},
			{Tag: "WP", Name: "White Progressive Preferred", Candidates: 3},
			{Tag: "WM", Name: "White Moderate Preferred", Candidates: 3},
		},
		Cohesion: toMatrix(tags, cohesionScenarios3Bloc[DefaultScenario]),
		Alphas:   uniformMatrix(tags, 1),
	}
	spec.Zones = zonesFromShares(portlandShares3Bloc)
	return spec
}

// Portland2Bloc models POC (C) and White (W) blocs across Portland's four
// zones, three seats per zone.
func Portland2Bloc(seed int64) *ExperimentSpec {
	tags := []string{"C", "W"}
	spec := &ExperimentSpec{
		Version: "1", Seed: seed, Seats: 3, NumBallots: 1000, NumTrials: 1000,
		Blocs: []BlocSpec{
			{Tag: "C", Name: "POC Preferred", Candidates: 3},
			{Tag: "W", Name: "White Preferred", Candidates: 3},
		},
		Cohesion: toMatrix(tags, cohesionScenarios2Bloc[DefaultScenario]),
		Alphas:   uniformMatrix(tags, 1),
	}
	spec.Zones = zonesFromShares(portlandShares2Bloc)
	return spec
}

func zonesFromShares(shares []map[string]float64) []ZoneSpec {
	zones := make([]ZoneSpec, len(shares))
	for i, s := range shares {
		zones[i] = ZoneSpec{ID: fmt.Sprint(i + 1), Shares: maps.Clone(s)}
	}
	return zones
}

func toMatrix(tags []string, rows [][]float64) Matrix {
	m := make(Matrix, len(tags))
	for i, voter := range tags {
		m[voter] = make(map[string]float64, len(tags))
		for j, slate := range tags {
			m[voter][slate] = rows[i][j]
		}
	}
	return m
}

func uniformMatrix(tags []string, v float64) Matrix {
	m := make(Matrix, len(tags))
	for _, voter := range tags {
		m[voter] = make(map[string]float64, len(tags))
		for _, slate := range tags {
			m[voter][slate] = v
		}
	}
	return m
}
