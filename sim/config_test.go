package sim_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcv-sim/rcv-sim/sim"
	"github.com/rcv-sim/rcv-sim/sim/internal/testutil"
)

func validZone() sim.ZoneConfig {
	return testutil.ThreeBlocZone("1",
		[]float64{0.38, 0.43, 0.19},
		[][]float64{{0.8, 0.1, 0.1}, {0.1, 0.45, 0.45}, {0.1, 0.45, 0.45}},
		3, 100, 10)
}

func TestZoneConfig_Validate_Valid(t *testing.T) {
	z := validZone()
	require.NoError(t, z.Validate())
	assert.Equal(t, []string{"C", "WP", "WM"}, z.Tags())
	assert.Equal(t, 9, z.NumCandidates())
}

func TestZoneConfig_Validate_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(z *sim.ZoneConfig)
		field  string
	}{
		{"empty id", func(z *sim.ZoneConfig) { z.ID = "" }, "id"},
		{"no blocs", func(z *sim.ZoneConfig) { z.Blocs = nil }, "blocs"},
		{"duplicate tag", func(z *sim.ZoneConfig) { z.Blocs[2].Tag = "WP" }, "blocs[2].tag"},
		{"tag ends in digit", func(z *sim.ZoneConfig) { z.Blocs[0].Tag = "C2" }, "blocs[0].tag"},
		{"too many candidates", func(z *sim.ZoneConfig) { z.Blocs[0].Candidates = sim.MaxCandidates }, "blocs"},
		{"shares off", func(z *sim.ZoneConfig) { z.Shares = []float64{0.5, 0.5, 0.5} }, "shares"},
		{"share negative", func(z *sim.ZoneConfig) { z.Shares = []float64{-0.1, 0.6, 0.5} }, "shares[C]"},
		{"shares wrong length", func(z *sim.ZoneConfig) { z.Shares = []float64{1} }, "shares"},
		{"cohesion row off", func(z *sim.ZoneConfig) { z.Cohesion[1] = []float64{0.5, 0.5, 0.5} }, "cohesion[WP]"},
		{"cohesion out of range", func(z *sim.ZoneConfig) { z.Cohesion[0] = []float64{1.2, -0.1, -0.1} }, "cohesion[C][C]"},
		{"alpha zero", func(z *sim.ZoneConfig) { z.Alphas[2][0] = 0 }, "alphas[WM][C]"},
		{"zero seats", func(z *sim.ZoneConfig) { z.Seats = 0 }, "seats"},
		{"seats exceed candidates", func(z *sim.ZoneConfig) { z.Seats = 10 }, "seats"},
		{"zero ballots", func(z *sim.ZoneConfig) { z.NumBallots = 0 }, "num_ballots"},
		{"zero trials", func(z *sim.ZoneConfig) { z.NumTrials = 0 }, "num_trials"},
		{"negative max ranking", func(z *sim.ZoneConfig) { z.MaxRanking = -1 }, "max_ranking"},
		{"unknown empty-slate policy", func(z *sim.ZoneConfig) { z.EmptySlate = "drop" }, "empty_slate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN a valid zone with one broken field
			z := validZone()
			tt.mutate(&z)

			// WHEN validating
			err := z.Validate()

			// THEN a ConfigError names the field
			require.Error(t, err)
			assert.True(t, errors.Is(err, sim.ErrConfiguration))
			var ce *sim.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestZoneConfig_Prepared_NormalizesSharesOnlyWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	orig := logrus.StandardLogger().Out
	logrus.SetOutput(&buf)
	defer logrus.SetOutput(orig)

	// GIVEN shares summing to 2
	z := validZone()
	z.Shares = []float64{0.76, 0.86, 0.38}

	// WHEN normalization is off THEN preparation fails
	_, err := z.Prepared()
	require.ErrorIs(t, err, sim.ErrConfiguration)

	// WHEN normalization is on THEN shares are rescaled and a warning is logged
	z.NormalizeShares = true
	p, err := z.Prepared()
	require.NoError(t, err)
	testutil.AssertFloat64Equal(t, "C share", 0.38, p.Shares[0], 1e-12)
	testutil.AssertFloat64Equal(t, "WP share", 0.43, p.Shares[1], 1e-12)
	assert.Contains(t, buf.String(), "normalizing")
	assert.Equal(t, 0.76, z.Shares[0], "original zone must not be modified")
}

func TestZoneConfig_EmptySlate(t *testing.T) {
	// GIVEN a zone whose WM slate has no candidates but receives cohesion weight
	z := validZone()
	z.Blocs[2].Candidates = 0

	t.Run("renormalize", func(t *testing.T) {
		assert.NoError(t, z.Validate())
	})
	t.Run("reject", func(t *testing.T) {
		r := z
		r.EmptySlate = sim.EmptySlateReject
		err := r.Validate()
		require.ErrorIs(t, err, sim.ErrConfiguration)
		assert.Contains(t, err.Error(), "no candidates")
	})
	t.Run("all weight on empty slates", func(t *testing.T) {
		r := z
		r.Cohesion = [][]float64{{0.8, 0.1, 0.1}, {0.1, 0.45, 0.45}, {0, 0, 1}}
		assert.ErrorIs(t, r.Validate(), sim.ErrConfiguration)
	})
}

func TestEffectiveCohesion(t *testing.T) {
	blocs := []sim.Bloc{{Tag: "C", Candidates: 2}, {Tag: "W", Candidates: 0}, {Tag: "X", Candidates: 1}}
	got, err := sim.EffectiveCohesion([]float64{0.4, 0.5, 0.1}, blocs)
	require.NoError(t, err)
	testutil.AssertFloat64Equal(t, "C", 0.8, got[0], 1e-12)
	assert.Equal(t, 0.0, got[1])
	testutil.AssertFloat64Equal(t, "X", 0.2, got[2], 1e-12)
}

func TestConfigError_Message(t *testing.T) {
	assert.Equal(t, "zone 3: seats: too many", (&sim.ConfigError{Zone: "3", Field: "seats", Reason: "too many"}).Error())
	assert.Equal(t, "quota: unknown", (&sim.ConfigError{Field: "quota", Reason: "unknown"}).Error())
}
