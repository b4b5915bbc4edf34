package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invasiveInput() Input {
	return Input{
		MLConfidence:   0.9,
		IsInvasive:     true,
		Species:        "kudzu",
		Tag:            TagInvasive,
		DensityScore:   0.0,
		SatelliteScore: 0.9,
		Reputation:     0.5,
		PhotoQuality:   0.5,
		Seasonality:    0.5,
	}
}

func TestFuseBoostedScenario(t *testing.T) {
	// ml=0.9, density=0, satellite=0.9: base ~0.585, rule 3 boosts to ~0.635
	result := Fuse(invasiveInput())

	assert.InDelta(t, 0.635, result.Risk, 0.001)
	assert.Contains(t, result.Triggered, RuleBoostCorroborated)
	require.NotEmpty(t, result.Reasons)
	assert.Contains(t, result.Reasons[0], "Boosted risk")

	assert.InDelta(t, 0.36, result.Components["ml"], 1e-9)
	assert.InDelta(t, 0.225, result.Components["satellite"], 1e-9)
	assert.InDelta(t, 0.025, result.Components["reputation"], 1e-9)
}

func TestFuseNonInvasiveCap(t *testing.T) {
	t.Run("FlagFalse", func(t *testing.T) {
		in := invasiveInput()
		in.IsInvasive = false
		in.MLConfidence = 1.0
		in.DensityScore = 1.0
		in.SatelliteScore = 1.0

		result := Fuse(in)
		assert.LessOrEqual(t, result.Risk, 0.30)
		assert.Contains(t, result.Triggered, RuleCapNonInvasive)
	})

	t.Run("UnknownTag", func(t *testing.T) {
		in := invasiveInput()
		in.Tag = TagUnknown

		result := Fuse(in)
		assert.LessOrEqual(t, result.Risk, 0.30)
	})

	t.Run("NativeTag", func(t *testing.T) {
		in := invasiveInput()
		in.Tag = TagNative

		result := Fuse(in)
		assert.LessOrEqual(t, result.Risk, 0.30)
	})

	t.Run("NoReasonWhenAlreadyBelowCap", func(t *testing.T) {
		in := Input{IsInvasive: false, Tag: TagNative, MLConfidence: 0.1}
		result := Fuse(in)
		assert.NotContains(t, result.Triggered, RuleCapNonInvasive)
	})
}

func TestFuseLowConfidenceCap(t *testing.T) {
	in := Input{
		MLConfidence:   0.5,
		IsInvasive:     true,
		Tag:            TagInvasive,
		DensityScore:   0.2,
		SatelliteScore: 0.3,
		Reputation:     1.0,
		PhotoQuality:   1.0,
		Seasonality:    1.0,
	}
	// base = 0.2 + 0.05 + 0.075 + 0.05 + 0.03 + 0.02 = well below 0.55, bump satellite
	in.SatelliteScore = 0.39
	in.DensityScore = 0.29
	in.MLConfidence = 0.59

	result := Fuse(in)
	assert.LessOrEqual(t, result.Risk, 0.55)

	// Strong density corroboration disables the cap
	in.DensityScore = 0.9
	result = Fuse(in)
	assert.NotContains(t, result.Triggered, RuleCapLowConfidence)
}

func TestFuseDensityNote(t *testing.T) {
	in := invasiveInput()
	in.DensityScore = 0.85
	base := Fuse(invasiveInput())
	result := Fuse(in)

	assert.Contains(t, result.Triggered, RuleDensityNote)
	// Informational rule never lowers the score
	assert.GreaterOrEqual(t, result.Risk, base.Risk)
}

func TestFuseRiskAlwaysBounded(t *testing.T) {
	extremes := []float64{0.0, 0.5, 1.0}
	for _, ml := range extremes {
		for _, density := range extremes {
			for _, sat := range extremes {
				for _, invasive := range []bool{true, false} {
					in := Input{
						MLConfidence:   ml,
						IsInvasive:     invasive,
						Tag:            TagInvasive,
						DensityScore:   density,
						SatelliteScore: sat,
						Reputation:     1.0,
						PhotoQuality:   1.0,
						Seasonality:    1.0,
					}
					result := Fuse(in)
					assert.GreaterOrEqual(t, result.Risk, 0.0)
					assert.LessOrEqual(t, result.Risk, 1.0)
				}
			}
		}
	}
}

func TestFuseDeterministic(t *testing.T) {
	a := Fuse(invasiveInput())
	b := Fuse(invasiveInput())
	assert.Equal(t, a, b)
}

func TestRecommendedActions(t *testing.T) {
	cases := []struct {
		risk   float64
		action string
	}{
		{0.85, ActionImmediate},
		{0.80, ActionImmediate},
		{0.70, ActionPriority},
		{0.60, ActionPriority},
		{0.50, ActionRoutine},
		{0.40, ActionRoutine},
		{0.30, ActionPassive},
		{0.0, ActionPassive},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.action, actionForRisk(tc.risk), "risk %.2f", tc.risk)
	}
}
