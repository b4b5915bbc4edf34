// Package fusion combines classifier confidence, report density, satellite
// anomaly signal, reporter trust, photo quality and seasonality into one
// bounded risk score with calibration overrides. Pure functions, no I/O.
package fusion

import "math"

// SpeciesTag classifies what the classifier decided about a species. The
// tag is decided once at the classifier boundary; fusion never re-derives
// it from label text.
type SpeciesTag string

const (
	TagInvasive  SpeciesTag = "invasive"
	TagNative    SpeciesTag = "native"
	TagUnknown   SpeciesTag = "unknown"
	TagNonTarget SpeciesTag = "non-target"
)

// Signal weights. They sum to 1.0.
const (
	weightML          = 0.40
	weightDensity     = 0.25
	weightSatellite   = 0.25
	weightReputation  = 0.05
	weightQuality     = 0.03
	weightSeasonality = 0.02
)

// Calibration rule identifiers, used for metrics labeling.
const (
	RuleCapNonInvasive    = "cap_non_invasive"
	RuleCapLowConfidence  = "cap_low_confidence"
	RuleBoostCorroborated = "boost_corroborated"
	RuleDensityNote       = "density_note"
)

// Recommended actions by risk threshold.
const (
	ActionImmediate = "Immediate Verification & Containment Alert"
	ActionPriority  = "Priority Review & Satellite Monitoring"
	ActionRoutine   = "Routine Review"
	ActionPassive   = "Log & Passive Monitor"
)

// Input carries the signals entering the fusion formula. Absent upstream
// signals must be filled with conservative placeholders by the caller;
// fusion never sees nulls.
type Input struct {
	MLConfidence   float64
	IsInvasive     bool
	Species        string
	Tag            SpeciesTag
	DensityScore   float64
	SatelliteScore float64
	Reputation     float64
	PhotoQuality   float64
	Seasonality    float64
}

// Result is the fused risk with its per-term contributions for
// auditability, the human-readable calibration reasons, and the
// recommended action.
type Result struct {
	Risk              float64
	Components        map[string]float64
	Reasons           []string
	Triggered         []string
	RecommendedAction string
}

// Fuse computes the weighted base score and applies the calibration rules
// in order. Deterministic; the final risk is always within [0,1].
func Fuse(in Input) Result {
	risk := in.MLConfidence*weightML +
		in.DensityScore*weightDensity +
		in.SatelliteScore*weightSatellite +
		in.Reputation*weightReputation +
		in.PhotoQuality*weightQuality +
		in.Seasonality*weightSeasonality

	components := map[string]float64{
		"ml":          in.MLConfidence * weightML,
		"density":     in.DensityScore * weightDensity,
		"satellite":   in.SatelliteScore * weightSatellite,
		"reputation":  in.Reputation * weightReputation,
		"quality":     in.PhotoQuality * weightQuality,
		"seasonality": in.Seasonality * weightSeasonality,
	}

	var reasons []string
	var triggered []string

	switch {
	case !in.IsInvasive || in.Tag != TagInvasive:
		// Non-invasive or unidentified species never scores above 0.30
		if risk > 0.30 {
			risk = 0.30
			reasons = append(reasons, "Capped risk: Species identified as non-invasive or unknown.")
			triggered = append(triggered, RuleCapNonInvasive)
		}
	case in.MLConfidence < 0.60 && in.SatelliteScore < 0.4 && in.DensityScore < 0.3:
		// Low classifier confidence without any strong corroborating signal
		if risk > 0.55 {
			risk = 0.55
			reasons = append(reasons, "Capped risk: Low ML confidence without strong satellite or density corroboration.")
			triggered = append(triggered, RuleCapLowConfidence)
		}
	case in.MLConfidence > 0.85 && in.SatelliteScore > 0.7:
		// Two independent strong signals agree
		risk = math.Min(0.99, risk+0.05)
		reasons = append(reasons, "Boosted risk: High ML confidence corroborated by satellite anomaly.")
		triggered = append(triggered, RuleBoostCorroborated)
	}

	if in.DensityScore > 0.8 {
		// Informational only, no score change
		reasons = append(reasons, "High report density in area suggests active outbreak.")
		triggered = append(triggered, RuleDensityNote)
	}

	risk = math.Max(0.0, math.Min(1.0, risk))

	return Result{
		Risk:              risk,
		Components:        components,
		Reasons:           reasons,
		Triggered:         triggered,
		RecommendedAction: actionForRisk(risk),
	}
}

func actionForRisk(risk float64) string {
	switch {
	case risk >= 0.80:
		return ActionImmediate
	case risk >= 0.60:
		return ActionPriority
	case risk >= 0.40:
		return ActionRoutine
	default:
		return ActionPassive
	}
}
