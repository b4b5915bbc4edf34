// Package density scores how many recent invasive reports surround a point
// and maps the count onto a bounded urgency contribution.
package density

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
	"github.com/alienbuster/alienbuster-go/internal/geo"
	"github.com/alienbuster/alienbuster-go/internal/logging"
	"github.com/alienbuster/alienbuster-go/internal/observability"
)

// saturation controls how fast the score approaches 1.0 as the nearby
// report count grows: 1 report ~0.28, 3 ~0.63, 6 ~0.86.
const saturation = 3.0

// Result holds a nearby-report count and its saturating score.
type Result struct {
	Count int
	Score float64
}

// Scorer computes density scores against the report store. It is a pure
// read; concurrent calls are independent.
type Scorer struct {
	store    datastore.Interface
	settings conf.DensitySettings
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewScorer creates a density scorer with the configured radius and window.
func NewScorer(store datastore.Interface, settings conf.DensitySettings, metrics *observability.Metrics) *Scorer {
	return &Scorer{
		store:    store,
		settings: settings,
		metrics:  metrics,
		logger:   logging.ForService("density"),
	}
}

// Score counts invasive reports created within the configured window whose
// great-circle distance from the point is at most the configured radius, and
// maps the count to a score in [0,1]. A store failure is returned as a
// transient error, never as zero density: silently returning zero would
// under-score a true outbreak.
func (s *Scorer) Score(ctx context.Context, lat, lon float64) (Result, error) {
	cutoff := time.Now().AddDate(0, 0, -s.settings.WindowDays)
	rect := geo.RectAround(lat, lon, s.settings.RadiusKm)

	reports, err := s.store.InvasiveReportsSince(ctx, cutoff, rect)
	if err != nil {
		s.metrics.StoreError("invasive_reports_since")
		return Result{}, err
	}

	// The rect over-covers the search radius, filter by exact distance
	count := 0
	for i := range reports {
		d := geo.HaversineKm(lat, lon, reports[i].Latitude, reports[i].Longitude)
		if d <= s.settings.RadiusKm {
			count++
		}
	}

	result := Result{
		Count: count,
		Score: ScoreForCount(count),
	}

	s.metrics.DensityScoreComputed()
	s.logger.Debug("density computed",
		"lat", lat,
		"lon", lon,
		"count", result.Count,
		"score", result.Score)

	return result, nil
}

// ScoreForCount maps a nearby-report count to the saturating density score
// 1 - e^(-count/3), clamped to [0,1]. Each additional report contributes
// diminishing marginal urgency.
func ScoreForCount(count int) float64 {
	score := 1.0 - math.Exp(-float64(count)/saturation)
	return math.Max(0.0, math.Min(1.0, score))
}
