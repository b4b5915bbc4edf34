// Package ingest is the report creation path: validate the submission,
// assemble the fusion signals, score it, and persist the result.
package ingest

import (
	"context"
	"log/slog"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
	"github.com/alienbuster/alienbuster-go/internal/density"
	"github.com/alienbuster/alienbuster-go/internal/errors"
	"github.com/alienbuster/alienbuster-go/internal/fusion"
	"github.com/alienbuster/alienbuster-go/internal/logging"
	"github.com/alienbuster/alienbuster-go/internal/observability"
	"github.com/alienbuster/alienbuster-go/internal/outbreak"
	"github.com/alienbuster/alienbuster-go/internal/reputation"
)

// Seasonality has no upstream signal source yet, so every report carries
// the neutral value.
const defaultSeasonality = 0.5

// SatelliteSignal carries the remote-sensing observation for a submission.
// OK is false when the satellite lookup failed or was skipped.
type SatelliteSignal struct {
	OK           bool
	NDVIRecent   *float64
	NDVIBaseline *float64
	NDVIChange   *float64
	Anomaly      bool
}

// Submission is a citizen report, with the classifier output already
// attached by the caller.
type Submission struct {
	UserID           string
	ReporterNickname string

	Latitude  float64
	Longitude float64

	Species      string
	SpeciesTag   fusion.SpeciesTag
	MLConfidence float64
	IsInvasive   bool

	PhotoURL string
	Notes    string

	Satellite *SatelliteSignal
}

// Recomputer triggers an outbreak recompute pass.
type Recomputer interface {
	Recompute(ctx context.Context) (outbreak.RecomputeResult, error)
}

// Service assembles and persists reports.
type Service struct {
	store      datastore.Interface
	settings   *conf.Settings
	density    *density.Scorer
	reputation *reputation.Provider
	recomputer Recomputer
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewService creates the ingestion service. The recomputer may be nil, in
// which case high-risk reports do not trigger an outbreak pass.
func NewService(store datastore.Interface, settings *conf.Settings, scorer *density.Scorer, rep *reputation.Provider, recomputer Recomputer, metrics *observability.Metrics) *Service {
	return &Service{
		store:      store,
		settings:   settings,
		density:    scorer,
		reputation: rep,
		recomputer: recomputer,
		metrics:    metrics,
		logger:     logging.ForService("ingest"),
	}
}

// CreateReport validates the submission, computes the density and fused
// risk scores, persists the report with its initial status, and triggers
// an outbreak recompute when the fused risk crosses the configured
// threshold. The recompute runs inline; its failure is logged, not
// surfaced, since the report itself has already committed.
func (s *Service) CreateReport(ctx context.Context, sub Submission) (*datastore.Report, error) {
	if err := validateGeometry(sub.Latitude, sub.Longitude); err != nil {
		return nil, err
	}
	if sub.Species == "" {
		return nil, errors.Newf("species is required").
			Component("ingest").
			Category(errors.CategoryValidation).
			Context("field", "species").
			Build()
	}

	densityResult, err := s.density.Score(ctx, sub.Latitude, sub.Longitude)
	if err != nil {
		return nil, err
	}

	satScore := s.satelliteScore(sub.Satellite)
	repScore := s.reputationScore(ctx, sub.UserID)
	photoQuality := s.settings.Fusion.DefaultPhotoQuality
	if sub.PhotoURL != "" {
		photoQuality = s.settings.Fusion.PhotoAttachedQuality
	}

	fused := fusion.Fuse(fusion.Input{
		MLConfidence:   sub.MLConfidence,
		IsInvasive:     sub.IsInvasive,
		Species:        sub.Species,
		Tag:            sub.SpeciesTag,
		DensityScore:   densityResult.Score,
		SatelliteScore: satScore,
		Reputation:     repScore,
		PhotoQuality:   photoQuality,
		Seasonality:    defaultSeasonality,
	})

	report := &datastore.Report{
		UserID:           sub.UserID,
		ReporterNickname: sub.ReporterNickname,
		Latitude:         sub.Latitude,
		Longitude:        sub.Longitude,
		Species:          sub.Species,
		SpeciesTag:       string(sub.SpeciesTag),
		MLConfidence:     sub.MLConfidence,
		IsInvasive:       sub.IsInvasive,
		PhotoURL:         sub.PhotoURL,
		Notes:            sub.Notes,
		Status:           initialStatus(sub.MLConfidence, fused.Risk),

		DensityScore:      densityResult.Score,
		SatelliteScore:    satScore,
		FusedRisk:         fused.Risk,
		PhotoQuality:      photoQuality,
		RecommendedAction: fused.RecommendedAction,
	}
	if sub.Satellite != nil && sub.Satellite.OK {
		report.NDVIRecent = sub.Satellite.NDVIRecent
		report.NDVIBaseline = sub.Satellite.NDVIBaseline
		report.NDVIChange = sub.Satellite.NDVIChange
		report.NDVIAnomaly = sub.Satellite.Anomaly
	}
	if err := report.SetFusedComponents(fused.Components); err != nil {
		return nil, err
	}
	if err := report.SetFusedReasons(fused.Reasons); err != nil {
		return nil, err
	}

	if err := s.store.SaveReport(ctx, report); err != nil {
		return nil, err
	}

	s.metrics.ReportIngested(report.Status)
	for _, rule := range fused.Triggered {
		s.metrics.FusionCalibrationTriggered(rule)
	}
	s.logger.Info("report created",
		"report_id", report.ID,
		"species", report.Species,
		"fused_risk", report.FusedRisk,
		"status", report.Status)

	if s.recomputer != nil && fused.Risk > s.settings.Ingest.RecomputeTrigger {
		if _, err := s.recomputer.Recompute(ctx); err != nil {
			s.logger.Error("outbreak recompute failed",
				"report_id", report.ID,
				"error", err)
		}
	}

	return report, nil
}

// satelliteScore maps the remote-sensing signal to a fusion input. A
// missing or failed lookup falls back to the conservative default rather
// than zero.
func (s *Service) satelliteScore(sig *SatelliteSignal) float64 {
	if sig == nil || !sig.OK {
		return s.settings.Fusion.DefaultSatelliteScore
	}
	if sig.Anomaly {
		return s.settings.Fusion.AnomalySatelliteScore
	}
	return s.settings.Fusion.DefaultSatelliteScore
}

func (s *Service) reputationScore(ctx context.Context, userID string) float64 {
	if s.reputation == nil {
		return s.settings.Fusion.DefaultReputation
	}
	score, err := s.reputation.Score(ctx, userID)
	if err != nil {
		s.logger.Warn("reputation lookup failed, using default",
			"user_id", userID, "error", err)
		return s.settings.Fusion.DefaultReputation
	}
	return score
}

// initialStatus queues ambiguous classifier output and high fused risk for
// expert review; everything else starts unverified.
func initialStatus(mlConfidence, risk float64) string {
	if mlConfidence > 0.4 && mlConfidence < 0.7 {
		return datastore.ReportStatusPendingReview
	}
	if risk > 0.7 {
		return datastore.ReportStatusPendingReview
	}
	return datastore.ReportStatusUnverified
}

// validateGeometry rejects out-of-range coordinates, naming the offending
// field. Coordinates are never clamped.
func validateGeometry(lat, lon float64) error {
	if !(lat >= -90 && lat <= 90) {
		return errors.Newf("latitude %v out of range [-90, 90]", lat).
			Component("ingest").
			Category(errors.CategoryValidation).
			Context("field", "latitude").
			Context("value", lat).
			Build()
	}
	if !(lon >= -180 && lon <= 180) {
		return errors.Newf("longitude %v out of range [-180, 180]", lon).
			Component("ingest").
			Category(errors.CategoryValidation).
			Context("field", "longitude").
			Context("value", lon).
			Build()
	}
	return nil
}
