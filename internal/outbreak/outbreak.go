// Package outbreak maintains standing outbreak records by spatially
// clustering recent high-risk reports and merging the clusters into the
// existing outbreak set.
package outbreak

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
	"github.com/alienbuster/alienbuster-go/internal/geo"
	"github.com/alienbuster/alienbuster-go/internal/logging"
	"github.com/alienbuster/alienbuster-go/internal/observability"
)

// RecomputeResult reports how many outbreaks a pass created and updated.
type RecomputeResult struct {
	Created int
	Updated int
}

// Manager owns outbreak records. Recompute passes are serialized: two
// concurrent passes would race on the merge-vs-create decision and create
// duplicate outbreaks for the same cluster, so later callers coalesce into
// the in-flight pass and share its result.
type Manager struct {
	store    datastore.Interface
	settings conf.OutbreakSettings
	metrics  *observability.Metrics
	logger   *slog.Logger
	group    singleflight.Group
}

// NewManager creates an outbreak lifecycle manager.
func NewManager(store datastore.Interface, settings conf.OutbreakSettings, metrics *observability.Metrics) *Manager {
	return &Manager{
		store:    store,
		settings: settings,
		metrics:  metrics,
		logger:   logging.ForService("outbreak"),
	}
}

// Recompute re-clusters all recent high-risk reports and reconciles the
// clusters against existing outbreak records. Safe to call from concurrent
// request handlers and background jobs.
func (m *Manager) Recompute(ctx context.Context) (RecomputeResult, error) {
	v, err, _ := m.group.Do("recompute", func() (any, error) {
		return m.recompute(ctx)
	})
	if err != nil {
		return RecomputeResult{}, err
	}
	return v.(RecomputeResult), nil
}

func (m *Manager) recompute(ctx context.Context) (RecomputeResult, error) {
	start := time.Now()

	cutoff := time.Now().AddDate(0, 0, -m.settings.WindowDays)
	reports, err := m.store.HighRiskReportsSince(ctx, cutoff, m.settings.MinRisk)
	if err != nil {
		m.metrics.StoreError("high_risk_reports_since")
		return RecomputeResult{}, err
	}

	// No qualifying reports is a valid empty result, not an error
	if len(reports) == 0 {
		return RecomputeResult{}, nil
	}

	clusters := clusterReports(reports, m.settings.ClusterRadiusKm, m.settings.MinClusterSize)
	if len(clusters) == 0 {
		// All points were noise this pass; they stay eligible for later passes
		m.logger.Debug("clustering found no clusters", "reports", len(reports))
		return RecomputeResult{}, nil
	}

	var result RecomputeResult
	err = m.store.Transaction(ctx, func(tx datastore.Interface) error {
		for _, members := range clusters {
			summary := summarize(reports, members)
			created, err := m.applyCluster(ctx, tx, summary)
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		// The transaction rolled back, nothing was committed
		m.metrics.StoreError("recompute_transaction")
		return RecomputeResult{}, err
	}

	m.metrics.RecomputePass(time.Since(start).Seconds(), result.Created, result.Updated)
	m.logger.Info("recompute pass complete",
		"reports", len(reports),
		"clusters", len(clusters),
		"created", result.Created,
		"updated", result.Updated,
		"duration", time.Since(start))

	return result, nil
}

// applyCluster merges the cluster into a nearby active outbreak of the same
// species, or creates a new outbreak. Existing outbreaks are updated in
// place with the freshly computed values; recomputation from scratch each
// pass is self-correcting, drifted centroids heal. Returns true when a new
// outbreak was created.
func (m *Manager) applyCluster(ctx context.Context, tx datastore.Interface, summary clusterSummary) (bool, error) {
	existing, err := tx.ActiveOutbreaksBySpecies(ctx, summary.species)
	if err != nil {
		return false, err
	}

	for i := range existing {
		d := geo.HaversineKm(summary.centroidLat, summary.centroidLon, existing[i].CentroidLat, existing[i].CentroidLon)
		if d < m.settings.MergeRadiusKm {
			err := tx.UpdateOutbreak(ctx, existing[i].ID, map[string]any{
				"centroid_lat": summary.centroidLat,
				"centroid_lon": summary.centroidLon,
				"radius_km":    summary.radiusKm,
				"num_reports":  summary.numReports,
				"mean_risk":    summary.meanRisk,
				"anomaly_rate": summary.anomalyRate,
			})
			return false, err
		}
	}

	outbreak := &datastore.Outbreak{
		Species:     summary.species,
		CentroidLat: summary.centroidLat,
		CentroidLon: summary.centroidLon,
		RadiusKm:    summary.radiusKm,
		NumReports:  summary.numReports,
		MeanRisk:    summary.meanRisk,
		AnomalyRate: summary.anomalyRate,
		Status:      datastore.OutbreakStatusInvestigating,
	}
	return true, tx.SaveOutbreak(ctx, outbreak)
}
