// Package jobs wires the scoring and lifecycle services together and runs
// the background passes the CLI exposes.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
	"github.com/alienbuster/alienbuster-go/internal/dispatch"
	"github.com/alienbuster/alienbuster-go/internal/errors"
	"github.com/alienbuster/alienbuster-go/internal/logging"
	"github.com/alienbuster/alienbuster-go/internal/observability"
	"github.com/alienbuster/alienbuster-go/internal/outbreak"
)

// Runner owns the store connection and the recompute/reconcile services.
type Runner struct {
	settings   *conf.Settings
	store      datastore.Interface
	metrics    *observability.Metrics
	manager    *outbreak.Manager
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// New validates the settings, opens the store and builds the service graph.
func New(settings *conf.Settings) (*Runner, error) {
	if err := conf.ValidateSettings(settings); err != nil {
		return nil, err
	}

	store := datastore.New(settings)
	if store == nil {
		return nil, errors.Newf("no database output enabled").
			Component("jobs").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := store.Open(); err != nil {
		return nil, err
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}

	return &Runner{
		settings:   settings,
		store:      store,
		metrics:    metrics,
		manager:    outbreak.NewManager(store, settings.Outbreak, metrics),
		dispatcher: dispatch.NewDispatcher(store, settings.Dispatch, metrics),
		logger:     logging.ForService("jobs"),
	}, nil
}

// Close releases the store connection.
func (r *Runner) Close() error {
	return r.store.Close()
}

// Recompute runs one outbreak recompute pass.
func (r *Runner) Recompute(ctx context.Context) (outbreak.RecomputeResult, error) {
	return r.manager.Recompute(ctx)
}

// Reconcile runs one task reconcile pass.
func (r *Runner) Reconcile(ctx context.Context) (int, error) {
	return r.dispatcher.Reconcile(ctx)
}

// Sweep runs recompute followed by reconcile on the configured interval
// until the context is cancelled. Reconcile always runs after recompute so
// freshly created outbreaks get their task in the same sweep. A pass
// failure is logged and the loop keeps going.
func (r *Runner) Sweep(ctx context.Context) error {
	interval := time.Duration(r.settings.Dispatch.SweepInterval) * time.Second
	r.logger.Info("sweep loop started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("sweep loop stopped")
			return ctx.Err()
		case <-ticker.C:
			r.pass(ctx)
		}
	}
}

func (r *Runner) pass(ctx context.Context) {
	result, err := r.manager.Recompute(ctx)
	if err != nil {
		r.logger.Error("recompute pass failed", "error", err)
		return
	}
	created, err := r.dispatcher.Reconcile(ctx)
	if err != nil {
		r.logger.Error("reconcile pass failed", "error", err)
		return
	}
	r.logger.Info("sweep pass complete",
		"outbreaks_created", result.Created,
		"outbreaks_updated", result.Updated,
		"tasks_created", created)
}
