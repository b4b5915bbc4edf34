// Package dispatch turns qualifying outbreaks into remediation tasks.
// A reconcile pass walks the active outbreak set and creates at most one
// live task per outbreak, routed by static policy.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
	"github.com/alienbuster/alienbuster-go/internal/errors"
	"github.com/alienbuster/alienbuster-go/internal/logging"
	"github.com/alienbuster/alienbuster-go/internal/observability"
)

// Dispatcher creates tasks for outbreaks that cross the dispatch risk floor.
// Reconcile passes are serialized with a mutex: two concurrent passes would
// both observe an outbreak as taskless and create duplicate tasks.
type Dispatcher struct {
	store    datastore.Interface
	settings conf.DispatchSettings
	metrics  *observability.Metrics
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewDispatcher creates a task dispatcher.
func NewDispatcher(store datastore.Interface, settings conf.DispatchSettings, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		store:    store,
		settings: settings,
		metrics:  metrics,
		logger:   logging.ForService("dispatch"),
	}
}

// Reconcile creates tasks for every qualifying outbreak that has no live
// task, and returns the number of tasks created. Outbreaks below the risk
// floor, or already covered by an open or in-progress task, are skipped.
func (d *Dispatcher) Reconcile(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	outbreaks, err := d.store.OutbreaksForDispatch(ctx, d.settings.MinRisk)
	if err != nil {
		return 0, errors.New(err).
			Component("dispatch").
			Category(errors.CategoryDispatch).
			Context("operation", "list_outbreaks").
			Build()
	}

	created := 0
	for i := range outbreaks {
		ob := &outbreaks[i]
		made, err := d.reconcileOutbreak(ctx, ob)
		if err != nil {
			// A failure on one outbreak must not starve the rest of the pass.
			d.logger.Error("task creation failed",
				"outbreak_id", ob.ID,
				"species", ob.Species,
				"error", err)
			continue
		}
		if made {
			created++
		}
	}

	d.metrics.ReconcilePass()
	d.logger.Info("reconcile pass complete",
		"outbreaks", len(outbreaks),
		"tasks_created", created)
	return created, nil
}

// reconcileOutbreak creates a task for the outbreak unless one is already
// live. The existence check and the insert run in one transaction so a
// concurrent writer cannot slip a second task in between.
func (d *Dispatcher) reconcileOutbreak(ctx context.Context, ob *datastore.Outbreak) (bool, error) {
	made := false
	err := d.store.Transaction(ctx, func(tx datastore.Interface) error {
		exists, err := tx.HasUnresolvedTask(ctx, ob.ID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		task := d.buildTask(ob)
		if err := tx.SaveTask(ctx, task); err != nil {
			return err
		}
		made = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if made {
		d.metrics.TaskDispatched(d.priorityFor(ob.MeanRisk))
		d.logger.Info("task dispatched",
			"outbreak_id", ob.ID,
			"species", ob.Species,
			"mean_risk", ob.MeanRisk,
			"priority", d.priorityFor(ob.MeanRisk),
			"assigned_to", d.settings.Routing.AssignedTo)
	}
	return made, nil
}

func (d *Dispatcher) buildTask(ob *datastore.Outbreak) *datastore.Task {
	outbreakID := ob.ID
	return &datastore.Task{
		OutbreakID: &outbreakID,
		AssignedTo: d.settings.Routing.AssignedTo,
		Agency:     d.settings.Routing.Agency,
		Priority:   d.priorityFor(ob.MeanRisk),
		Status:     datastore.TaskStatusOpen,
		Notes:      taskNotes(ob),
	}
}

func (d *Dispatcher) priorityFor(meanRisk float64) string {
	if meanRisk >= d.settings.CriticalRisk {
		return datastore.TaskPriorityCritical
	}
	return datastore.TaskPriorityHigh
}

func taskNotes(ob *datastore.Outbreak) string {
	return fmt.Sprintf(
		"Auto-generated task for %s outbreak.\nRisk Level: %.2f\nLocation: %.4f, %.4f\nPlease investigate immediately.",
		ob.Species, ob.MeanRisk, ob.CentroidLat, ob.CentroidLon)
}
