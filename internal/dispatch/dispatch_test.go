package dispatch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
)

func setupDispatcher(t *testing.T) (*Dispatcher, *datastore.DataStore) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&datastore.Outbreak{}, &datastore.Task{}))

	ds := &datastore.DataStore{DB: db}
	settings := conf.DispatchSettings{
		MinRisk:      0.75,
		CriticalRisk: 0.90,
		Routing: conf.RoutingSettings{
			AssignedTo: "field_team_alpha",
			Agency:     "Local Environmental Dept",
		},
	}
	return NewDispatcher(ds, settings, nil), ds
}

func seedOutbreak(t *testing.T, ds *datastore.DataStore, species string, meanRisk float64, status string) *datastore.Outbreak {
	t.Helper()
	ob := &datastore.Outbreak{
		Species:     species,
		CentroidLat: 60.1699,
		CentroidLon: 24.9384,
		RadiusKm:    1.2,
		NumReports:  4,
		MeanRisk:    meanRisk,
		AnomalyRate: 0.25,
		Status:      status,
	}
	require.NoError(t, ds.SaveOutbreak(context.Background(), ob))
	return ob
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates task for qualifying outbreak", func(t *testing.T) {
		d, ds := setupDispatcher(t)
		ob := seedOutbreak(t, ds, "giant hogweed", 0.82, datastore.OutbreakStatusInvestigating)

		created, err := d.Reconcile(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		tasks, err := ds.ListTasks(ctx, "", "")
		require.NoError(t, err)
		require.Len(t, tasks, 1)

		task := tasks[0]
		require.NotNil(t, task.OutbreakID)
		assert.Equal(t, ob.ID, *task.OutbreakID)
		assert.Equal(t, datastore.TaskStatusOpen, task.Status)
		assert.Equal(t, datastore.TaskPriorityHigh, task.Priority)
		assert.Equal(t, "field_team_alpha", task.AssignedTo)
		assert.Equal(t, "Local Environmental Dept", task.Agency)
		assert.True(t, strings.Contains(task.Notes, "giant hogweed"))
		assert.True(t, strings.Contains(task.Notes, "0.82"))
	})

	t.Run("mean risk at critical threshold creates critical task", func(t *testing.T) {
		d, ds := setupDispatcher(t)
		seedOutbreak(t, ds, "spotted lanternfly", 0.90, datastore.OutbreakStatusConfirmed)

		created, err := d.Reconcile(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		tasks, err := ds.ListTasks(ctx, "", "")
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, datastore.TaskPriorityCritical, tasks[0].Priority)
	})

	t.Run("just below critical threshold stays high", func(t *testing.T) {
		d, ds := setupDispatcher(t)
		seedOutbreak(t, ds, "zebra mussel", 0.899, datastore.OutbreakStatusInvestigating)

		_, err := d.Reconcile(ctx)
		require.NoError(t, err)

		tasks, err := ds.ListTasks(ctx, "", "")
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, datastore.TaskPriorityHigh, tasks[0].Priority)
	})

	t.Run("below risk floor is skipped", func(t *testing.T) {
		d, ds := setupDispatcher(t)
		seedOutbreak(t, ds, "kudzu", 0.74, datastore.OutbreakStatusInvestigating)

		created, err := d.Reconcile(ctx)
		require.NoError(t, err)
		assert.Zero(t, created)

		tasks, err := ds.ListTasks(ctx, "", "")
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("watch and resolved outbreaks are skipped", func(t *testing.T) {
		d, ds := setupDispatcher(t)
		seedOutbreak(t, ds, "kudzu", 0.88, datastore.OutbreakStatusWatch)
		seedOutbreak(t, ds, "kudzu", 0.88, datastore.OutbreakStatusResolved)

		created, err := d.Reconcile(ctx)
		require.NoError(t, err)
		assert.Zero(t, created)
	})

	t.Run("second pass is a no-op while task is live", func(t *testing.T) {
		d, ds := setupDispatcher(t)
		seedOutbreak(t, ds, "giant hogweed", 0.82, datastore.OutbreakStatusInvestigating)

		created, err := d.Reconcile(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, created)

		created, err = d.Reconcile(ctx)
		require.NoError(t, err)
		assert.Zero(t, created)

		tasks, err := ds.ListTasks(ctx, "", "")
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
	})

	t.Run("in-progress task still blocks a new one", func(t *testing.T) {
		d, ds := setupDispatcher(t)
		seedOutbreak(t, ds, "giant hogweed", 0.82, datastore.OutbreakStatusInvestigating)

		_, err := d.Reconcile(ctx)
		require.NoError(t, err)

		tasks, err := ds.ListTasks(ctx, "", "")
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		require.NoError(t, ds.UpdateTask(ctx, tasks[0].ID, map[string]any{"status": datastore.TaskStatusInProgress}))

		created, err := d.Reconcile(ctx)
		require.NoError(t, err)
		assert.Zero(t, created)
	})

	t.Run("resolved task allows a new one", func(t *testing.T) {
		d, ds := setupDispatcher(t)
		seedOutbreak(t, ds, "giant hogweed", 0.82, datastore.OutbreakStatusInvestigating)

		_, err := d.Reconcile(ctx)
		require.NoError(t, err)

		tasks, err := ds.ListTasks(ctx, "", "")
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		require.NoError(t, ds.UpdateTask(ctx, tasks[0].ID, map[string]any{"status": datastore.TaskStatusResolved}))

		created, err := d.Reconcile(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		tasks, err = ds.ListTasks(ctx, "", "")
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})

	t.Run("empty outbreak set", func(t *testing.T) {
		d, _ := setupDispatcher(t)
		created, err := d.Reconcile(ctx)
		require.NoError(t, err)
		assert.Zero(t, created)
	})
}
