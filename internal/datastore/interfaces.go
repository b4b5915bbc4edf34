// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"context"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/errors"
	"github.com/alienbuster/alienbuster-go/internal/geo"
)

// Interface abstracts the underlying database implementation and defines the
// operations the outbreak-response core needs from its store.
type Interface interface {
	Open() error
	Close() error

	// Reports
	SaveReport(ctx context.Context, report *Report) error
	GetReport(ctx context.Context, id uint) (*Report, error)
	UpdateReportScores(ctx context.Context, id uint, fields map[string]any) error
	UpdateReportStatus(ctx context.Context, id uint, status string) error
	InvasiveReportsSince(ctx context.Context, cutoff time.Time, rect geo.BoundingRect) ([]Report, error)
	HighRiskReportsSince(ctx context.Context, cutoff time.Time, minRisk float64) ([]Report, error)
	ReportsNearby(ctx context.Context, rect geo.BoundingRect, cutoff time.Time, limit int) ([]Report, error)
	ReviewQueue(ctx context.Context, highRiskThreshold float64, limit int) ([]Report, error)

	// Review audit
	SaveValidation(ctx context.Context, validation *Validation) error

	// Outbreaks
	SaveOutbreak(ctx context.Context, outbreak *Outbreak) error
	UpdateOutbreak(ctx context.Context, id uint, fields map[string]any) error
	ActiveOutbreaksBySpecies(ctx context.Context, species string) ([]Outbreak, error)
	OutbreaksForDispatch(ctx context.Context, minRisk float64) ([]Outbreak, error)
	ListOutbreaks(ctx context.Context, status string) ([]Outbreak, error)

	// Tasks
	HasUnresolvedTask(ctx context.Context, outbreakID uint) (bool, error)
	SaveTask(ctx context.Context, task *Task) error
	ListTasks(ctx context.Context, status, assignedTo string) ([]Task, error)
	UpdateTask(ctx context.Context, id uint, fields map[string]any) error

	// Reporters
	GetReporter(ctx context.Context, userID string) (*Reporter, error)
	SaveReporter(ctx context.Context, reporter *Reporter) error

	// Transaction runs fn against a transactional view of the store. The
	// transaction commits only when fn returns nil, so a recompute or
	// reconcile pass applies all of its updates or none of them.
	Transaction(ctx context.Context, fn func(tx Interface) error) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// Open is overridden by the driver-specific stores. The base store is only
// ever constructed around an already-open connection.
func (ds *DataStore) Open() error {
	if ds.DB == nil {
		return errors.Newf("no database driver configured").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// Close releases the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close")
	}
	return sqlDB.Close()
}

// activeOutbreakStatuses are the statuses a cluster may merge into.
var activeOutbreakStatuses = []string{
	OutbreakStatusWatch,
	OutbreakStatusInvestigating,
	OutbreakStatusConfirmed,
}

// New creates a new store instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// SaveReport inserts a new report.
func (ds *DataStore) SaveReport(ctx context.Context, report *Report) error {
	if err := ds.DB.WithContext(ctx).Create(report).Error; err != nil {
		return dbError(err, "save_report")
	}
	return nil
}

// GetReport retrieves a report by its ID.
func (ds *DataStore) GetReport(ctx context.Context, id uint) (*Report, error) {
	var report Report
	if err := ds.DB.WithContext(ctx).First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Newf("report %d not found", id).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Context("report_id", id).
				Build()
		}
		return nil, dbError(err, "get_report")
	}
	return &report, nil
}

// UpdateReportScores updates derived score fields of a report. Status is
// never written through this path; recompute jobs own score fields only.
func (ds *DataStore) UpdateReportScores(ctx context.Context, id uint, fields map[string]any) error {
	scores := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "status" {
			continue
		}
		scores[k] = v
	}
	if err := ds.DB.WithContext(ctx).Model(&Report{}).Where("id = ?", id).Updates(scores).Error; err != nil {
		return dbError(err, "update_report_scores")
	}
	return nil
}

// UpdateReportStatus updates the lifecycle status of a report. Only the
// review workflow may call this.
func (ds *DataStore) UpdateReportStatus(ctx context.Context, id uint, status string) error {
	if err := ds.DB.WithContext(ctx).Model(&Report{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return dbError(err, "update_report_status")
	}
	return nil
}

// withinLongitude constrains the query to the rect's longitude span. A rect
// crossing the antimeridian arrives with MinLon > MaxLon and covers the two
// ranges [MinLon, 180] and [-180, MaxLon].
func withinLongitude(query *gorm.DB, rect geo.BoundingRect) *gorm.DB {
	if rect.WrapsAntimeridian() {
		return query.Where("longitude >= ? OR longitude <= ?", rect.MinLon, rect.MaxLon)
	}
	return query.Where("longitude BETWEEN ? AND ?", rect.MinLon, rect.MaxLon)
}

// InvasiveReportsSince returns invasive-flagged reports created at or after
// the cutoff whose coordinates lie inside the bounding rect. Callers apply
// the exact distance filter.
func (ds *DataStore) InvasiveReportsSince(ctx context.Context, cutoff time.Time, rect geo.BoundingRect) ([]Report, error) {
	var reports []Report
	query := ds.DB.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Where("is_invasive = ?", true).
		Where("latitude BETWEEN ? AND ?", rect.MinLat, rect.MaxLat)
	err := withinLongitude(query, rect).Find(&reports).Error
	if err != nil {
		return nil, dbError(err, "invasive_reports_since")
	}
	return reports, nil
}

// HighRiskReportsSince returns invasive reports at or above the fused risk
// floor created at or after the cutoff. Input to the clustering pass.
func (ds *DataStore) HighRiskReportsSince(ctx context.Context, cutoff time.Time, minRisk float64) ([]Report, error) {
	var reports []Report
	err := ds.DB.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Where("is_invasive = ?", true).
		Where("fused_risk >= ?", minRisk).
		Order("id ASC").
		Find(&reports).Error
	if err != nil {
		return nil, dbError(err, "high_risk_reports_since")
	}
	return reports, nil
}

// ReportsNearby returns recent reports inside the bounding rect, newest first.
func (ds *DataStore) ReportsNearby(ctx context.Context, rect geo.BoundingRect, cutoff time.Time, limit int) ([]Report, error) {
	var reports []Report
	query := ds.DB.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Where("latitude BETWEEN ? AND ?", rect.MinLat, rect.MaxLat)
	err := withinLongitude(query, rect).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, dbError(err, "reports_nearby")
	}
	return reports, nil
}

// ReviewQueue returns reports awaiting expert review: explicitly queued ones
// plus unverified reports whose fused risk crossed the high-risk threshold.
func (ds *DataStore) ReviewQueue(ctx context.Context, highRiskThreshold float64, limit int) ([]Report, error) {
	var reports []Report
	err := ds.DB.WithContext(ctx).
		Where("status = ?", ReportStatusPendingReview).
		Or("status = ? AND fused_risk >= ?", ReportStatusUnverified, highRiskThreshold).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, dbError(err, "review_queue")
	}
	return reports, nil
}

// SaveValidation inserts a review decision audit row.
func (ds *DataStore) SaveValidation(ctx context.Context, validation *Validation) error {
	if err := ds.DB.WithContext(ctx).Create(validation).Error; err != nil {
		return dbError(err, "save_validation")
	}
	return nil
}

// SaveOutbreak inserts a new outbreak record.
func (ds *DataStore) SaveOutbreak(ctx context.Context, outbreak *Outbreak) error {
	if err := ds.DB.WithContext(ctx).Create(outbreak).Error; err != nil {
		return dbError(err, "save_outbreak")
	}
	return nil
}

// UpdateOutbreak replaces outbreak fields with freshly computed values.
func (ds *DataStore) UpdateOutbreak(ctx context.Context, id uint, fields map[string]any) error {
	if err := ds.DB.WithContext(ctx).Model(&Outbreak{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return dbError(err, "update_outbreak")
	}
	return nil
}

// ActiveOutbreaksBySpecies returns non-resolved outbreaks for a species.
func (ds *DataStore) ActiveOutbreaksBySpecies(ctx context.Context, species string) ([]Outbreak, error) {
	var outbreaks []Outbreak
	err := ds.DB.WithContext(ctx).
		Where("species = ?", species).
		Where("status IN ?", activeOutbreakStatuses).
		Find(&outbreaks).Error
	if err != nil {
		return nil, dbError(err, "active_outbreaks_by_species")
	}
	return outbreaks, nil
}

// OutbreaksForDispatch returns investigating/confirmed outbreaks at or above
// the mean risk floor.
func (ds *DataStore) OutbreaksForDispatch(ctx context.Context, minRisk float64) ([]Outbreak, error) {
	var outbreaks []Outbreak
	err := ds.DB.WithContext(ctx).
		Where("status IN ?", []string{OutbreakStatusInvestigating, OutbreakStatusConfirmed}).
		Where("mean_risk >= ?", minRisk).
		Order("mean_risk DESC").
		Find(&outbreaks).Error
	if err != nil {
		return nil, dbError(err, "outbreaks_for_dispatch")
	}
	return outbreaks, nil
}

// ListOutbreaks returns outbreaks ordered by mean risk, optionally filtered
// by status.
func (ds *DataStore) ListOutbreaks(ctx context.Context, status string) ([]Outbreak, error) {
	query := ds.DB.WithContext(ctx).Order("mean_risk DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var outbreaks []Outbreak
	if err := query.Find(&outbreaks).Error; err != nil {
		return nil, dbError(err, "list_outbreaks")
	}
	return outbreaks, nil
}

// HasUnresolvedTask reports whether the outbreak already has a live task.
func (ds *DataStore) HasUnresolvedTask(ctx context.Context, outbreakID uint) (bool, error) {
	var count int64
	err := ds.DB.WithContext(ctx).Model(&Task{}).
		Where("outbreak_id = ?", outbreakID).
		Where("status != ?", TaskStatusResolved).
		Count(&count).Error
	if err != nil {
		return false, dbError(err, "has_unresolved_task")
	}
	return count > 0, nil
}

// SaveTask inserts a new task.
func (ds *DataStore) SaveTask(ctx context.Context, task *Task) error {
	if err := ds.DB.WithContext(ctx).Create(task).Error; err != nil {
		return dbError(err, "save_task")
	}
	return nil
}

// ListTasks returns tasks ordered by priority then age, optionally filtered.
func (ds *DataStore) ListTasks(ctx context.Context, status, assignedTo string) ([]Task, error) {
	query := ds.DB.WithContext(ctx).Order("priority DESC, created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	var tasks []Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, dbError(err, "list_tasks")
	}
	return tasks, nil
}

// UpdateTask updates status/notes fields of a task. Tasks are never deleted.
func (ds *DataStore) UpdateTask(ctx context.Context, id uint, fields map[string]any) error {
	if err := ds.DB.WithContext(ctx).Model(&Task{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return dbError(err, "update_task")
	}
	return nil
}

// GetReporter retrieves a reporter row, ErrRecordNotFound mapped to a
// not-found category so callers can fall back to the default reputation.
func (ds *DataStore) GetReporter(ctx context.Context, userID string) (*Reporter, error) {
	var reporter Reporter
	if err := ds.DB.WithContext(ctx).First(&reporter, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Newf("reporter %s not found", userID).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return nil, dbError(err, "get_reporter")
	}
	return &reporter, nil
}

// SaveReporter upserts a reporter row.
func (ds *DataStore) SaveReporter(ctx context.Context, reporter *Reporter) error {
	if err := ds.DB.WithContext(ctx).Save(reporter).Error; err != nil {
		return dbError(err, "save_reporter")
	}
	return nil
}

// Transaction runs fn against a transactional store view.
func (ds *DataStore) Transaction(ctx context.Context, fn func(tx Interface) error) error {
	return ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DataStore{DB: tx})
	})
}

// dbError wraps a gorm error as a transient database-category error. Callers
// must retry these, never treat them as empty data.
func dbError(err error, operation string) error {
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Build()
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Report{}, &Validation{}, &Outbreak{}, &Reporter{}, &Task{}); err != nil {
		return errors.Newf("failed to auto-migrate %s database: %w", dbType, err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
