// model.go this code defines the data model for the application
package datastore

import (
	"encoding/json"
	"time"
)

// Report lifecycle statuses. A report is created as unverified and only the
// review workflow moves it to another status.
const (
	ReportStatusUnverified    = "unverified"
	ReportStatusPendingReview = "pending_review"
	ReportStatusVerified      = "verified"
	ReportStatusRejected      = "rejected"
	ReportStatusNeedsMoreInfo = "needs_more_info"
)

// Outbreak lifecycle statuses. Resolved is reached only through operator action.
const (
	OutbreakStatusWatch         = "watch"
	OutbreakStatusInvestigating = "investigating"
	OutbreakStatusConfirmed     = "confirmed"
	OutbreakStatusResolved      = "resolved"
)

// Task statuses and priorities.
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusResolved   = "resolved"

	TaskPriorityCritical = "critical"
	TaskPriorityHigh     = "high"
	TaskPriorityNormal   = "normal"
)

// Species tags decided once at the classifier boundary. Fusion and
// clustering consume the tag, never the raw label text.
const (
	SpeciesTagInvasive  = "invasive"
	SpeciesTagNative    = "native"
	SpeciesTagUnknown   = "unknown"
	SpeciesTagNonTarget = "non-target"
)

// Report represents a single sighting observation.
type Report struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index:idx_reports_created_at"`

	UserID            string `gorm:"index:idx_reports_user_id"`
	ReporterNickname  string

	Latitude  float64 `gorm:"index:idx_reports_lat_lon"`
	Longitude float64 `gorm:"index:idx_reports_lat_lon"`

	Species      string `gorm:"index:idx_reports_species"`
	SpeciesTag   string `gorm:"type:varchar(20)"`
	MLConfidence float64
	IsInvasive   bool `gorm:"index:idx_reports_is_invasive"`

	PhotoURL string
	Notes    string `gorm:"type:text"`

	Status string `gorm:"type:varchar(20);index:idx_reports_status"`

	// Satellite signal fields, supplied by the remote-sensing collaborator
	NDVIRecent   *float64
	NDVIBaseline *float64
	NDVIChange   *float64
	NDVIAnomaly  bool

	// Derived score fields, written by recompute jobs only
	DensityScore   float64
	SatelliteScore float64
	FusedRisk      float64 `gorm:"index:idx_reports_fused_risk"`

	PhotoQuality      float64
	RecommendedAction string

	FusedComponentsJSON string `gorm:"type:text"`
	FusedReasonsJSON    string `gorm:"type:text"`
}

// SetFusedComponents serializes the per-term fusion contributions for auditability.
func (r *Report) SetFusedComponents(components map[string]float64) error {
	data, err := json.Marshal(components)
	if err != nil {
		return err
	}
	r.FusedComponentsJSON = string(data)
	return nil
}

// FusedComponents returns the deserialized fusion contributions, or nil when unset.
func (r *Report) FusedComponents() map[string]float64 {
	if r.FusedComponentsJSON == "" {
		return nil
	}
	var components map[string]float64
	if err := json.Unmarshal([]byte(r.FusedComponentsJSON), &components); err != nil {
		return nil
	}
	return components
}

// SetFusedReasons serializes the calibration reason strings.
func (r *Report) SetFusedReasons(reasons []string) error {
	data, err := json.Marshal(reasons)
	if err != nil {
		return err
	}
	r.FusedReasonsJSON = string(data)
	return nil
}

// FusedReasons returns the deserialized calibration reasons, or nil when unset.
func (r *Report) FusedReasons() []string {
	if r.FusedReasonsJSON == "" {
		return nil
	}
	var reasons []string
	if err := json.Unmarshal([]byte(r.FusedReasonsJSON), &reasons); err != nil {
		return nil
	}
	return reasons
}

// Validation represents an expert review decision on a report.
// GORM will automatically create table name as 'validations'
type Validation struct {
	ID          uint `gorm:"primaryKey"`
	ReportID    uint `gorm:"index;not null;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;foreignKey:ReportID;references:ID"`
	ExpertEmail string
	Decision    string `gorm:"type:varchar(20)"` // Values: "verified", "rejected", "needs_more_info"
	Confidence  *float64
	Notes       string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index"`
}

// Outbreak represents a standing spatial cluster of high-risk reports for one species.
type Outbreak struct {
	ID        uint `gorm:"primaryKey"`
	Species   string `gorm:"index:idx_outbreaks_species"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index:idx_outbreaks_updated_at"`

	CentroidLat float64
	CentroidLon float64
	RadiusKm    float64

	NumReports  int
	MeanRisk    float64
	AnomalyRate float64

	Status string `gorm:"type:varchar(20);index:idx_outbreaks_status"`
}

// Reporter carries the trust score for a reporting user.
type Reporter struct {
	UserID     string  `gorm:"primaryKey"`
	Reputation float64 `gorm:"default:0.5"`
}

// Task represents a unit of remediation work tied to at most one outbreak
// and optionally one report.
type Task struct {
	ID         uint  `gorm:"primaryKey"`
	OutbreakID *uint `gorm:"index;constraint:OnDelete:SET NULL;foreignKey:OutbreakID;references:ID"`
	ReportID   *uint `gorm:"index;constraint:OnDelete:SET NULL;foreignKey:ReportID;references:ID"`

	AssignedTo string
	Agency     string
	Priority   string `gorm:"type:varchar(10);index:idx_tasks_priority"`
	Status     string `gorm:"type:varchar(20);index:idx_tasks_status"`

	CreatedAt time.Time `gorm:"index:idx_tasks_created_at"`
	DueAt     *time.Time
	Notes     string `gorm:"type:text"`
}
