// config.go: This file contains the configuration for the outbreak-response core.
// It defines the settings struct and functions to load the settings.
package conf

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"

	"github.com/alienbuster/alienbuster-go/internal/errors"
)

// LogConfig contains settings for the main application log.
type LogConfig struct {
	Enabled bool   // true to enable logging
	Path    string // path to log file
}

// MainSettings contains general application settings.
type MainSettings struct {
	Name string    // name of the node
	Log  LogConfig // main log settings
}

// DensitySettings contains settings for the report density scorer.
type DensitySettings struct {
	RadiusKm   float64 // search radius for nearby invasive reports, in kilometers
	WindowDays int     // look-back window for nearby invasive reports, in days
}

// FusionSettings contains default input values for risk fusion when an
// upstream signal is absent. These are conservative placeholders, never
// nulls propagated into the fusion formula.
type FusionSettings struct {
	DefaultSatelliteScore float64 // satellite score used when remote sensing is unavailable
	DefaultReputation     float64 // reporter trust used when the reputation provider has no entry
	DefaultPhotoQuality   float64 // photo quality used when no photo is attached
	PhotoAttachedQuality  float64 // photo quality used when a photo is attached
	AnomalySatelliteScore float64 // satellite score used when an NDVI anomaly was flagged
}

// OutbreakSettings contains tunable policy constants for outbreak detection.
// Merge radius and cluster radius are independent tunables, not derived
// from one another.
type OutbreakSettings struct {
	WindowDays      int     // look-back window for qualifying reports, in days
	MinRisk         float64 // fused risk floor for a report to qualify
	ClusterRadiusKm float64 // DBSCAN neighborhood radius, in kilometers
	MinClusterSize  int     // DBSCAN minimum cluster size
	MergeRadiusKm   float64 // centroid distance below which a cluster merges into an existing outbreak
}

// RoutingSettings contains the static task routing policy.
type RoutingSettings struct {
	AssignedTo string // default assignee for auto-created tasks
	Agency     string // default agency for auto-created tasks
}

// DispatchSettings contains settings for the task dispatcher.
type DispatchSettings struct {
	MinRisk       float64         // outbreak mean risk floor for task creation
	CriticalRisk  float64         // mean risk at or above which tasks are created as critical
	Routing       RoutingSettings // static routing policy
	SweepInterval int             // seconds between recompute/reconcile sweeps
}

// ReviewSettings contains settings for the expert review queue.
type ReviewSettings struct {
	HighRiskThreshold float64 // fused risk at or above which unverified reports enter the queue
	QueueLimit        int     // maximum queue size returned
}

// IngestSettings contains settings for the report creation path.
type IngestSettings struct {
	RecomputeTrigger float64 // fused risk above which ingestion triggers an outbreak recompute
}

// AlertSettings contains settings for agency alert previews.
type AlertSettings struct {
	Threshold  float64  // fused risk at or above which an alert preview is offered
	Recipients []string // agency contact addresses
}

// SQLiteSettings contains SQLite output settings.
type SQLiteSettings struct {
	Enabled bool   // true to enable sqlite output
	Path    string // path to sqlite database
}

// MySQLSettings contains MySQL output settings.
type MySQLSettings struct {
	Enabled  bool   // true to enable mysql output
	Username string // mysql username
	Password string // mysql password
	Database string // mysql database name
	Host     string // mysql host
	Port     string // mysql port
}

// OutputSettings contains database output settings.
type OutputSettings struct {
	SQLite SQLiteSettings // sqlite settings
	MySQL  MySQLSettings  // mysql settings
}

// Settings is the top level configuration struct.
type Settings struct {
	Debug bool // true to enable debug mode

	Main     MainSettings
	Density  DensitySettings
	Fusion   FusionSettings
	Outbreak OutbreakSettings
	Dispatch DispatchSettings
	Review   ReviewSettings
	Ingest   IngestSettings
	Alerts   AlertSettings
	Output   OutputSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a Settings struct.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/alienbuster")
	viper.AddConfigPath("/etc/alienbuster")

	// Set default values for each configuration parameter,
	// function defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file is fine, defaults apply
			return nil
		}
		return errors.Newf("fatal error reading config file: %w", err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return nil
}

// Setting returns the current settings instance, initializing it if necessary.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				panic(fmt.Sprintf("error loading settings: %v", err))
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
