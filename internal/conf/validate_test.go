package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienbuster/alienbuster-go/internal/errors"
)

func validSettings() *Settings {
	return &Settings{
		Density: DensitySettings{RadiusKm: 2.0, WindowDays: 14},
		Outbreak: OutbreakSettings{
			WindowDays:      60,
			MinRisk:         0.70,
			ClusterRadiusKm: 2.0,
			MinClusterSize:  3,
			MergeRadiusKm:   5.0,
		},
		Dispatch: DispatchSettings{
			MinRisk:       0.75,
			CriticalRisk:  0.90,
			Routing:       RoutingSettings{AssignedTo: "field_team_alpha", Agency: "Local Environmental Dept"},
			SweepInterval: 300,
		},
		Review: ReviewSettings{HighRiskThreshold: 0.85, QueueLimit: 100},
		Ingest: IngestSettings{RecomputeTrigger: 0.75},
		Output: OutputSettings{SQLite: SQLiteSettings{Enabled: true, Path: "test.db"}},
	}
}

func TestValidateSettings(t *testing.T) {
	t.Run("ValidDefaults", func(t *testing.T) {
		require.NoError(t, ValidateSettings(validSettings()))
	})

	t.Run("NegativeDensityRadius", func(t *testing.T) {
		s := validSettings()
		s.Density.RadiusKm = -1
		err := ValidateSettings(s)
		require.Error(t, err)
		assert.Equal(t, errors.CategoryConfiguration, errors.Category(err))
	})

	t.Run("MinClusterSizeTooSmall", func(t *testing.T) {
		s := validSettings()
		s.Outbreak.MinClusterSize = 1
		assert.Error(t, ValidateSettings(s))
	})

	t.Run("CriticalBelowMinRisk", func(t *testing.T) {
		s := validSettings()
		s.Dispatch.CriticalRisk = 0.5
		assert.Error(t, ValidateSettings(s))
	})

	t.Run("EmptyRoutingAssignee", func(t *testing.T) {
		s := validSettings()
		s.Dispatch.Routing.AssignedTo = ""
		assert.Error(t, ValidateSettings(s))
	})

	t.Run("NoOutputEnabled", func(t *testing.T) {
		s := validSettings()
		s.Output.SQLite.Enabled = false
		assert.Error(t, ValidateSettings(s))
	})

	t.Run("OutbreakRiskOutOfRange", func(t *testing.T) {
		s := validSettings()
		s.Outbreak.MinRisk = 1.2
		assert.Error(t, ValidateSettings(s))
	})
}
