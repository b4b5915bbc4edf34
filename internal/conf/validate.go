// validate.go - validation of settings values
package conf

import (
	"github.com/alienbuster/alienbuster-go/internal/errors"
)

// ValidateSettings checks the loaded settings for values that would make the
// core misbehave. It returns a configuration-category error naming the
// offending setting.
func ValidateSettings(settings *Settings) error {
	if err := validateDensitySettings(&settings.Density); err != nil {
		return err
	}
	if err := validateOutbreakSettings(&settings.Outbreak); err != nil {
		return err
	}
	if err := validateDispatchSettings(&settings.Dispatch); err != nil {
		return err
	}
	return validateOutputSettings(&settings.Output)
}

func validateDensitySettings(s *DensitySettings) error {
	if s.RadiusKm <= 0 {
		return confError("density.radiuskm must be positive", "density.radiuskm", s.RadiusKm)
	}
	if s.WindowDays <= 0 {
		return confError("density.windowdays must be positive", "density.windowdays", s.WindowDays)
	}
	return nil
}

func validateOutbreakSettings(s *OutbreakSettings) error {
	if s.WindowDays <= 0 {
		return confError("outbreak.windowdays must be positive", "outbreak.windowdays", s.WindowDays)
	}
	if s.MinRisk < 0 || s.MinRisk > 1 {
		return confError("outbreak.minrisk must be within [0,1]", "outbreak.minrisk", s.MinRisk)
	}
	if s.ClusterRadiusKm <= 0 {
		return confError("outbreak.clusterradiuskm must be positive", "outbreak.clusterradiuskm", s.ClusterRadiusKm)
	}
	if s.MinClusterSize < 2 {
		return confError("outbreak.minclustersize must be at least 2", "outbreak.minclustersize", s.MinClusterSize)
	}
	if s.MergeRadiusKm <= 0 {
		return confError("outbreak.mergeradiuskm must be positive", "outbreak.mergeradiuskm", s.MergeRadiusKm)
	}
	return nil
}

func validateDispatchSettings(s *DispatchSettings) error {
	if s.MinRisk < 0 || s.MinRisk > 1 {
		return confError("dispatch.minrisk must be within [0,1]", "dispatch.minrisk", s.MinRisk)
	}
	if s.CriticalRisk < s.MinRisk {
		return confError("dispatch.criticalrisk must not be below dispatch.minrisk", "dispatch.criticalrisk", s.CriticalRisk)
	}
	if s.Routing.AssignedTo == "" {
		return confError("dispatch.routing.assignedto must not be empty", "dispatch.routing.assignedto", s.Routing.AssignedTo)
	}
	if s.Routing.Agency == "" {
		return confError("dispatch.routing.agency must not be empty", "dispatch.routing.agency", s.Routing.Agency)
	}
	if s.SweepInterval <= 0 {
		return confError("dispatch.sweepinterval must be positive", "dispatch.sweepinterval", s.SweepInterval)
	}
	return nil
}

func validateOutputSettings(s *OutputSettings) error {
	if !s.SQLite.Enabled && !s.MySQL.Enabled {
		return confError("at least one of output.sqlite or output.mysql must be enabled", "output", nil)
	}
	if s.SQLite.Enabled && s.SQLite.Path == "" {
		return confError("output.sqlite.path must not be empty", "output.sqlite.path", s.SQLite.Path)
	}
	if s.MySQL.Enabled {
		if s.MySQL.Host == "" {
			return confError("output.mysql.host must not be empty", "output.mysql.host", s.MySQL.Host)
		}
		if s.MySQL.Database == "" {
			return confError("output.mysql.database must not be empty", "output.mysql.database", s.MySQL.Database)
		}
	}
	return nil
}

func confError(msg, setting string, value any) error {
	return errors.Newf("%s", msg).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Context("setting", setting).
		Context("value", value).
		Build()
}
