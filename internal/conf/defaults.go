// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "AlienBuster")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "alienbuster.log")

	viper.SetDefault("density.radiuskm", 2.0)
	viper.SetDefault("density.windowdays", 14)

	viper.SetDefault("fusion.defaultsatellitescore", 0.2)
	viper.SetDefault("fusion.defaultreputation", 0.5)
	viper.SetDefault("fusion.defaultphotoquality", 0.5)
	viper.SetDefault("fusion.photoattachedquality", 0.8)
	viper.SetDefault("fusion.anomalysatellitescore", 0.8)

	viper.SetDefault("outbreak.windowdays", 60)
	viper.SetDefault("outbreak.minrisk", 0.70)
	viper.SetDefault("outbreak.clusterradiuskm", 2.0)
	viper.SetDefault("outbreak.minclustersize", 3)
	viper.SetDefault("outbreak.mergeradiuskm", 5.0)

	viper.SetDefault("dispatch.minrisk", 0.75)
	viper.SetDefault("dispatch.criticalrisk", 0.90)
	viper.SetDefault("dispatch.routing.assignedto", "field_team_alpha")
	viper.SetDefault("dispatch.routing.agency", "Local Environmental Dept")
	viper.SetDefault("dispatch.sweepinterval", 300)

	viper.SetDefault("review.highriskthreshold", 0.85)
	viper.SetDefault("review.queuelimit", 100)

	viper.SetDefault("ingest.recomputetrigger", 0.75)

	viper.SetDefault("alerts.threshold", 0.80)
	viper.SetDefault("alerts.recipients", []string{})

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "alienbuster.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "alienbuster")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.database", "alienbuster")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
}
