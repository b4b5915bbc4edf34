package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alienbuster/alienbuster-go/cmd/alert"
	"github.com/alienbuster/alienbuster-go/cmd/reconcile"
	"github.com/alienbuster/alienbuster-go/cmd/recompute"
	"github.com/alienbuster/alienbuster-go/cmd/report"
	"github.com/alienbuster/alienbuster-go/cmd/review"
	"github.com/alienbuster/alienbuster-go/cmd/sweep"
	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "alienbuster",
		Short: "AlienBuster outbreak-response CLI",
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		sweep.Command(settings),
		recompute.Command(settings),
		reconcile.Command(settings),
		report.Command(settings),
		review.Command(settings),
		alert.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if settings.Debug {
			logging.SetLevel(slog.LevelDebug)
		}
		return nil
	}

	return rootCmd
}

// setupFlags configures the global flags for the root command.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		logging.Error("error binding flags", "error", err)
	}
}
