// Package sweep implements the long-running recompute/reconcile loop.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/jobs"
)

// Command creates the sweep command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the outbreak sweep loop",
		Long:  "Periodically recompute outbreak clusters and reconcile remediation tasks until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the sweep command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().IntVar(&settings.Dispatch.SweepInterval, "interval", viper.GetInt("dispatch.sweepinterval"), "Seconds between sweep passes")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}

func runSweep(settings *conf.Settings) error {
	runner, err := jobs.New(settings)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
