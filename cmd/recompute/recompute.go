// Package recompute implements the one-shot outbreak recompute command.
package recompute

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/jobs"
)

// Command creates the recompute command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Run one outbreak recompute pass",
		Long:  "Cluster recent high-risk reports and merge the clusters into the outbreak set, then exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := jobs.New(settings)
			if err != nil {
				return err
			}
			defer runner.Close()

			result, err := runner.Recompute(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("recompute complete: %d outbreaks created, %d updated\n", result.Created, result.Updated)
			return nil
		},
	}
}
