// Package reconcile implements the one-shot task reconcile command.
package reconcile

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/jobs"
)

// Command creates the reconcile command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one task reconcile pass",
		Long:  "Create remediation tasks for qualifying outbreaks that have none, then exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := jobs.New(settings)
			if err != nil {
				return err
			}
			defer runner.Close()

			created, err := runner.Reconcile(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("reconcile complete: %d tasks created\n", created)
			return nil
		},
	}
}
