// Package review implements the expert review commands: listing the queue
// and applying a decision to a report.
package review

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
	"github.com/alienbuster/alienbuster-go/internal/reputation"
	"github.com/alienbuster/alienbuster-go/internal/review"
)

// Command creates the review command with its queue and decide subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Expert review of citizen reports",
	}
	cmd.AddCommand(queueCommand(settings), decideCommand(settings))
	return cmd
}

func queueCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List reports awaiting expert review",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := buildService(settings)
			if err != nil {
				return err
			}
			defer closeStore()

			reports, err := svc.Queue(context.Background())
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("review queue is empty")
				return nil
			}
			for i := range reports {
				r := &reports[i]
				fmt.Printf("#%d  %-24s risk %.2f  status %-14s  %.4f, %.4f\n",
					r.ID, r.Species, r.FusedRisk, r.Status, r.Latitude, r.Longitude)
			}
			return nil
		},
	}
}

func decideCommand(settings *conf.Settings) *cobra.Command {
	var (
		reportID uint
		decision string
		reviewer string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Apply a review decision to a report",
		Long:  "Record a verified, rejected or needs_more_info decision and move the report to the matching status.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := buildService(settings)
			if err != nil {
				return err
			}
			defer closeStore()

			report, err := svc.ApplyDecision(context.Background(), review.Decision{
				ReportID:    reportID,
				ExpertEmail: reviewer,
				Decision:    decision,
				Notes:       notes,
			})
			if err != nil {
				return err
			}
			fmt.Printf("report #%d is now %s\n", report.ID, report.Status)
			return nil
		},
	}

	cmd.Flags().UintVar(&reportID, "report", 0, "Report ID to decide on")
	cmd.Flags().StringVar(&decision, "decision", "", "Decision: verified, rejected or needs_more_info")
	cmd.Flags().StringVar(&reviewer, "reviewer", viper.GetString("review.reviewer"), "Reviewer email")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional decision notes")
	if err := cmd.MarkFlagRequired("report"); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.MarkFlagRequired("decision"); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func buildService(settings *conf.Settings) (*review.Service, func(), error) {
	if err := conf.ValidateSettings(settings); err != nil {
		return nil, nil, err
	}
	store := datastore.New(settings)
	if store == nil {
		return nil, nil, fmt.Errorf("no database output enabled")
	}
	if err := store.Open(); err != nil {
		return nil, nil, err
	}
	svc := review.NewService(store, settings.Review, reputation.NewProvider(store))
	return svc, func() { _ = store.Close() }, nil
}
