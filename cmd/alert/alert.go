// Package alert implements the alert preview and playbook commands.
package alert

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alienbuster/alienbuster-go/internal/alerts"
	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
)

// Command creates the alert command with its preview and playbook subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Agency alert previews and containment playbooks",
	}
	cmd.AddCommand(previewCommand(settings), playbookCommand())
	return cmd
}

func previewCommand(settings *conf.Settings) *cobra.Command {
	var reportID uint

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the agency alert for a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.ValidateSettings(settings); err != nil {
				return err
			}
			store := datastore.New(settings)
			if store == nil {
				return fmt.Errorf("no database output enabled")
			}
			if err := store.Open(); err != nil {
				return err
			}
			defer store.Close()

			report, err := store.GetReport(context.Background(), reportID)
			if err != nil {
				return err
			}

			msg, ok, err := alerts.NewService(settings.Alerts).Preview(report)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("report #%d risk %.2f is below the alert threshold %.2f\n",
					report.ID, report.FusedRisk, settings.Alerts.Threshold)
				return nil
			}

			fmt.Printf("To: %s\n", strings.Join(msg.Recipients, ", "))
			fmt.Printf("Subject: %s\n\n", msg.Subject)
			fmt.Println(msg.Body)
			return nil
		},
	}

	cmd.Flags().UintVar(&reportID, "report", 0, "Report ID to preview the alert for")
	if err := cmd.MarkFlagRequired("report"); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func playbookCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "playbook [plant|insect|aquatic]",
		Short: "Print the containment protocol for a species kind",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(alerts.Playbook(args[0]))
		},
	}
}
