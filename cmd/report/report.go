// Package report implements the report submission and nearby-listing commands.
package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
	"github.com/alienbuster/alienbuster-go/internal/density"
	"github.com/alienbuster/alienbuster-go/internal/fusion"
	"github.com/alienbuster/alienbuster-go/internal/geo"
	"github.com/alienbuster/alienbuster-go/internal/ingest"
	"github.com/alienbuster/alienbuster-go/internal/observability"
	"github.com/alienbuster/alienbuster-go/internal/outbreak"
	"github.com/alienbuster/alienbuster-go/internal/reputation"
)

// Command creates the report command with its submit and nearby subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Citizen report operations",
	}
	cmd.AddCommand(submitCommand(settings), nearbyCommand(settings))
	return cmd
}

func submitCommand(settings *conf.Settings) *cobra.Command {
	var sub ingest.Submission
	var tag string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a citizen report",
		Long:  "Score and persist a citizen report, using the classifier output supplied on the command line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub.SpeciesTag = fusion.SpeciesTag(tag)

			svc, closeStore, err := buildService(settings)
			if err != nil {
				return err
			}
			defer closeStore()

			created, err := svc.CreateReport(context.Background(), sub)
			if err != nil {
				return err
			}
			fmt.Printf("report #%d created: risk %.2f, status %s\n", created.ID, created.FusedRisk, created.Status)
			fmt.Printf("recommended action: %s\n", created.RecommendedAction)
			return nil
		},
	}

	cmd.Flags().Float64Var(&sub.Latitude, "lat", 0, "Report latitude")
	cmd.Flags().Float64Var(&sub.Longitude, "lon", 0, "Report longitude")
	cmd.Flags().StringVar(&sub.Species, "species", "", "Classified species name")
	cmd.Flags().StringVar(&tag, "tag", string(fusion.TagUnknown), "Species tag: invasive, native, non-target or unknown")
	cmd.Flags().Float64Var(&sub.MLConfidence, "confidence", 0, "Classifier confidence in [0,1]")
	cmd.Flags().BoolVar(&sub.IsInvasive, "invasive", false, "Classifier flagged the species as invasive")
	cmd.Flags().StringVar(&sub.UserID, "user", "", "Reporting user ID")
	cmd.Flags().StringVar(&sub.PhotoURL, "photo", "", "Photo URL, if a photo was attached")
	cmd.Flags().StringVar(&sub.Notes, "notes", "", "Free-form notes")
	for _, flag := range []string{"lat", "lon", "species", "confidence"} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			fmt.Printf("error setting up flags: %v\n", err)
			os.Exit(1)
		}
	}

	return cmd
}

func nearbyCommand(settings *conf.Settings) *cobra.Command {
	var (
		lat      float64
		lon      float64
		radiusKm float64
		days     int
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List recent reports around a point",
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

			rect := geo.RectAround(lat, lon, radiusKm)
			cutoff := time.Now().AddDate(0, 0, -days)
			reports, err := store.ReportsNearby(context.Background(), rect, cutoff, limit)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("no reports nearby")
				return nil
			}
			for i := range reports {
				r := &reports[i]
				fmt.Printf("#%d  %-24s risk %.2f  status %-14s  %.4f, %.4f  %s\n",
					r.ID, r.Species, r.FusedRisk, r.Status, r.Latitude, r.Longitude,
					r.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Center latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Center longitude")
	cmd.Flags().Float64Var(&radiusKm, "radius", 5.0, "Search radius in kilometers")
	cmd.Flags().IntVar(&days, "days", 30, "Look-back window in days")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of reports")
	for _, flag := range []string{"lat", "lon"} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			fmt.Printf("error setting up flags: %v\n", err)
			os.Exit(1)
		}
	}

	return cmd
}

func buildService(settings *conf.Settings) (*ingest.Service, func(), error) {
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

	metrics, err := observability.NewMetrics()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	scorer := density.NewScorer(store, settings.Density, metrics)
	rep := reputation.NewProvider(store)
	manager := outbreak.NewManager(store, settings.Outbreak, metrics)
	svc := ingest.NewService(store, settings, scorer, rep, manager, metrics)
	return svc, func() { _ = store.Close() }, nil
}
