package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/safarihq/sikukuu/internal/ingest"
)

var (
	ingestYear          int
	ingestAnnouncements bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch and reconcile holidays for one year",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("ingest"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		sources, err := loadSources(cfg)
		if err != nil {
			return err
		}

		year := ingestYear
		if year == 0 {
			year = time.Now().UTC().Year()
		}

		report, err := buildCoordinator(cfg, st, sources).Run(ctx, year, ingestAnnouncements)
		if err != nil {
			zap.L().Error("ingest failed", zap.Error(err))
			return err
		}

		fmt.Print(formatReport(report))
		return nil
	},
}

func formatReport(r *ingest.Report) string {
	out := fmt.Sprintf(
		"year %d: %d candidates (%d baseline, %d announcements), %d inserted, %d updated\n",
		r.Year, r.Processed, r.Baseline, r.Announcements, r.Inserted, r.Updated,
	)
	for reason, count := range r.Skipped {
		out += fmt.Sprintf("  skipped %s: %d\n", reason, count)
	}
	return out
}

func init() {
	ingestCmd.Flags().IntVar(&ingestYear, "year", 0, "year to ingest (default: current year)")
	ingestCmd.Flags().BoolVar(&ingestAnnouncements, "announcements", true, "scrape news sources for holiday announcements")
	rootCmd.AddCommand(ingestCmd)
}
