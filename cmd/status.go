package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/safarihq/sikukuu/internal/model"
)

var statusYear int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored holiday counts for one year",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("store"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		year := statusYear
		if year == 0 {
			year = time.Now().UTC().Year()
		}

		summary, err := st.YearSummary(ctx, cfg.Country.Code, year)
		if err != nil {
			return err
		}

		fmt.Print(formatSummary(cfg.Country.Code, year, summary))
		return nil
	},
}

func formatSummary(countryCode string, year int, summary map[model.Kind]int) string {
	total := 0
	for _, n := range summary {
		total += n
	}
	out := fmt.Sprintf("%s %d: %d holidays\n", countryCode, year, total)
	for _, kind := range []model.Kind{model.KindPublic, model.KindSpecial} {
		if n, ok := summary[kind]; ok {
			out += fmt.Sprintf("  %s: %d\n", kind, n)
		}
	}
	return out
}

func init() {
	statusCmd.Flags().IntVar(&statusYear, "year", 0, "year to summarize (default: current year)")
	rootCmd.AddCommand(statusCmd)
}
