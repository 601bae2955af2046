package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/safarihq/sikukuu/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sikukuu",
	Short: "Kenya public holiday ingestion pipeline",
	Long:  "Merges the Nager.Date baseline feed with holiday announcements scraped from Kenyan news sites, applies the Sunday observed-date rule, and serves the result over a read API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
