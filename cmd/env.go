package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/safarihq/sikukuu/internal/config"
	"github.com/safarihq/sikukuu/internal/fetcher"
	"github.com/safarihq/sikukuu/internal/ingest"
	"github.com/safarihq/sikukuu/internal/metrics"
	"github.com/safarihq/sikukuu/internal/source"
	"github.com/safarihq/sikukuu/internal/store"
)

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func loadSources(cfg *config.Config) ([]source.Config, error) {
	if cfg.Scrape.SourcesFile == "" {
		return source.DefaultSources(), nil
	}
	sources, err := source.LoadSources(cfg.Scrape.SourcesFile)
	if err != nil {
		return nil, err
	}
	zap.L().Info("loaded source registry",
		zap.String("file", cfg.Scrape.SourcesFile),
		zap.Int("sources", len(sources)),
	)
	return sources, nil
}

func buildCoordinator(cfg *config.Config, st store.Store, sources []source.Config) *ingest.Coordinator {
	baselineFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:    time.Duration(cfg.Baseline.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Scrape.MaxRetries,
	})
	scrapeFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Scrape.UserAgent,
		Timeout:    time.Duration(cfg.Scrape.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Scrape.MaxRetries,
		HostRate:   rate.Limit(cfg.Scrape.HostRate),
	})

	baseline := source.NewBaseline(baselineFetcher, cfg.Baseline.BaseURL, cfg.Country.Code)
	scraper := source.NewScraper(scrapeFetcher)

	return ingest.New(baseline, scraper, st, metrics.NewDefault(), cfg.Country.Code, sources)
}
