// Package ingest orchestrates a holiday ingestion run: fetch baseline and
// announcement candidates, compute observed dates over the merged set, and
// reconcile everything into storage in one transaction.
package ingest

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/safarihq/sikukuu/internal/metrics"
	"github.com/safarihq/sikukuu/internal/model"
	"github.com/safarihq/sikukuu/internal/rule"
	"github.com/safarihq/sikukuu/internal/source"
	"github.com/safarihq/sikukuu/internal/store"
)

// Baseline fetches the structured holiday feed for a year.
type Baseline interface {
	Fetch(ctx context.Context, year int) ([]model.Candidate, error)
}

// Announcements scrapes the configured news sources for a year.
type Announcements interface {
	Fetch(ctx context.Context, year int, sources []source.Config) ([]model.Candidate, []model.Outcome)
}

// Report summarizes one ingestion run. Processed counts every candidate that
// went through reconciliation, not the number of rows changed.
type Report struct {
	Year          int                      `json:"year"`
	Processed     int                      `json:"processed"`
	Baseline      int                      `json:"baseline"`
	Announcements int                      `json:"announcements"`
	Inserted      int                      `json:"inserted"`
	Updated       int                      `json:"updated"`
	Skipped       map[model.SkipReason]int `json:"skipped,omitempty"`
}

// Coordinator runs the ingestion pipeline.
type Coordinator struct {
	baseline    Baseline
	scraper     Announcements
	store       store.Store
	metrics     *metrics.Collector
	countryCode string
	sources     []source.Config
}

// New creates a Coordinator.
func New(
	baseline Baseline,
	scraper Announcements,
	st store.Store,
	collector *metrics.Collector,
	countryCode string,
	sources []source.Config,
) *Coordinator {
	return &Coordinator{
		baseline:    baseline,
		scraper:     scraper,
		store:       st,
		metrics:     collector,
		countryCode: countryCode,
		sources:     sources,
	}
}

// Run ingests holidays for one year. Source failures degrade the result set
// and are only logged; a storage failure is the single fatal condition and
// leaves the database untouched.
func (c *Coordinator) Run(ctx context.Context, year int, includeAnnouncements bool) (*Report, error) {
	start := time.Now()
	log := zap.L().With(zap.Int("year", year))
	log.Info("ingest: starting run", zap.Bool("announcements", includeAnnouncements))

	var (
		baseline      []model.Candidate
		announcements []model.Candidate
		outcomes      []model.Outcome
	)

	// The fetches are independent network calls; run them concurrently and
	// merge afterwards. Neither is allowed to fail the group.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cands, err := c.baseline.Fetch(gctx, year)
		if err != nil {
			log.Warn("ingest: baseline unavailable", zap.Error(err))
			return nil
		}
		baseline = cands
		return nil
	})
	if includeAnnouncements {
		g.Go(func() error {
			announcements, outcomes = c.scraper.Fetch(gctx, year, c.sources)
			return nil
		})
	}
	_ = g.Wait()

	merged := make([]model.Candidate, 0, len(baseline)+len(announcements))
	merged = append(merged, baseline...)
	merged = append(merged, announcements...)

	report := &Report{
		Year:          year,
		Processed:     len(merged),
		Baseline:      len(baseline),
		Announcements: len(announcements),
		Skipped:       make(map[model.SkipReason]int),
	}
	for _, o := range outcomes {
		if !o.Ok() {
			report.Skipped[o.Skip]++
			c.metrics.RecordSkip(string(o.Skip))
		}
	}
	for _, cand := range merged {
		c.metrics.RecordCandidate(string(cand.Kind))
	}

	// The observed-date rule runs over this run's merged date set so that
	// consecutive holidays cascade together.
	dates := rule.NewDateSet(merged)

	if err := c.reconcile(ctx, merged, dates, report); err != nil {
		c.metrics.RecordRun("failed", time.Since(start))
		return nil, err
	}

	c.metrics.RecordRun("ok", time.Since(start))
	log.Info("ingest: run complete",
		zap.Int("processed", report.Processed),
		zap.Int("inserted", report.Inserted),
		zap.Int("updated", report.Updated),
		zap.Duration("took", time.Since(start)),
	)
	return report, nil
}

// reconcile upserts every candidate by natural key inside one transaction.
// Either the whole run lands or none of it does.
func (c *Coordinator) reconcile(ctx context.Context, merged []model.Candidate, dates rule.DateSet, report *Report) error {
	tx, err := c.store.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "ingest: begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, cand := range merged {
		observed := rule.ObservedDate(cand.Date, dates.Contains)

		existing, err := tx.FindByNaturalKey(ctx, cand.Key(c.countryCode))
		if err != nil {
			return eris.Wrap(err, "ingest: find existing record")
		}

		if existing != nil {
			existing.ObservedDate = observed
			existing.Source = cand.Source
			existing.SourceURL = cand.SourceURL
			existing.PublishedDate = cand.PublishedDate
			if err := tx.Update(ctx, existing); err != nil {
				return eris.Wrap(err, "ingest: update record")
			}
			report.Updated++
			c.metrics.RecordReconcile("update")
			continue
		}

		rec := &model.Record{
			CountryCode:   c.countryCode,
			Date:          model.Day(cand.Date),
			ObservedDate:  observed,
			Name:          cand.Name,
			Kind:          cand.Kind,
			Source:        cand.Source,
			SourceURL:     cand.SourceURL,
			PublishedDate: cand.PublishedDate,
			IsActive:      true,
		}
		if err := tx.Insert(ctx, rec); err != nil {
			return eris.Wrap(err, "ingest: insert record")
		}
		report.Inserted++
		c.metrics.RecordReconcile("insert")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "ingest: commit run")
	}
	return nil
}
