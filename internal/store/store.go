// Package store persists holiday records behind a driver-agnostic interface,
// with Postgres for deployments and SQLite for local use.
package store

import (
	"context"
	"time"

	"github.com/safarihq/sikukuu/internal/model"
)

// Filter selects holidays for read queries. Year takes precedence; otherwise
// From/To bound the observed date range inclusively.
type Filter struct {
	Year int
	From time.Time
	To   time.Time
}

// Range resolves the filter into an observed-date interval.
func (f Filter) Range() (time.Time, time.Time) {
	if f.Year != 0 {
		return model.Date(f.Year, time.January, 1), model.Date(f.Year, time.December, 31)
	}
	return f.From, f.To
}

// Store defines the persistence interface for the holiday pipeline.
type Store interface {
	// Begin opens the unit of work an ingestion run reconciles under.
	Begin(ctx context.Context) (Tx, error)

	// Reads (serving API).
	ListHolidays(ctx context.Context, countryCode string, f Filter) ([]model.Record, error)
	FindByObservedDate(ctx context.Context, countryCode string, date time.Time) (*model.Record, error)
	YearSummary(ctx context.Context, countryCode string, year int) (map[model.Kind]int, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Tx is the transactional unit of work for one ingestion run. All finds and
// writes of a run happen on the same transaction and land atomically at
// Commit; a failed commit leaves storage untouched.
type Tx interface {
	// FindByNaturalKey returns the record with the given identity, or nil.
	FindByNaturalKey(ctx context.Context, key model.NaturalKey) (*model.Record, error)

	// Insert adds a new record. The record's ID is assigned if empty.
	Insert(ctx context.Context, rec *model.Record) error

	// Update refreshes the mutable columns (observed date, source, source
	// URL, published date) of an existing record. Identity columns and
	// is_active are never written.
	Update(ctx context.Context, rec *model.Record) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
