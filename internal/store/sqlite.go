package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/safarihq/sikukuu/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Dates are stored as
// ISO-8601 text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// A single writer connection avoids SQLITE_BUSY under the pool and keeps
	// :memory: databases on one connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS holidays (
	id             TEXT PRIMARY KEY,
	country_code   TEXT NOT NULL,
	date           TEXT NOT NULL,
	observed_date  TEXT NOT NULL,
	name           TEXT NOT NULL,
	kind           TEXT NOT NULL,
	source         TEXT NOT NULL,
	source_url     TEXT,
	published_date TEXT,
	is_active      INTEGER NOT NULL DEFAULT 1,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (country_code, date, name, kind)
);

CREATE INDEX IF NOT EXISTS idx_holidays_observed ON holidays(country_code, observed_date);
CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(country_code, date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const dateLayout = "2006-01-02"

func fmtDate(t time.Time) string {
	return model.Day(t).Format(dateLayout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (*model.Record, error) {
	var rec model.Record
	var date, observed string
	var sourceURL, published sql.NullString
	err := row.Scan(
		&rec.ID, &rec.CountryCode, &date, &observed,
		&rec.Name, &rec.Kind, &rec.Source, &sourceURL,
		&published, &rec.IsActive,
	)
	if err != nil {
		return nil, err
	}
	if rec.Date, err = time.ParseInLocation(dateLayout, date, time.UTC); err != nil {
		return nil, eris.Wrapf(err, "sqlite: bad date %q", date)
	}
	if rec.ObservedDate, err = time.ParseInLocation(dateLayout, observed, time.UTC); err != nil {
		return nil, eris.Wrapf(err, "sqlite: bad observed date %q", observed)
	}
	rec.SourceURL = sourceURL.String
	if published.Valid {
		p, err := time.ParseInLocation(dateLayout, published.String, time.UTC)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: bad published date %q", published.String)
		}
		rec.PublishedDate = &p
	}
	return &rec, nil
}

const sqliteRecordColumns = `id, country_code, date, observed_date, name, kind, source, source_url, published_date, is_active`

func (s *SQLiteStore) ListHolidays(ctx context.Context, countryCode string, f Filter) ([]model.Record, error) {
	from, to := f.Range()
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteRecordColumns+` FROM holidays
		 WHERE country_code = ? AND is_active = 1 AND observed_date BETWEEN ? AND ?
		 ORDER BY observed_date ASC, name ASC`,
		countryCode, fmtDate(from), fmtDate(to),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list holidays")
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan holiday")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list holidays rows")
}

func (s *SQLiteStore) FindByObservedDate(ctx context.Context, countryCode string, date time.Time) (*model.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteRecordColumns+` FROM holidays
		 WHERE country_code = ? AND is_active = 1 AND observed_date = ?
		 ORDER BY name ASC LIMIT 1`,
		countryCode, fmtDate(date),
	)
	rec, err := scanSQLiteRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: find by observed date")
	}
	return rec, nil
}

func (s *SQLiteStore) YearSummary(ctx context.Context, countryCode string, year int) (map[model.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM holidays
		 WHERE country_code = ? AND is_active = 1 AND date BETWEEN ? AND ?
		 GROUP BY kind`,
		countryCode, fmtDate(model.Date(year, time.January, 1)), fmtDate(model.Date(year, time.December, 31)),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: year summary")
	}
	defer rows.Close()

	out := make(map[model.Kind]int)
	for rows.Next() {
		var kind model.Kind
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan summary")
		}
		out[kind] = count
	}
	return out, eris.Wrap(rows.Err(), "sqlite: year summary rows")
}

// Begin opens a reconcile transaction.
func (s *SQLiteStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	return &sqliteTx{tx: tx}, nil
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) FindByNaturalKey(ctx context.Context, key model.NaturalKey) (*model.Record, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+sqliteRecordColumns+` FROM holidays
		 WHERE country_code = ? AND date = ? AND name = ? AND kind = ?`,
		key.CountryCode, fmtDate(key.Date), key.Name, string(key.Kind),
	)
	rec, err := scanSQLiteRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: find by natural key")
	}
	return rec, nil
}

func (t *sqliteTx) Insert(ctx context.Context, rec *model.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	var published any
	if rec.PublishedDate != nil {
		published = fmtDate(*rec.PublishedDate)
	}
	var sourceURL any
	if rec.SourceURL != "" {
		sourceURL = rec.SourceURL
	}
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO holidays
			(id, country_code, date, observed_date, name, kind, source, source_url, published_date, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CountryCode, fmtDate(rec.Date), fmtDate(rec.ObservedDate),
		rec.Name, string(rec.Kind), rec.Source, sourceURL, published, rec.IsActive,
	)
	return eris.Wrapf(err, "sqlite: insert holiday %s", rec.Name)
}

func (t *sqliteTx) Update(ctx context.Context, rec *model.Record) error {
	var published any
	if rec.PublishedDate != nil {
		published = fmtDate(*rec.PublishedDate)
	}
	var sourceURL any
	if rec.SourceURL != "" {
		sourceURL = rec.SourceURL
	}
	_, err := t.tx.ExecContext(ctx,
		`UPDATE holidays
		 SET observed_date = ?, source = ?, source_url = ?, published_date = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		fmtDate(rec.ObservedDate), rec.Source, sourceURL, published, rec.ID,
	)
	return eris.Wrapf(err, "sqlite: update holiday %s", rec.ID)
}

func (t *sqliteTx) Commit(ctx context.Context) error {
	return eris.Wrap(t.tx.Commit(), "sqlite: commit")
}

func (t *sqliteTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return eris.Wrap(err, "sqlite: rollback")
	}
	return nil
}
