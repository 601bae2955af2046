package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/safarihq/sikukuu/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it,
// which is what the transaction tests run against.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS holidays (
	id             TEXT PRIMARY KEY,
	country_code   TEXT NOT NULL,
	date           DATE NOT NULL,
	observed_date  DATE NOT NULL,
	name           TEXT NOT NULL,
	kind           TEXT NOT NULL,
	source         TEXT NOT NULL,
	source_url     TEXT,
	published_date DATE,
	is_active      BOOLEAN NOT NULL DEFAULT TRUE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT uq_holidays_natural UNIQUE (country_code, date, name, kind)
);

CREATE INDEX IF NOT EXISTS idx_holidays_observed ON holidays(country_code, observed_date);
CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(country_code, date);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const recordColumns = `id, country_code, date, observed_date, name, kind, source, COALESCE(source_url, ''), published_date, is_active`

func scanRecord(row pgx.Row) (*model.Record, error) {
	var rec model.Record
	err := row.Scan(
		&rec.ID, &rec.CountryCode, &rec.Date, &rec.ObservedDate,
		&rec.Name, &rec.Kind, &rec.Source, &rec.SourceURL,
		&rec.PublishedDate, &rec.IsActive,
	)
	if err != nil {
		return nil, err
	}
	rec.Date = model.Day(rec.Date)
	rec.ObservedDate = model.Day(rec.ObservedDate)
	if rec.PublishedDate != nil {
		p := model.Day(*rec.PublishedDate)
		rec.PublishedDate = &p
	}
	return &rec, nil
}

func (s *PostgresStore) ListHolidays(ctx context.Context, countryCode string, f Filter) ([]model.Record, error) {
	from, to := f.Range()
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM holidays
		 WHERE country_code = $1 AND is_active AND observed_date BETWEEN $2 AND $3
		 ORDER BY observed_date ASC, name ASC`,
		countryCode, from, to,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list holidays")
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan holiday")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list holidays rows")
}

func (s *PostgresStore) FindByObservedDate(ctx context.Context, countryCode string, date time.Time) (*model.Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM holidays
		 WHERE country_code = $1 AND is_active AND observed_date = $2
		 ORDER BY name ASC LIMIT 1`,
		countryCode, model.Day(date),
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: find by observed date")
	}
	return rec, nil
}

func (s *PostgresStore) YearSummary(ctx context.Context, countryCode string, year int) (map[model.Kind]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT kind, COUNT(*) FROM holidays
		 WHERE country_code = $1 AND is_active AND date BETWEEN $2 AND $3
		 GROUP BY kind`,
		countryCode, model.Date(year, time.January, 1), model.Date(year, time.December, 31),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: year summary")
	}
	defer rows.Close()

	out := make(map[model.Kind]int)
	for rows.Next() {
		var kind model.Kind
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan summary")
		}
		out[kind] = count
	}
	return out, eris.Wrap(rows.Err(), "postgres: year summary rows")
}

// Begin opens a reconcile transaction.
func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin")
	}
	return &postgresTx{tx: tx}, nil
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) FindByNaturalKey(ctx context.Context, key model.NaturalKey) (*model.Record, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM holidays
		 WHERE country_code = $1 AND date = $2 AND name = $3 AND kind = $4`,
		key.CountryCode, model.Day(key.Date), key.Name, string(key.Kind),
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: find by natural key")
	}
	return rec, nil
}

func (t *postgresTx) Insert(ctx context.Context, rec *model.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO holidays
			(id, country_code, date, observed_date, name, kind, source, source_url, published_date, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)`,
		rec.ID, rec.CountryCode, model.Day(rec.Date), model.Day(rec.ObservedDate),
		rec.Name, string(rec.Kind), rec.Source, rec.SourceURL, rec.PublishedDate, rec.IsActive,
	)
	return eris.Wrapf(err, "postgres: insert holiday %s", rec.Name)
}

func (t *postgresTx) Update(ctx context.Context, rec *model.Record) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE holidays
		 SET observed_date = $1, source = $2, source_url = NULLIF($3, ''), published_date = $4, updated_at = now()
		 WHERE id = $5`,
		model.Day(rec.ObservedDate), rec.Source, rec.SourceURL, rec.PublishedDate, rec.ID,
	)
	return eris.Wrapf(err, "postgres: update holiday %s", rec.ID)
}

func (t *postgresTx) Commit(ctx context.Context) error {
	return eris.Wrap(t.tx.Commit(ctx), "postgres: commit")
}

func (t *postgresTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return eris.Wrap(err, "postgres: rollback")
	}
	return nil
}
