package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safarihq/sikukuu/internal/metrics"
	"github.com/safarihq/sikukuu/internal/model"
	"github.com/safarihq/sikukuu/internal/source"
	"github.com/safarihq/sikukuu/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type stubBaseline struct {
	cands []model.Candidate
	err   error
}

func (s stubBaseline) Fetch(ctx context.Context, year int) ([]model.Candidate, error) {
	return s.cands, s.err
}

type stubAnnouncements struct {
	cands    []model.Candidate
	outcomes []model.Outcome
}

func (s stubAnnouncements) Fetch(ctx context.Context, year int, sources []source.Config) ([]model.Candidate, []model.Outcome) {
	return s.cands, s.outcomes
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newCoordinator(t *testing.T, b Baseline, a Announcements, st store.Store) *Coordinator {
	t.Helper()
	collector := metrics.NewCollector(prometheus.NewRegistry())
	return New(b, a, st, collector, "KE", nil)
}

func baselineCandidate(date time.Time, name string) model.Candidate {
	return model.Candidate{
		Date:      date,
		Name:      name,
		Kind:      model.KindPublic,
		Source:    "nager.date",
		SourceURL: "https://date.nager.at/api/v3/PublicHolidays/2024/KE",
	}
}

func TestRun_BaselineOnly(t *testing.T) {
	st := newTestStore(t)
	// 2024-01-01 is a Monday; the observed date stays put.
	b := stubBaseline{cands: []model.Candidate{
		baselineCandidate(model.Date(2024, time.January, 1), "New Year's Day"),
	}}
	c := newCoordinator(t, b, stubAnnouncements{}, st)

	report, err := c.Run(context.Background(), 2024, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Baseline)
	assert.Equal(t, 0, report.Announcements)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 0, report.Updated)

	got, err := st.FindByObservedDate(context.Background(), "KE", model.Date(2024, time.January, 1))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "New Year's Day", got.Name)
	assert.Equal(t, got.Date, got.ObservedDate)
	assert.True(t, got.IsActive)
}

func TestRun_Idempotent(t *testing.T) {
	st := newTestStore(t)
	b := stubBaseline{cands: []model.Candidate{
		baselineCandidate(model.Date(2024, time.June, 1), "Madaraka Day"),
		baselineCandidate(model.Date(2024, time.December, 25), "Christmas Day"),
	}}
	c := newCoordinator(t, b, stubAnnouncements{}, st)
	ctx := context.Background()

	first, err := c.Run(ctx, 2024, false)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)

	second, err := c.Run(ctx, 2024, false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Updated)

	holidays, err := st.ListHolidays(ctx, "KE", store.Filter{Year: 2024})
	require.NoError(t, err)
	assert.Len(t, holidays, 2)
}

func TestRun_SundayObservedOnMonday(t *testing.T) {
	st := newTestStore(t)
	// 2024-06-02 is a Sunday.
	b := stubBaseline{cands: []model.Candidate{
		baselineCandidate(model.Date(2024, time.June, 2), "Eid al-Adha"),
	}}
	c := newCoordinator(t, b, stubAnnouncements{}, st)

	_, err := c.Run(context.Background(), 2024, true)
	require.NoError(t, err)

	got, err := st.FindByObservedDate(context.Background(), "KE", model.Date(2024, time.June, 3))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.Date(2024, time.June, 2), got.Date)
}

func TestRun_CascadeAcrossMergedSources(t *testing.T) {
	st := newTestStore(t)
	// Baseline holds Sunday 2024-06-02; an announcement already occupies the
	// Monday, so the Sunday holiday is observed on Tuesday.
	b := stubBaseline{cands: []model.Candidate{
		baselineCandidate(model.Date(2024, time.June, 2), "Eid al-Adha"),
	}}
	a := stubAnnouncements{cands: []model.Candidate{
		{
			Date:      model.Date(2024, time.June, 3),
			Name:      "Kenya declares June 3 a public holiday",
			Kind:      model.KindSpecial,
			Source:    "ntv kenya",
			SourceURL: "https://ntvkenya.co.ke/story/1",
		},
	}}
	c := newCoordinator(t, b, a, st)

	report, err := c.Run(context.Background(), 2024, true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, report.Inserted)

	got, err := st.FindByObservedDate(context.Background(), "KE", model.Date(2024, time.June, 4))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Eid al-Adha", got.Name)
}

func TestRun_AnnouncementsSkippedWhenDisabled(t *testing.T) {
	st := newTestStore(t)
	a := stubAnnouncements{cands: []model.Candidate{
		{
			Date:   model.Date(2024, time.October, 10),
			Name:   "Kenya declares Oct 10 a public holiday",
			Kind:   model.KindSpecial,
			Source: "ntv kenya",
		},
	}}
	c := newCoordinator(t, stubBaseline{}, a, st)

	report, err := c.Run(context.Background(), 2024, false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 0, report.Announcements)
}

func TestRun_BaselineFailureDegrades(t *testing.T) {
	st := newTestStore(t)
	b := stubBaseline{err: eris.New("upstream down")}
	a := stubAnnouncements{
		cands: []model.Candidate{
			{
				Date:   model.Date(2024, time.October, 10),
				Name:   "Kenya declares Oct 10 a public holiday",
				Kind:   model.KindSpecial,
				Source: "ntv kenya",
			},
		},
		outcomes: []model.Outcome{
			{Skip: model.SkipNoDateToken, Title: "Holiday gazette notice"},
			{Skip: model.SkipNotRelevant, Title: "Harambee Stars win again"},
		},
	}
	c := newCoordinator(t, b, a, st)

	report, err := c.Run(context.Background(), 2024, true)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Baseline)
	assert.Equal(t, 1, report.Announcements)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Skipped[model.SkipNoDateToken])
	assert.Equal(t, 1, report.Skipped[model.SkipNotRelevant])
}

type failCommitStore struct {
	store.Store
}

func (f failCommitStore) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := f.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return failCommitTx{Tx: tx}, nil
}

type failCommitTx struct {
	store.Tx
}

func (failCommitTx) Commit(ctx context.Context) error {
	return eris.New("disk full")
}

func TestRun_CommitFailureIsFatal(t *testing.T) {
	st := newTestStore(t)
	b := stubBaseline{cands: []model.Candidate{
		baselineCandidate(model.Date(2024, time.January, 1), "New Year's Day"),
	}}
	c := newCoordinator(t, b, stubAnnouncements{}, failCommitStore{Store: st})

	_, err := c.Run(context.Background(), 2024, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit")

	// The rollback left nothing behind.
	holidays, err := st.ListHolidays(context.Background(), "KE", store.Filter{Year: 2024})
	require.NoError(t, err)
	assert.Empty(t, holidays)
}
