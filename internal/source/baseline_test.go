package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safarihq/sikukuu/internal/fetcher"
	"github.com/safarihq/sikukuu/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testFetcher() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:    5 * time.Second,
		MaxRetries: 1,
		HostRate:   100,
	})
}

func TestBaseline_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2024/KE", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date":"2024-01-01","localName":"New Year's Day","name":"New Year's Day"},
			{"date":"2024-06-01","localName":"","name":"Madaraka Day"}
		]`))
	}))
	defer srv.Close()

	b := NewBaseline(testFetcher(), srv.URL, "KE")
	got, err := b.Fetch(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.Date(2024, time.January, 1), got[0].Date)
	assert.Equal(t, "New Year's Day", got[0].Name)
	assert.Equal(t, model.KindPublic, got[0].Kind)
	assert.Equal(t, BaselineName, got[0].Source)
	assert.Equal(t, srv.URL+"/2024/KE", got[0].SourceURL)
	assert.Nil(t, got[0].PublishedDate)

	// Empty localName falls back to the generic name.
	assert.Equal(t, "Madaraka Day", got[1].Name)
}

func TestBaseline_FetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b := NewBaseline(testFetcher(), srv.URL, "KE")
	_, err := b.Fetch(context.Background(), 2024)
	assert.Error(t, err)
}

func TestBaseline_FetchMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	b := NewBaseline(testFetcher(), srv.URL, "KE")
	_, err := b.Fetch(context.Background(), 2024)
	assert.Error(t, err)
}

func TestBaseline_Unreachable(t *testing.T) {
	b := NewBaseline(testFetcher(), "http://127.0.0.1:1", "KE")
	_, err := b.Fetch(context.Background(), 2024)
	assert.Error(t, err)
}
