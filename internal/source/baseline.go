package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/safarihq/sikukuu/internal/fetcher"
	"github.com/safarihq/sikukuu/internal/model"
)

// BaselineName identifies candidates originating from the baseline feed.
const BaselineName = "nager.date"

// DefaultBaselineURL is the Nager.Date public-holidays API.
const DefaultBaselineURL = "https://date.nager.at/api/v3/PublicHolidays"

// Baseline fetches the structured statutory-holiday feed for a year.
type Baseline struct {
	fetcher     fetcher.Fetcher
	baseURL     string
	countryCode string
}

// NewBaseline creates a baseline source for the given country.
func NewBaseline(f fetcher.Fetcher, baseURL, countryCode string) *Baseline {
	if baseURL == "" {
		baseURL = DefaultBaselineURL
	}
	return &Baseline{fetcher: f, baseURL: baseURL, countryCode: countryCode}
}

// nagerHoliday is one entry of the Nager.Date response.
type nagerHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// Fetch returns the baseline candidates for a year. Every entry maps to a
// public-kind candidate named by the localized name, falling back to the
// generic one.
func (b *Baseline) Fetch(ctx context.Context, year int) ([]model.Candidate, error) {
	url := fmt.Sprintf("%s/%d/%s", b.baseURL, year, b.countryCode)

	resp, err := b.fetcher.Get(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "baseline: fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("baseline: unexpected status %d from %s", resp.StatusCode, url)
	}

	var entries []nagerHoliday
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, eris.Wrap(err, "baseline: decode response")
	}

	candidates := make([]model.Candidate, 0, len(entries))
	for _, e := range entries {
		d, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			return nil, eris.Wrapf(err, "baseline: malformed date %q", e.Date)
		}
		name := e.LocalName
		if name == "" {
			name = e.Name
		}
		candidates = append(candidates, model.Candidate{
			Date:      model.Day(d),
			Name:      name,
			Kind:      model.KindPublic,
			Source:    BaselineName,
			SourceURL: url,
		})
	}
	return candidates, nil
}
