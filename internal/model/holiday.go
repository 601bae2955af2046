package model

import "time"

// Kind classifies how a holiday came into force.
type Kind string

const (
	// KindPublic is a statutory holiday from the baseline feed.
	KindPublic Kind = "public"
	// KindSpecial is an ad-hoc holiday declared via news/gazette.
	KindSpecial Kind = "special"
)

// Candidate is a holiday observed by a source during a single ingestion run.
// Candidates are immutable once produced and discarded after reconciliation.
type Candidate struct {
	Date          time.Time  `json:"date"`
	Name          string     `json:"name"`
	Kind          Kind       `json:"kind"`
	Source        string     `json:"source"`
	SourceURL     string     `json:"source_url,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
}

// Key returns the natural key a candidate reconciles under for the given country.
func (c Candidate) Key(countryCode string) NaturalKey {
	return NaturalKey{
		CountryCode: countryCode,
		Date:        c.Date,
		Name:        c.Name,
		Kind:        c.Kind,
	}
}

// NaturalKey is the business identity of a holiday record. It is unique across
// all records; storage enforces this with a unique constraint.
type NaturalKey struct {
	CountryCode string
	Date        time.Time
	Name        string
	Kind        Kind
}

// Record is a persisted holiday. Date, Name, Kind and CountryCode form the
// identity and never change after insert; ObservedDate, Source, SourceURL and
// PublishedDate are refreshed on every run that sees the same key.
type Record struct {
	ID            string     `json:"id"`
	CountryCode   string     `json:"country_code"`
	Date          time.Time  `json:"date"`
	ObservedDate  time.Time  `json:"observed_date"`
	Name          string     `json:"name"`
	Kind          Kind       `json:"kind"`
	Source        string     `json:"source"`
	SourceURL     string     `json:"source_url,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	IsActive      bool       `json:"is_active"`
}

// NaturalKey returns the record's natural key.
func (r *Record) NaturalKey() NaturalKey {
	return NaturalKey{
		CountryCode: r.CountryCode,
		Date:        r.Date,
		Name:        r.Name,
		Kind:        r.Kind,
	}
}

// Day truncates t to midnight UTC. All holiday dates are stored day-granular.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a day-granular UTC date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
