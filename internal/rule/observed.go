// Package rule implements the observed-date rule for holidays that collide
// with the designated rest day.
package rule

import (
	"time"

	"github.com/safarihq/sikukuu/internal/model"
)

// RestDay is the weekly non-working day that triggers date shifting.
const RestDay = time.Sunday

// DateSet is the set of holiday dates present in one ingestion run. It is
// built once from the merged candidate list and passed explicitly so the
// rule cascades over the run's own dates, not over storage.
type DateSet map[time.Time]struct{}

// NewDateSet collects the day-granular dates of the given candidates.
func NewDateSet(candidates []model.Candidate) DateSet {
	s := make(DateSet, len(candidates))
	for _, c := range candidates {
		s[model.Day(c.Date)] = struct{}{}
	}
	return s
}

// Contains reports whether d is a holiday date in this run.
func (s DateSet) Contains(d time.Time) bool {
	_, ok := s[model.Day(d)]
	return ok
}

// ObservedDate computes the date a holiday is actually recognized on.
// A holiday falling on the rest day moves forward to the first following
// day that is not itself a holiday, so consecutive holidays cascade:
// Sunday + holiday Monday observe on Tuesday. All other dates are returned
// unchanged; the rule never moves a date backward.
func ObservedDate(d time.Time, isHoliday func(time.Time) bool) time.Time {
	d = model.Day(d)
	if d.Weekday() != RestDay {
		return d
	}
	next := d.AddDate(0, 0, 1)
	for isHoliday(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
