package model

// SkipReason says why a scraped headline did not become a candidate.
type SkipReason string

const (
	// SkipNoDateToken means the title passed the keyword filter but carried
	// nothing date-shaped.
	SkipNoDateToken SkipReason = "no_date_token"
	// SkipParseFailed means a date token was present but could not be resolved.
	SkipParseFailed SkipReason = "parse_failed"
	// SkipYearMismatch means the resolved date fell outside the target year.
	SkipYearMismatch SkipReason = "year_mismatch"
	// SkipDuplicateDate means another source already reported the same date.
	SkipDuplicateDate SkipReason = "duplicate_date"
	// SkipNotRelevant means the title matched none of the announcement keywords.
	SkipNotRelevant SkipReason = "not_relevant"
)

// Outcome is the tagged per-headline result of announcement extraction:
// either a candidate or a skip with a reason, so runs can report how much
// source noise was rejected instead of losing it silently.
type Outcome struct {
	Candidate *Candidate
	Skip      SkipReason
	Title     string
}

// Ok reports whether the outcome carries a candidate.
func (o Outcome) Ok() bool {
	return o.Candidate != nil
}
