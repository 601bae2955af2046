// Package extract pulls calendar dates out of free-text news headlines.
//
// Headlines are messy: dates show up as "Oct 10", "10th October", or just a
// bare year, wrapped in arbitrary prose. Extraction is best-effort and
// anchored to a target year; anything that cannot be resolved into that year
// is rejected rather than guessed at.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/safarihq/sikukuu/internal/model"
)

// Noise prefixes that news sites prepend to headlines ("Live: President
// declares..."). Stripped before parsing so they cannot confuse the tokenizer.
var noisePrefixRe = regexp.MustCompile(`(?i)^(Live|News|Video|Photos):\s*`)

const monthNames = `Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec`

var (
	dayMonthRe  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthNames + `)[a-z]*\b`)
	monthDayRe  = regexp.MustCompile(`(?i)\b(` + monthNames + `)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	monthOnlyRe = regexp.MustCompile(`(?i)\b(` + monthNames + `)[a-z]*\b`)
	yearRe      = regexp.MustCompile(`\b(\d{4})\b`)
)

var monthByAbbr = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// StripNoise removes known content-type prefixes from a headline.
func StripNoise(title string) string {
	return strings.TrimSpace(noisePrefixRe.ReplaceAllString(title, ""))
}

// HasDateToken reports whether the text contains something date-shaped: a day
// number next to a month-name abbreviation (either order), or a bare 4-digit
// year. Headlines without such a token are rejected outright.
func HasDateToken(text string) bool {
	return dayMonthRe.MatchString(text) ||
		monthDayRe.MatchString(text) ||
		yearRe.MatchString(text)
}

// Extract resolves a headline into a date within targetYear.
//
// Day, month and year are taken literally from the text when present; missing
// components default from targetYear-01-01, mirroring a fuzzy parse with that
// default. The result is accepted only when its resolved year equals
// targetYear, which guards month/day-only mentions against mis-anchoring.
//
// On success skip is empty. Otherwise the zero time is returned together with
// the skip reason; extraction never errors.
func Extract(title string, targetYear int) (date time.Time, skip model.SkipReason) {
	text := StripNoise(title)

	if !HasDateToken(text) {
		return time.Time{}, model.SkipNoDateToken
	}

	year := targetYear
	if m := yearRe.FindStringSubmatch(text); m != nil {
		y, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, model.SkipParseFailed
		}
		year = y
	}

	month := time.January
	day := 1
	switch {
	case dayMonthRe.MatchString(text):
		m := dayMonthRe.FindStringSubmatch(text)
		d, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, model.SkipParseFailed
		}
		day = d
		month = monthByAbbr[strings.ToLower(m[2])]
	case monthDayRe.MatchString(text):
		m := monthDayRe.FindStringSubmatch(text)
		d, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, model.SkipParseFailed
		}
		day = d
		month = monthByAbbr[strings.ToLower(m[1])]
	case monthOnlyRe.MatchString(text):
		// Year-gated headline like "holiday for Dec 2023": month is literal,
		// day defaults to the 1st.
		m := monthOnlyRe.FindStringSubmatch(text)
		month = monthByAbbr[strings.ToLower(m[1])]
	}

	d := model.Date(year, month, day)
	if d.Month() != month || d.Day() != day {
		// time.Date normalized an impossible day like "31 Feb".
		return time.Time{}, model.SkipParseFailed
	}
	if d.Year() != targetYear {
		return time.Time{}, model.SkipYearMismatch
	}
	return d, ""
}
