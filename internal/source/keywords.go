package source

import "strings"

// announcementKeywords is the precision filter over scraped headlines: a
// title must contain at least one of these to be treated as a holiday
// announcement. Tune here, not inline at call sites.
var announcementKeywords = []string{
	"declare",
	"public holiday",
	"gazette",
	"holiday",
}

// IsAnnouncement reports whether a headline looks like a holiday
// announcement. Matching is case-insensitive substring containment.
func IsAnnouncement(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range announcementKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
