package source

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/safarihq/sikukuu/internal/extract"
	"github.com/safarihq/sikukuu/internal/fetcher"
	"github.com/safarihq/sikukuu/internal/model"
)

// Scraper collects special-holiday candidates from configured news sources.
// Each source fails independently: an unreachable site or malformed page
// contributes zero candidates and never affects the others.
type Scraper struct {
	fetcher fetcher.Fetcher
}

// NewScraper creates an announcement scraper on top of the given fetcher.
func NewScraper(f fetcher.Fetcher) *Scraper {
	return &Scraper{fetcher: f}
}

// Fetch scrapes all configured sources for the target year. It returns the
// deduplicated candidates plus the per-headline outcomes, so callers can
// report how much noise was filtered. Two sources reporting the same date
// yield one candidate; the first source in iteration order wins.
func (s *Scraper) Fetch(ctx context.Context, year int, sources []Config) ([]model.Candidate, []model.Outcome) {
	var outcomes []model.Outcome
	for _, src := range sources {
		switch src.Type {
		case TypeRSS:
			outcomes = append(outcomes, s.fetchRSS(ctx, year, src)...)
		default:
			outcomes = append(outcomes, s.scrapeHTML(ctx, year, src)...)
		}
	}
	return dedupeByDate(outcomes)
}

// scrapeHTML fetches one news listing and walks its article containers.
func (s *Scraper) scrapeHTML(ctx context.Context, year int, src Config) []model.Outcome {
	log := zap.L().With(zap.String("source", src.Name), zap.String("url", src.URL))

	resp, err := s.fetcher.Get(ctx, src.URL)
	if err != nil {
		log.Warn("announce: source unreachable", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("announce: source returned non-200", zap.Int("status", resp.StatusCode))
		return nil
	}

	body, err := fetcher.BodyReader(resp)
	if err != nil {
		log.Warn("announce: cannot decode body", zap.Error(err))
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		log.Warn("announce: malformed html", zap.Error(err))
		return nil
	}

	var outcomes []model.Outcome
	doc.Find(src.Selectors.Container).Each(func(_ int, container *goquery.Selection) {
		titleNode := container.Find(src.Selectors.Title).First()
		if titleNode.Length() == 0 {
			return
		}
		title := strings.TrimSpace(titleNode.Text())
		if title == "" {
			return
		}
		link := src.URL
		if href, ok := titleNode.Attr("href"); ok && href != "" {
			link = resolveLink(src.URL, href)
		}
		outcomes = append(outcomes, classify(title, link, year, src, nil))
	})

	log.Debug("announce: source scraped", zap.Int("headlines", len(outcomes)))
	return outcomes
}

// classify turns one headline into a tagged outcome: a special-holiday
// candidate, or a skip with the reason it was rejected. published is the
// article's publication date when the source carries one (RSS only).
func classify(title, link string, year int, src Config, published *time.Time) model.Outcome {
	if !IsAnnouncement(title) {
		return model.Outcome{Skip: model.SkipNotRelevant, Title: title}
	}
	date, skip := extract.Extract(title, year)
	if skip != "" {
		return model.Outcome{Skip: skip, Title: title}
	}
	c := model.Candidate{
		Date: date,
		// The display name keeps the raw headline, noise prefixes included.
		Name:      title,
		Kind:      model.KindSpecial,
		Source:    strings.ToLower(src.Name),
		SourceURL: link,
	}
	if published != nil {
		p := model.Day(*published)
		c.PublishedDate = &p
	}
	return model.Outcome{Candidate: &c, Title: title}
}

// resolveLink makes href absolute against the source page URL.
func resolveLink(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// dedupeByDate keeps the first candidate seen for each date; later ones
// become duplicate-date skips. Independent sources often report the same
// event.
func dedupeByDate(outcomes []model.Outcome) ([]model.Candidate, []model.Outcome) {
	seen := make(map[string]bool)
	var candidates []model.Candidate
	deduped := make([]model.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Candidate == nil {
			deduped = append(deduped, o)
			continue
		}
		key := o.Candidate.Date.Format("2006-01-02")
		if seen[key] {
			deduped = append(deduped, model.Outcome{Skip: model.SkipDuplicateDate, Title: o.Title})
			continue
		}
		seen[key] = true
		candidates = append(candidates, *o.Candidate)
		deduped = append(deduped, o)
	}
	return candidates, deduped
}
