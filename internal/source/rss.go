package source

import (
	"context"
	"net/http"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/safarihq/sikukuu/internal/model"
)

// fetchRSS parses one announcement feed. Feed items flow through the same
// keyword filter and date extraction as scraped headlines; the feed's own
// publication timestamp populates PublishedDate.
func (s *Scraper) fetchRSS(ctx context.Context, year int, src Config) []model.Outcome {
	log := zap.L().With(zap.String("source", src.Name), zap.String("url", src.URL))

	resp, err := s.fetcher.Get(ctx, src.URL)
	if err != nil {
		log.Warn("announce: feed unreachable", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("announce: feed returned non-200", zap.Int("status", resp.StatusCode))
		return nil
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		log.Warn("announce: malformed feed", zap.Error(err))
		return nil
	}

	outcomes := make([]model.Outcome, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Title == "" {
			continue
		}
		link := item.Link
		if link == "" {
			link = src.URL
		}
		outcomes = append(outcomes, classify(item.Title, link, year, src, item.PublishedParsed))
	}

	log.Debug("announce: feed parsed", zap.Int("items", len(outcomes)))
	return outcomes
}
