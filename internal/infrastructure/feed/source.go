package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"RSSDigest/internal/config"
	"RSSDigest/internal/domain"
	"RSSDigest/internal/ports"
)

const defaultMaxItems = 5

// Source fetches raw entries from every configured feed via gofeed. Each
// feed is isolated: a fetch or parse failure is reported in its FeedResult
// and contributes zero articles.
type Source struct {
	feeds   []config.FeedConfig
	parser  *gofeed.Parser
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.FeedSource = (*Source)(nil)

// NewSource builds a Source over the configured feed list.
func NewSource(feeds []config.FeedConfig, timeout time.Duration, logger *slog.Logger) *Source {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Source{
		feeds:   feeds,
		parser:  gofeed.NewParser(),
		timeout: timeout,
		logger:  logger,
	}
}

// FetchAll pulls every configured feed in order, preserving entry arrival
// order within each feed.
func (s *Source) FetchAll(ctx context.Context) []ports.FeedResult {
	results := make([]ports.FeedResult, 0, len(s.feeds))

	for _, feed := range s.feeds {
		s.logger.Info("fetching feed", "name", feed.Name, "url", feed.URL)

		articles, err := s.fetchFeed(ctx, feed)
		if err != nil {
			s.logger.Error("feed fetch failed", "name", feed.Name, "error", err)
		}
		results = append(results, ports.FeedResult{
			FeedName: feed.Name,
			FeedURL:  feed.URL,
			Articles: articles,
			Err:      err,
		})
	}

	return results
}

func (s *Source) fetchFeed(ctx context.Context, feed config.FeedConfig) ([]domain.Article, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	parsed, err := s.parser.ParseURLWithContext(feed.URL, fetchCtx)
	if err != nil {
		return nil, err
	}

	maxItems := feed.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}

	items := parsed.Items
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, domain.Article{
			Title:     item.Title,
			Link:      item.Link,
			Source:    feed.Name,
			Category:  feed.Category,
			Published: item.Published,
			Summary:   item.Description,
			FeedTitle: parsed.Title,
			FeedLink:  parsed.Link,
		})
	}

	return articles, nil
}
