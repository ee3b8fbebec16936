package ports

import (
	"context"
	"time"

	"RSSDigest/internal/domain"
)

// FeedResult carries the outcome of one feed fetch. A failed feed reports
// its error here and contributes zero articles; it never aborts the run.
type FeedResult struct {
	FeedName string
	FeedURL  string
	Articles []domain.Article
	Err      error
}

// FeedSource pulls raw entries from every configured feed, arrival order
// preserved.
type FeedSource interface {
	FetchAll(ctx context.Context) []FeedResult
}

// ArticleStore persists articles keyed by identity hash with at-most-once
// insert semantics.
type ArticleStore interface {
	Exists(ctx context.Context, hash string) (bool, error)
	Save(ctx context.Context, article domain.Article) (bool, error)
	SaveBatch(ctx context.Context, articles []domain.Article) (int, error)
	GetRecent(ctx context.Context, limit int, category string) ([]domain.StoredArticle, error)
	GetByDateRange(ctx context.Context, start, end string) ([]domain.StoredArticle, error)
	Stats(ctx context.Context) (domain.StoreStats, error)
	Cleanup(ctx context.Context, daysOld int) (int64, error)
	UpdateFeedStatus(ctx context.Context, feedURL string, articleCount int, lastError string) error
	Close() error
}

// Scraper fetches the source page of an article and returns the extracted
// content markup.
type Scraper interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ConvertReport summarizes one directory conversion pass.
type ConvertReport struct {
	Converted int
	Failed    int
}

// Converter turns a directory of scraped markup into a directory of
// plain-text documents. Per-file failures are reported, not swallowed.
type Converter interface {
	ConvertDir(ctx context.Context, srcDir, dstDir string) (ConvertReport, error)
}

// Scorer submits document text to the external relevance scorer and returns
// its structured rating payload verbatim.
type Scorer interface {
	Score(ctx context.Context, document string) (string, error)
}

// DigestWriter renders stored articles into the basic digest document and
// returns the path written.
type DigestWriter interface {
	Write(articles []domain.StoredArticle, now time.Time) (string, error)
}
