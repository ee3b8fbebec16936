package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/doyensec/safeurl"
	"golang.org/x/time/rate"

	"RSSDigest/internal/config"
	"RSSDigest/internal/ports"
)

// contentSelectors is tried in order; the first match wins. Body is the
// last-resort fallback.
var contentSelectors = []string{
	"article",
	".article-content",
	".post-content",
	".entry-content",
	"main",
	".content",
	"#content",
	"body",
}

// Scraper downloads an article's source page and extracts its main content
// markup. Requests are rate limited and retried with exponential backoff.
type Scraper struct {
	client    *http.Client
	limiter   *rate.Limiter
	retries   int
	userAgent string
	logger    *slog.Logger
	sleepFn   func(ctx context.Context, d time.Duration) error
}

var _ ports.Scraper = (*Scraper)(nil)

// NewScraper wires an HTTP client; a nil client gets an SSRF-guarded one
// that refuses private, loopback and metadata targets.
func NewScraper(client *http.Client, cfg config.ScraperConfig, logger *slog.Logger) *Scraper {
	if client == nil {
		safeCfg := safeurl.GetConfigBuilder().
			SetTimeout(cfg.Timeout).
			SetAllowedSchemes("http", "https").
			Build()
		client = safeurl.Client(safeCfg).Client
	}

	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	retries := cfg.RetryAttempts
	if retries <= 0 {
		retries = 3
	}

	return &Scraper{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
		retries:   retries,
		userAgent: cfg.UserAgent,
		logger:    logger,
		sleepFn:   sleepCtx,
	}
}

// Fetch downloads the page at rawURL and returns the extracted content
// markup. Attempts are bounded; the last error is returned once they are
// exhausted.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			// 1s, 2s, 4s, ...
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			s.logger.Warn("retrying scrape", "url", rawURL, "attempt", attempt+1, "backoff", backoff)
			if err := s.sleepFn(ctx, backoff); err != nil {
				return "", err
			}
		}

		content, err := s.fetchOnce(ctx, rawURL)
		if err == nil {
			return content, nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("scrape %s: %w", rawURL, lastErr)
}

func (s *Scraper) fetchOnce(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	return extractContent(doc)
}

// extractContent walks the selector list and returns the markup of the
// first matching node, with script and style elements removed.
func extractContent(doc *goquery.Document) (string, error) {
	doc.Find("script, style").Remove()

	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		markup, err := goquery.OuterHtml(sel)
		if err != nil {
			return "", fmt.Errorf("render content node: %w", err)
		}
		return markup, nil
	}

	return "", fmt.Errorf("no content node found")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
