package scrape

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"RSSDigest/internal/config"
)

func testConfig() config.ScraperConfig {
	return config.ScraperConfig{
		Timeout:       5 * time.Second,
		RetryAttempts: 3,
		RatePerSecond: 1000,
		UserAgent:     "RSSDigest-test/1.0",
	}
}

func newTestScraper(client *http.Client) *Scraper {
	s := NewScraper(client, testConfig(), slog.New(slog.DiscardHandler))
	s.sleepFn = func(ctx context.Context, d time.Duration) error { return nil }
	return s
}

func TestFetchExtractsArticleNode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "RSSDigest-test/1.0" {
			t.Errorf("unexpected user agent %q", got)
		}
		_, _ = w.Write([]byte(`<html><head><style>.x{}</style></head><body>
			<nav>menu</nav>
			<article><h1>Headline</h1><script>evil()</script><p>Body text.</p></article>
		</body></html>`))
	}))
	defer server.Close()

	s := newTestScraper(server.Client())
	content, err := s.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if !strings.Contains(content, "Body text.") {
		t.Fatalf("expected article body in content, got %q", content)
	}
	if strings.Contains(content, "menu") {
		t.Fatalf("content should not include nodes outside the article")
	}
	if strings.Contains(content, "evil()") {
		t.Fatalf("script elements must be removed")
	}
}

func TestFetchFallsBackToBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>plain page</p></body></html>`))
	}))
	defer server.Close()

	s := newTestScraper(server.Client())
	content, err := s.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(content, "plain page") {
		t.Fatalf("expected body fallback, got %q", content)
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`<html><body><article>finally</article></body></html>`))
	}))
	defer server.Close()

	s := newTestScraper(server.Client())
	content, err := s.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch after retries: %v", err)
	}
	if !strings.Contains(content, "finally") {
		t.Fatalf("unexpected content %q", content)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestFetchGivesUpAfterRetryBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := newTestScraper(server.Client())
	_, err := s.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls.Load())
	}
}
