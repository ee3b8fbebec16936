package feed

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"RSSDigest/internal/config"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <link>https://example.com</link>
    <item>
      <title>First Post</title>
      <link>https://example.com/first</link>
      <pubDate>Mon, 15 Jan 2024 10:00:00 +0000</pubDate>
      <description>The first post.</description>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/second</link>
      <pubDate>Sun, 14 Jan 2024 10:00:00 +0000</pubDate>
      <description>The second post.</description>
    </item>
    <item>
      <title>Third Post</title>
      <link>https://example.com/third</link>
      <pubDate>Sat, 13 Jan 2024 10:00:00 +0000</pubDate>
      <description>The third post.</description>
    </item>
  </channel>
</rss>`

func TestFetchAllMapsEntries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	feeds := []config.FeedConfig{
		{Name: "Example", URL: server.URL, Category: "tech", MaxItems: 2},
	}
	source := NewSource(feeds, 5*time.Second, slog.New(slog.DiscardHandler))

	results := source.FetchAll(context.Background())
	if len(results) != 1 {
		t.Fatalf("expected 1 feed result, got %d", len(results))
	}
	result := results[0]
	if result.Err != nil {
		t.Fatalf("unexpected feed error: %v", result.Err)
	}
	if len(result.Articles) != 2 {
		t.Fatalf("expected maxItems to cap entries at 2, got %d", len(result.Articles))
	}

	first := result.Articles[0]
	if first.Title != "First Post" {
		t.Fatalf("arrival order lost, got %q first", first.Title)
	}
	if first.Source != "Example" || first.Category != "tech" {
		t.Fatalf("feed config not applied: source=%q category=%q", first.Source, first.Category)
	}
	if first.Published != "Mon, 15 Jan 2024 10:00:00 +0000" {
		t.Fatalf("expected raw published string preserved, got %q", first.Published)
	}
	if first.FeedTitle != "Example Feed" {
		t.Fatalf("unexpected feed title %q", first.FeedTitle)
	}
}

func TestFetchAllIsolatesFailedFeed(t *testing.T) {
	t.Parallel()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer bad.Close()

	feeds := []config.FeedConfig{
		{Name: "Broken", URL: bad.URL, Category: "tech"},
		{Name: "Working", URL: good.URL, Category: "tech"},
	}
	source := NewSource(feeds, 5*time.Second, slog.New(slog.DiscardHandler))

	results := source.FetchAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 feed results, got %d", len(results))
	}
	if results[0].Err == nil {
		t.Fatalf("expected error from broken feed")
	}
	if len(results[0].Articles) != 0 {
		t.Fatalf("broken feed must contribute zero articles")
	}
	if results[1].Err != nil || len(results[1].Articles) == 0 {
		t.Fatalf("working feed must be unaffected: err=%v count=%d", results[1].Err, len(results[1].Articles))
	}
}
