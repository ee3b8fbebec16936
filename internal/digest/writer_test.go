package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"RSSDigest/internal/domain"
)

func TestWriterRendersCategoriesAndStats(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "output")
	w := NewWriter(outDir)

	articles := []domain.StoredArticle{
		{Article: domain.Article{
			Title:     "Go 1.25 released",
			Link:      "https://example.com/go",
			Source:    "Go Blog",
			Category:  "programming",
			Published: "2024-01-15T10:00:00Z",
			Summary:   "<p>Lots of <b>improvements</b> &amp; fixes.</p>",
		}},
		{Article: domain.Article{
			Title:    "AI breakthrough",
			Link:     "https://example.com/ai",
			Source:   "Tech News",
			Category: "tech",
			Summary:  "",
		}},
	}

	now := time.Date(2024, time.January, 15, 12, 30, 0, 0, time.UTC)
	path, err := w.Write(articles, now)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "rss_digest_2024-01-15_12-30.md" {
		t.Fatalf("unexpected file name %s", filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	content := string(raw)

	if !strings.Contains(content, "**Article Count**: 2") {
		t.Fatalf("article count missing:\n%s", content)
	}
	if !strings.Contains(content, "## PROGRAMMING (1 article(s))") {
		t.Fatalf("category section missing:\n%s", content)
	}
	if !strings.Contains(content, "**Published time**: 2024-01-15 10:00") {
		t.Fatalf("formatted published time missing:\n%s", content)
	}
	if !strings.Contains(content, "**Summary**: Lots of improvements & fixes.") {
		t.Fatalf("summary not stripped of markup:\n%s", content)
	}
	if !strings.Contains(content, "- programming: 1 article(s)") {
		t.Fatalf("statistics block missing:\n%s", content)
	}
}

func TestFormatPublishedFallsBackToPrefix(t *testing.T) {
	t.Parallel()

	got := formatPublished("sometime around the solstice, probably")
	if got != "sometime around " {
		t.Fatalf("unexpected fallback %q", got)
	}
	if formatPublished("") != "" {
		t.Fatalf("empty published must stay empty")
	}
}
