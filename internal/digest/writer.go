package digest

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"RSSDigest/internal/domain"
	"RSSDigest/internal/ports"
)

// Writer renders the basic digest of stored articles: a timestamped header,
// per-category sections, and a trailing statistics block.
type Writer struct {
	outputDir string
	policy    *bluemonday.Policy
}

var _ ports.DigestWriter = (*Writer)(nil)

// NewWriter builds a Writer targeting outputDir.
func NewWriter(outputDir string) *Writer {
	return &Writer{
		outputDir: outputDir,
		// StrictPolicy drops every tag; summaries arrive HTML-laden.
		policy: bluemonday.StrictPolicy(),
	}
}

// Write renders the articles and writes the digest file, returning its
// path.
func (w *Writer) Write(articles []domain.StoredArticle, now time.Time) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := fmt.Sprintf("rss_digest_%s.md", now.Format("2006-01-02_15-04"))
	path := filepath.Join(w.outputDir, name)

	if err := os.WriteFile(path, []byte(w.render(articles, now)), 0o640); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}

	return path, nil
}

func (w *Writer) render(articles []domain.StoredArticle, now time.Time) string {
	byCategory := map[string][]domain.StoredArticle{}
	var order []string
	for _, article := range articles {
		if _, ok := byCategory[article.Category]; !ok {
			order = append(order, article.Category)
		}
		byCategory[article.Category] = append(byCategory[article.Category], article)
	}

	var b strings.Builder
	b.WriteString("# RSS Digest\n\n")
	fmt.Fprintf(&b, "**Date and Time**: %s  \n", now.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Article Count**: %d  \n\n", len(articles))

	for _, category := range order {
		group := byCategory[category]
		fmt.Fprintf(&b, "## %s (%d article(s))\n\n", strings.ToUpper(category), len(group))
		for _, article := range group {
			b.WriteString(w.renderArticle(article))
		}
	}

	b.WriteString("## Statistics\n\n")
	fmt.Fprintf(&b, "- In total: %d article(s)\n", len(articles))
	for _, category := range order {
		fmt.Fprintf(&b, "- %s: %d article(s)\n", category, len(byCategory[category]))
	}

	return b.String()
}

func (w *Writer) renderArticle(article domain.StoredArticle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### %s\n\n", article.Title)

	if published := formatPublished(article.Published); published != "" {
		fmt.Fprintf(&b, "**Published time**: %s  \n", published)
	}
	fmt.Fprintf(&b, "**Source**: %s  \n", article.Source)
	fmt.Fprintf(&b, "**Category**: %s  \n", article.Category)
	fmt.Fprintf(&b, "**Link**: [Original article](%s)  \n\n", article.Link)

	if summary := w.cleanSummary(article.Summary); summary != "" {
		fmt.Fprintf(&b, "**Summary**: %s\n\n", summary)
	}

	b.WriteString("---\n\n")
	return b.String()
}

// cleanSummary strips markup from the feed-provided summary. Sanitizing
// escapes entities, so unescape afterwards to get readable text back.
func (w *Writer) cleanSummary(summary string) string {
	stripped := w.policy.Sanitize(summary)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
