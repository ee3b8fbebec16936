package digest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"RSSDigest/internal/domain"
)

type rankedSection struct {
	markdown string
	score    int
}

// Assemble reads every rating document under jsonDir and produces the
// ranked digest: a generation-timestamp header followed by article sections
// in descending score order. A document that fails to parse contributes an
// error section instead of aborting the digest. The returned count is the
// number of documents rendered, error sections included.
func Assemble(jsonDir string, now time.Time) (string, int, error) {
	entries, err := os.ReadDir(jsonDir)
	if err != nil {
		return "", 0, fmt.Errorf("read rating directory: %w", err)
	}

	var sections []rankedSection
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(jsonDir, entry.Name()))
		if err != nil {
			sections = append(sections, errorSection(entry.Name(), err))
			continue
		}

		doc, err := ParseDocument(raw)
		if err != nil {
			sections = append(sections, errorSection(entry.Name(), err))
			continue
		}

		score, topCategory := CompositeScore(doc.Rating)
		sections = append(sections, rankedSection{
			markdown: renderScoredSection(doc, score, topCategory),
			score:    score,
		})
	}

	if len(sections) == 0 {
		return "", 0, nil
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].score > sections[j].score
	})

	var b strings.Builder
	b.WriteString("# RSS Digest\n\n")
	fmt.Fprintf(&b, "**Generated**: %s  \n\n", now.Format("2006-01-02 15:04"))
	for _, section := range sections {
		b.WriteString(section.markdown)
	}

	return b.String(), len(sections), nil
}

func errorSection(name string, err error) rankedSection {
	return rankedSection{
		markdown: fmt.Sprintf("## Unreadable document %s\n\n%v\n\n---\n\n", name, err),
	}
}

func renderScoredSection(doc domain.ScoredDocument, score int, topCategory string) string {
	var b strings.Builder

	title := doc.Title
	if title == "" {
		title = "untitled"
	}
	fmt.Fprintf(&b, "## %s\n\n", title)
	fmt.Fprintf(&b, "**Score**: %d/100  \n", score)

	if published := formatPublished(doc.Published); published != "" {
		fmt.Fprintf(&b, "**Published**: %s  \n", published)
	}
	if doc.Source != "" {
		fmt.Fprintf(&b, "**Source**: %s  \n", doc.Source)
	}
	if topCategory != "" {
		fmt.Fprintf(&b, "**Focus**: %s  \n", topCategory)
	}
	b.WriteString("\n")

	if doc.Brief != "" {
		fmt.Fprintf(&b, "%s\n\n", doc.Brief)
	}
	if doc.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", doc.Summary)
	}

	b.WriteString("---\n\n")
	return b.String()
}

// formatPublished reformats a parsable date and falls back to the first 16
// characters of the raw value otherwise.
func formatPublished(published string) string {
	if published == "" {
		return ""
	}
	if ts, ok := domain.ParsePublished(published); ok {
		return ts.Format("2006-01-02 15:04")
	}
	if len(published) > 16 {
		return published[:16]
	}
	return published
}
