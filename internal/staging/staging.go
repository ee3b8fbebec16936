// Package staging manages the on-disk working area shared by the scrape,
// convert and score steps: html/ for raw pages, md/ for converted text,
// json/ for rating documents.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Dirs is the staging layout rooted at one directory.
type Dirs struct {
	root string
}

// New creates the staging layout under root.
func New(root string) (Dirs, error) {
	d := Dirs{root: root}
	for _, dir := range []string{d.HTML(), d.Markdown(), d.JSON()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return Dirs{}, fmt.Errorf("create staging directory %s: %w", dir, err)
		}
	}
	return d, nil
}

// Root returns the staging root directory.
func (d Dirs) Root() string { return d.root }

// HTML returns the scraped-pages directory.
func (d Dirs) HTML() string { return filepath.Join(d.root, "html") }

// Markdown returns the converted-documents directory.
func (d Dirs) Markdown() string { return filepath.Join(d.root, "md") }

// JSON returns the rating-documents directory.
func (d Dirs) JSON() string { return filepath.Join(d.root, "json") }

// Purge irreversibly deletes every staged file and returns the count
// removed. Callers must obtain explicit confirmation before invoking it.
func (d Dirs) Purge() (int, error) {
	removed := 0
	for _, dir := range []string{d.HTML(), d.Markdown(), d.JSON()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("read staging directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return removed, fmt.Errorf("remove staged file %s: %w", entry.Name(), err)
			}
			removed++
		}
	}
	return removed, nil
}

var slugUnsafe = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Slug derives a filesystem-safe name from an article title: hostile
// characters collapse to single underscores, and an empty result falls
// back to "untitled".
func Slug(title string) string {
	slug := slugUnsafe.ReplaceAllString(title, "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "untitled"
	}
	return slug
}
