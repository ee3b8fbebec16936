package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"RSSDigest/internal/ports"
)

// MarkdownConverter turns a directory of scraped HTML pages into a
// directory of markdown documents, one output file per input file.
type MarkdownConverter struct {
	logger *slog.Logger
}

var _ ports.Converter = (*MarkdownConverter)(nil)

// NewMarkdownConverter builds the converter.
func NewMarkdownConverter(logger *slog.Logger) *MarkdownConverter {
	return &MarkdownConverter{logger: logger}
}

// ConvertDir converts every .html file in srcDir into a .md file of the
// same base name in dstDir. A file that fails to convert is logged and
// counted as failed; it never stops the remaining files.
func (c *MarkdownConverter) ConvertDir(ctx context.Context, srcDir, dstDir string) (ports.ConvertReport, error) {
	var report ports.ConvertReport

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return report, fmt.Errorf("read source directory: %w", err)
	}

	if err := os.MkdirAll(dstDir, 0o750); err != nil {
		return report, fmt.Errorf("create destination directory: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}

		if err := c.convertFile(srcDir, dstDir, entry.Name()); err != nil {
			c.logger.Error("convert failed", "file", entry.Name(), "error", err)
			report.Failed++
			continue
		}
		report.Converted++
	}

	c.logger.Info("conversion pass done", "converted", report.Converted, "failed", report.Failed)
	return report, nil
}

func (c *MarkdownConverter) convertFile(srcDir, dstDir, name string) error {
	raw, err := os.ReadFile(filepath.Join(srcDir, name))
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(string(raw))
	if err != nil {
		return fmt.Errorf("convert page: %w", err)
	}

	outName := strings.TrimSuffix(name, ".html") + ".md"
	if err := os.WriteFile(filepath.Join(dstDir, outName), []byte(markdown), 0o640); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	return nil
}
