package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"RSSDigest/internal/digest"
	"RSSDigest/internal/domain"
	"RSSDigest/internal/ports"
	"RSSDigest/internal/processor"
	"RSSDigest/internal/staging"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source    ports.FeedSource
	Processor *processor.Processor
	Store     ports.ArticleStore
	Scraper   ports.Scraper
	Converter ports.Converter
	Scorer    ports.Scorer
	Writer    ports.DigestWriter
	Staging   staging.Dirs
	Options   processor.Options
	Logger    *slog.Logger
}

// Pipeline implements the digest workflow: collect, enrich, assemble, and
// the administrative store operations.
type Pipeline struct {
	source    ports.FeedSource
	processor *processor.Processor
	store     ports.ArticleStore
	scraper   ports.Scraper
	converter ports.Converter
	scorer    ports.Scorer
	writer    ports.DigestWriter
	staging   staging.Dirs
	options   processor.Options
	logger    *slog.Logger
	nowFn     func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		source:    deps.Source,
		processor: deps.Processor,
		store:     deps.Store,
		scraper:   deps.Scraper,
		converter: deps.Converter,
		scorer:    deps.Scorer,
		writer:    deps.Writer,
		staging:   deps.Staging,
		options:   deps.Options,
		logger:    logger,
		nowFn:     time.Now,
	}
}

// Collect runs one acquisition cycle: fetch every feed, filter the batch,
// persist it, and write the basic digest. A run that ends with zero
// articles at any stage exits early with an explanatory log line instead of
// producing an empty digest.
func (p *Pipeline) Collect(ctx context.Context) error {
	logger := p.logger.With("run_id", uuid.NewString())
	logger.Info("collection run starting")

	var articles []domain.Article
	for _, result := range p.source.FetchAll(ctx) {
		lastError := ""
		if result.Err != nil {
			lastError = result.Err.Error()
		}
		if err := p.store.UpdateFeedStatus(ctx, result.FeedURL, len(result.Articles), lastError); err != nil {
			logger.Error("update feed status failed", "feed", result.FeedName, "error", err)
		}
		articles = append(articles, result.Articles...)
	}

	logger.Info("fetch complete", "fetched", len(articles))
	if len(articles) == 0 {
		logger.Warn("no articles fetched, shutting down")
		return nil
	}

	processed, report := p.processor.Process(articles, p.options)
	logger.Info("processing complete",
		"input", report.Input,
		"after_dedup", report.AfterDedup,
		"after_keywords", report.AfterKeywords,
		"after_recency", report.AfterRecency,
		"final", report.Final,
	)
	if len(processed) == 0 {
		logger.Warn("no articles left after processing, shutting down")
		return nil
	}

	newCount, err := p.store.SaveBatch(ctx, processed)
	if err != nil {
		logger.Error("batch save failed", "error", err)
	}
	logger.Info("articles persisted", "new", newCount, "processed", len(processed))

	path, err := p.writer.Write(toStored(processed), p.nowFn())
	if err != nil {
		return fmt.Errorf("write digest: %w", err)
	}

	for category, count := range categoryBreakdown(processed) {
		logger.Info("category breakdown", "category", category, "count", count)
	}
	logger.Info("collection run done", "digest", path)
	return nil
}

// Enrich scrapes, converts and scores the most recent stored articles into
// the staging area. Every step is isolated per article or per document: one
// failure never blocks the remainder.
func (p *Pipeline) Enrich(ctx context.Context, limit int) error {
	logger := p.logger.With("run_id", uuid.NewString())

	articles, err := p.store.GetRecent(ctx, limit, "")
	if err != nil {
		return fmt.Errorf("load recent articles: %w", err)
	}
	if len(articles) == 0 {
		logger.Warn("nothing to enrich")
		return nil
	}

	scraped := 0
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}

		markup, err := p.scraper.Fetch(ctx, article.Link)
		if err != nil {
			logger.Error("scrape failed", "title", article.Title, "error", err)
			continue
		}

		name := staging.Slug(article.Title) + ".html"
		if err := os.WriteFile(filepath.Join(p.staging.HTML(), name), []byte(markup), 0o640); err != nil {
			logger.Error("stage page failed", "file", name, "error", err)
			continue
		}
		scraped++
	}
	logger.Info("scrape pass done", "scraped", scraped, "articles", len(articles))

	report, err := p.converter.ConvertDir(ctx, p.staging.HTML(), p.staging.Markdown())
	if err != nil {
		return fmt.Errorf("convert staged pages: %w", err)
	}
	logger.Info("convert pass done", "converted", report.Converted, "failed", report.Failed)

	return p.scoreDocuments(ctx, logger)
}

func (p *Pipeline) scoreDocuments(ctx context.Context, logger *slog.Logger) error {
	if p.scorer == nil {
		logger.Warn("no scorer configured, skipping score pass")
		return nil
	}

	entries, err := os.ReadDir(p.staging.Markdown())
	if err != nil {
		return fmt.Errorf("read converted documents: %w", err)
	}

	scored := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(p.staging.Markdown(), entry.Name()))
		if err != nil {
			logger.Error("read document failed", "file", entry.Name(), "error", err)
			continue
		}

		rating, err := p.scorer.Score(ctx, string(raw))
		if err != nil {
			logger.Error("score failed", "file", entry.Name(), "error", err)
			continue
		}

		outName := strings.TrimSuffix(entry.Name(), ".md") + ".json"
		if err := os.WriteFile(filepath.Join(p.staging.JSON(), outName), []byte(rating), 0o640); err != nil {
			logger.Error("stage rating failed", "file", outName, "error", err)
			continue
		}
		scored++
	}

	logger.Info("score pass done", "scored", scored)
	return nil
}

// Digest assembles the ranked digest from staged rating documents and
// writes it beneath outputDir. With no rating documents it exits early.
func (p *Pipeline) Digest(ctx context.Context, outputDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	content, count, err := digest.Assemble(p.staging.JSON(), p.nowFn())
	if err != nil {
		return "", err
	}
	if count == 0 {
		p.logger.Warn("no rating documents staged, skipping ranked digest")
		return "", nil
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outputDir, "RSS Digest.md")
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		return "", fmt.Errorf("write ranked digest: %w", err)
	}

	p.logger.Info("ranked digest written", "path", path, "documents", count)
	return path, nil
}

// Cleanup deletes stored rows older than days and returns the count.
func (p *Pipeline) Cleanup(ctx context.Context, days int) (int64, error) {
	return p.store.Cleanup(ctx, days)
}

// Stats reports aggregate store counters.
func (p *Pipeline) Stats(ctx context.Context) (domain.StoreStats, error) {
	return p.store.Stats(ctx)
}

// PurgeStaging removes every staged file. The caller is responsible for
// confirming the irreversible deletion with the user first.
func (p *Pipeline) PurgeStaging() (int, error) {
	return p.staging.Purge()
}

func toStored(articles []domain.Article) []domain.StoredArticle {
	stored := make([]domain.StoredArticle, 0, len(articles))
	for _, article := range articles {
		stored = append(stored, domain.StoredArticle{Article: article})
	}
	return stored
}

func categoryBreakdown(articles []domain.Article) map[string]int {
	breakdown := map[string]int{}
	for _, article := range articles {
		breakdown[article.Category]++
	}
	return breakdown
}
