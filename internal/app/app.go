package app

import (
	"context"
	"log/slog"

	"RSSDigest/internal/config"
	"RSSDigest/internal/digest"
	"RSSDigest/internal/domain"
	"RSSDigest/internal/infrastructure/convert"
	"RSSDigest/internal/infrastructure/feed"
	"RSSDigest/internal/infrastructure/llm"
	"RSSDigest/internal/infrastructure/scrape"
	"RSSDigest/internal/infrastructure/storage"
	"RSSDigest/internal/logging"
	"RSSDigest/internal/ports"
	"RSSDigest/internal/processor"
	"RSSDigest/internal/staging"
	"RSSDigest/internal/usecase"
)

// Application wires configuration to adapters and the orchestration
// pipeline, and owns their lifecycle.
type Application struct {
	cfg      config.Config
	store    ports.ArticleStore
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance. The store is opened (and
// migrated) here; callers must Close when done.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	store, err := storage.NewSQLiteRepository(cfg.Database.Path, baseLogger.With("component", "storage"))
	if err != nil {
		return nil, err
	}

	dirs, err := staging.New(cfg.Staging.Dir)
	if err != nil {
		store.Close()
		return nil, err
	}

	source := feed.NewSource(cfg.Feeds, cfg.Scraper.Timeout, baseLogger.With("component", "feed"))
	scraper := scrape.NewScraper(nil, cfg.Scraper, baseLogger.With("component", "scraper"))
	converter := convert.NewMarkdownConverter(baseLogger.With("component", "converter"))

	var scorer ports.Scorer
	if cfg.Scorer.APIKey != "" {
		scorer = llm.NewScorerClient(cfg.Scorer)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:    source,
		Processor: processor.New(baseLogger.With("component", "processor")),
		Store:     store,
		Scraper:   scraper,
		Converter: converter,
		Scorer:    scorer,
		Writer:    digest.NewWriter(cfg.Output.Dir),
		Staging:   dirs,
		Options: processor.Options{
			RemoveDuplicates: cfg.Processing.Dedup(),
			IncludeKeywords:  cfg.Processing.IncludeKeywords,
			ExcludeKeywords:  cfg.Processing.ExcludeKeywords,
			MaxAgeHours:      cfg.Processing.MaxAgeHours,
			SortBy:           cfg.Processing.SortBy,
		},
		Logger: baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, store: store, pipeline: pipeline}, nil
}

// Collect runs one fetch-filter-persist-digest cycle.
func (a *Application) Collect(ctx context.Context) error {
	return a.pipeline.Collect(ctx)
}

// Enrich scrapes, converts and scores up to limit recent articles.
func (a *Application) Enrich(ctx context.Context, limit int) error {
	return a.pipeline.Enrich(ctx, limit)
}

// Digest assembles the ranked digest from staged rating documents.
func (a *Application) Digest(ctx context.Context) (string, error) {
	return a.pipeline.Digest(ctx, a.cfg.Output.Dir)
}

// Stats reports aggregate store counters.
func (a *Application) Stats(ctx context.Context) (domain.StoreStats, error) {
	return a.pipeline.Stats(ctx)
}

// Cleanup deletes stored rows older than days; days <= 0 uses the
// configured retention window.
func (a *Application) Cleanup(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = a.cfg.Retention.Days
	}
	return a.pipeline.Cleanup(ctx, days)
}

// PurgeStaging removes every staged file.
func (a *Application) PurgeStaging() (int, error) {
	return a.pipeline.PurgeStaging()
}

// Close releases the store.
func (a *Application) Close() error {
	return a.store.Close()
}
