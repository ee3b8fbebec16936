package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"RSSDigest/internal/domain"
	"RSSDigest/internal/ports"
)

var articleColumns = []string{
	"id", "hash", "title", "link", "source", "category", "content_hash",
	"published", "summary", "feed_title", "feed_link", "created_at", "updated_at",
}

// SQLiteRepository persists articles into a local SQLite file with
// at-most-once insert semantics per identity hash.
type SQLiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ports.ArticleStore = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the store at path and
// applies schema migrations. Any failure here is fatal to the run: the
// pipeline cannot proceed without a store.
func NewSQLiteRepository(path string, logger *slog.Logger) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	if err := runMigrations(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Single sequential writer; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	return &SQLiteRepository{db: db, logger: logger}, nil
}

// Close releases the underlying connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Exists reports whether an article with the given identity hash is stored.
func (r *SQLiteRepository) Exists(ctx context.Context, hash string) (bool, error) {
	var one int
	err := sq.Select("1").
		From("articles").
		Where(sq.Eq{"hash": hash}).
		RunWith(r.db).
		QueryRowContext(ctx).
		Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check article existence: %w", err)
	}
	return true, nil
}

// Save inserts the article unless its identity hash already exists, in which
// case the existing row is left untouched and false is returned. The
// check-then-insert runs in one transaction; a unique-constraint violation
// from a concurrent insert is treated as "already exists", not as an error.
func (r *SQLiteRepository) Save(ctx context.Context, article domain.Article) (bool, error) {
	hash := domain.IdentityHash(article.Title, article.Link)
	contentHash := domain.ContentHash(article.Title, article.Summary)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = sq.Select("1").
		From("articles").
		Where(sq.Eq{"hash": hash}).
		RunWith(tx).
		QueryRowContext(ctx).
		Scan(&one)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("check article existence: %w", err)
	}

	_, err = sq.Insert("articles").
		Columns("hash", "title", "link", "source", "category", "content_hash",
			"published", "summary", "feed_title", "feed_link").
		Values(hash, article.Title, article.Link, article.Source, article.Category,
			contentHash, article.Published, article.Summary, article.FeedTitle, article.FeedLink).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert article: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit insert: %w", err)
	}

	return true, nil
}

// SaveBatch saves every article in order and returns the count actually
// inserted. Duplicates within the batch collide on the identity hash like
// any other duplicate; a failed individual save is logged and counts as
// zero rows, never aborting the batch.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, articles []domain.Article) (int, error) {
	newCount := 0
	for _, article := range articles {
		inserted, err := r.Save(ctx, article)
		if err != nil {
			r.logger.Error("save article failed", "title", article.Title, "error", err)
			continue
		}
		if inserted {
			newCount++
		}
	}

	r.logger.Info("batch saved", "new", newCount, "processed", len(articles))
	return newCount, nil
}

// GetRecent returns up to limit rows ordered by creation time descending,
// optionally restricted to one category.
func (r *SQLiteRepository) GetRecent(ctx context.Context, limit int, category string) ([]domain.StoredArticle, error) {
	query := sq.Select(articleColumns...).
		From("articles").
		OrderBy("created_at DESC").
		Limit(uint64(limit))
	if category != "" {
		query = query.Where(sq.Eq{"category": category})
	}

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query recent articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// GetByDateRange returns rows whose creation date falls inclusively between
// start and end (YYYY-MM-DD).
func (r *SQLiteRepository) GetByDateRange(ctx context.Context, start, end string) ([]domain.StoredArticle, error) {
	rows, err := sq.Select(articleColumns...).
		From("articles").
		Where(sq.Expr("DATE(created_at) BETWEEN ? AND ?", start, end)).
		OrderBy("created_at DESC").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query articles by date range: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// Stats aggregates store-wide counters.
func (r *SQLiteRepository) Stats(ctx context.Context) (domain.StoreStats, error) {
	stats := domain.StoreStats{
		ByCategory: map[string]int{},
		BySource:   map[string]int{},
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&stats.Total); err != nil {
		return domain.StoreStats{}, fmt.Errorf("count articles: %w", err)
	}

	if err := r.groupCount(ctx, "category", stats.ByCategory); err != nil {
		return domain.StoreStats{}, err
	}
	if err := r.groupCount(ctx, "source", stats.BySource); err != nil {
		return domain.StoreStats{}, err
	}

	var latest sql.NullString
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM articles`).Scan(&latest); err != nil {
		return domain.StoreStats{}, fmt.Errorf("query latest article: %w", err)
	}
	stats.LatestCreatedAt = latest.String

	return stats, nil
}

func (r *SQLiteRepository) groupCount(ctx context.Context, column string, into map[string]int) error {
	rows, err := sq.Select(column, "COUNT(*)").
		From("articles").
		GroupBy(column).
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return fmt.Errorf("group by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		into[key] = count
	}
	return rows.Err()
}

// Cleanup irreversibly deletes rows created more than daysOld days ago and
// returns the number removed.
func (r *SQLiteRepository) Cleanup(ctx context.Context, daysOld int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM articles WHERE created_at < datetime('now', '-' || ? || ' days')`,
		daysOld,
	)
	if err != nil {
		return 0, fmt.Errorf("cleanup old articles: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted count: %w", err)
	}

	if deleted > 0 {
		r.logger.Info("cleaned up old articles", "deleted", deleted, "days_old", daysOld)
	}
	return deleted, nil
}

// UpdateFeedStatus records per-feed telemetry: last processing time, article
// count, and the last error (empty on success).
func (r *SQLiteRepository) UpdateFeedStatus(ctx context.Context, feedURL string, articleCount int, lastError string) error {
	_, err := sq.Insert("feed_status").
		Columns("feed_url", "last_processed", "article_count", "last_error").
		Values(feedURL, sq.Expr("CURRENT_TIMESTAMP"), articleCount, lastError).
		Suffix(`ON CONFLICT(feed_url) DO UPDATE SET
			last_processed = CURRENT_TIMESTAMP,
			article_count = excluded.article_count,
			last_error = excluded.last_error`).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update feed status: %w", err)
	}
	return nil
}

func scanArticles(rows *sql.Rows) ([]domain.StoredArticle, error) {
	var articles []domain.StoredArticle
	for rows.Next() {
		var a domain.StoredArticle
		err := rows.Scan(&a.ID, &a.Hash, &a.Title, &a.Link, &a.Source, &a.Category,
			&a.ContentHash, &a.Published, &a.Summary, &a.FeedTitle, &a.FeedLink,
			&a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate article rows: %w", err)
	}
	return articles, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
