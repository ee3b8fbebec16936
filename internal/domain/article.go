package domain

import "time"

// Article is a single feed entry flowing through the filter pipeline.
// Published keeps the raw date string from the feed; parsing is deferred to
// the stages that need it and always fails open.
type Article struct {
	Title     string
	Link      string
	Source    string
	Category  string
	Published string
	Summary   string
	FeedTitle string
	FeedLink  string
}

// StoredArticle is the persisted superset of Article. Rows are immutable
// after insert; only retention cleanup removes them.
type StoredArticle struct {
	Article
	ID          int64
	Hash        string
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Rating maps named rating categories to integer sub-scores as returned by
// the external scorer.
type Rating map[string]int

// ScoredDocument is one externally-scored article reconstructed from its
// JSON payload. It is ephemeral digest input, never persisted.
type ScoredDocument struct {
	Title     string `json:"title"`
	Published string `json:"published"`
	Source    string `json:"source"`
	Brief     string `json:"brief"`
	Summary   string `json:"summary"`
	Rating    Rating `json:"rating"`
}

// StoreStats aggregates store-wide counters for the stats command.
type StoreStats struct {
	Total           int
	ByCategory      map[string]int
	BySource        map[string]int
	LatestCreatedAt string
}
