package processor

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"RSSDigest/internal/domain"
)

// Options selects which filter stages run and how. Disabled stages are
// skipped, never errors.
type Options struct {
	RemoveDuplicates bool
	IncludeKeywords  []string
	ExcludeKeywords  []string
	MaxAgeHours      int
	SortBy           string
}

// Report carries the before/after counts of every stage of one run.
type Report struct {
	Input         int
	AfterDedup    int
	AfterKeywords int
	AfterRecency  int
	Final         int
}

// Processor reduces a raw article batch to a deduplicated, policy-filtered,
// deterministically ordered sequence. It performs no I/O and raises no
// domain errors; malformed fields degrade to permissive defaults.
type Processor struct {
	logger *slog.Logger
	nowFn  func() time.Time
}

// New builds a Processor. A nil logger disables stage logging.
func New(logger *slog.Logger) *Processor {
	return &Processor{logger: logger, nowFn: time.Now}
}

// Process applies dedup, keyword filtering, recency filtering and sorting in
// that fixed order, each stage feeding the next.
func (p *Processor) Process(articles []domain.Article, opts Options) ([]domain.Article, Report) {
	report := Report{Input: len(articles)}

	processed := make([]domain.Article, len(articles))
	copy(processed, articles)

	if opts.RemoveDuplicates {
		processed = p.removeDuplicates(processed)
	}
	report.AfterDedup = len(processed)

	if len(opts.IncludeKeywords) > 0 || len(opts.ExcludeKeywords) > 0 {
		processed = p.filterByKeywords(processed, opts.IncludeKeywords, opts.ExcludeKeywords)
	}
	report.AfterKeywords = len(processed)

	if opts.MaxAgeHours > 0 {
		processed = p.filterByRecency(processed, opts.MaxAgeHours)
	}
	report.AfterRecency = len(processed)

	processed = sortArticles(processed, opts.SortBy)
	report.Final = len(processed)

	p.debug("processing done",
		"input", report.Input,
		"after_dedup", report.AfterDedup,
		"after_keywords", report.AfterKeywords,
		"after_recency", report.AfterRecency,
		"final", report.Final,
	)

	return processed, report
}

// removeDuplicates keeps the first occurrence of every identity hash in
// arrival order.
func (p *Processor) removeDuplicates(articles []domain.Article) []domain.Article {
	unique := make([]domain.Article, 0, len(articles))
	seen := make(map[string]struct{}, len(articles))

	for _, article := range articles {
		hash := domain.IdentityHash(article.Title, article.Link)
		if _, ok := seen[hash]; ok {
			p.debug("duplicate dropped", "title", article.Title)
			continue
		}
		seen[hash] = struct{}{}
		unique = append(unique, article)
	}

	return unique
}

// filterByKeywords matches case-insensitive substrings against the combined
// title and summary. Exclusion wins unconditionally; with no include list
// every non-excluded article is kept.
func (p *Processor) filterByKeywords(articles []domain.Article, include, exclude []string) []domain.Article {
	filtered := make([]domain.Article, 0, len(articles))

	for _, article := range articles {
		haystack := strings.ToLower(article.Title) + " " + strings.ToLower(article.Summary)

		if matchesAny(haystack, exclude) {
			continue
		}

		if len(include) > 0 && !matchesAny(haystack, include) {
			continue
		}

		filtered = append(filtered, article)
	}

	return filtered
}

func matchesAny(haystack string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// filterByRecency drops articles older than maxAgeHours. Empty or
// unparsable published values are kept: ambiguous dates must never
// silently drop content.
func (p *Processor) filterByRecency(articles []domain.Article, maxAgeHours int) []domain.Article {
	recent := make([]domain.Article, 0, len(articles))
	now := p.nowFn()
	maxAge := time.Duration(maxAgeHours) * time.Hour

	for _, article := range articles {
		published, ok := domain.ParsePublished(article.Published)
		if !ok {
			recent = append(recent, article)
			continue
		}

		if now.Sub(published) <= maxAge {
			recent = append(recent, article)
		}
	}

	return recent
}

// sortArticles applies one of three deterministic total orders. Every sort
// is stable so equal keys retain their relative input order.
func sortArticles(articles []domain.Article, sortBy string) []domain.Article {
	switch sortBy {
	case "time":
		// Lexicographic on the raw published string, newest first.
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].Published > articles[j].Published
		})
	case "title":
		sort.SliceStable(articles, func(i, j int) bool {
			return strings.ToLower(articles[i].Title) < strings.ToLower(articles[j].Title)
		})
	default:
		sort.SliceStable(articles, func(i, j int) bool {
			if articles[i].Source != articles[j].Source {
				return articles[i].Source < articles[j].Source
			}
			return articles[i].Title < articles[j].Title
		})
	}
	return articles
}

func (p *Processor) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
