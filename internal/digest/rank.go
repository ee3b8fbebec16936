// Package digest renders stored and scored articles into markdown digest
// documents.
package digest

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"RSSDigest/internal/domain"
)

// Universal rating categories contribute to every composite score; all other
// categories are topical and only the strongest one counts.
var universalCategories = map[string]bool{
	"accuracy":         true,
	"practical_value":  true,
	"potential_impact": true,
}

// maxRawScore is 4 sub-scores (three universal plus the best topical) at 10
// points each.
const maxRawScore = 40

// ParseDocument decodes one scored-article JSON payload. Missing fields
// default to empty values; only a malformed payload is an error.
func ParseDocument(raw []byte) (domain.ScoredDocument, error) {
	var doc domain.ScoredDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.ScoredDocument{}, fmt.Errorf("parse scored document: %w", err)
	}
	return doc, nil
}

// CompositeScore computes the normalized [0,100] score and the dominant
// topical category. Topical ties resolve to the lexicographically smallest
// category name so the result never depends on map iteration order.
func CompositeScore(rating domain.Rating) (int, string) {
	raw := rating["accuracy"] + rating["practical_value"] + rating["potential_impact"]

	names := make([]string, 0, len(rating))
	for name := range rating {
		if !universalCategories[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	best := 0
	bestName := ""
	for _, name := range names {
		if score := rating[name]; score > best || bestName == "" {
			best = score
			bestName = name
		}
	}
	raw += best

	score := int(math.Round(float64(raw) / maxRawScore * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, bestName
}
