package digest

import (
	"testing"

	"RSSDigest/internal/domain"
)

func TestCompositeScoreFullMarks(t *testing.T) {
	t.Parallel()

	score, top := CompositeScore(domain.Rating{
		"accuracy":         10,
		"practical_value":  10,
		"potential_impact": 10,
		"golang":           10,
	})
	if score != 100 {
		t.Fatalf("expected 100, got %d", score)
	}
	if top != "golang" {
		t.Fatalf("expected dominant category golang, got %q", top)
	}
}

func TestCompositeScoreAllZeros(t *testing.T) {
	t.Parallel()

	score, _ := CompositeScore(domain.Rating{
		"accuracy":         0,
		"practical_value":  0,
		"potential_impact": 0,
		"golang":           0,
	})
	if score != 0 {
		t.Fatalf("expected 0, got %d", score)
	}
}

func TestCompositeScorePicksMaxTopical(t *testing.T) {
	t.Parallel()

	score, top := CompositeScore(domain.Rating{
		"accuracy":         5,
		"practical_value":  5,
		"potential_impact": 5,
		"databases":        3,
		"networking":       7,
	})
	// 5+5+5+7 = 22 -> round(22/40*100) = 55
	if score != 55 {
		t.Fatalf("expected 55, got %d", score)
	}
	if top != "networking" {
		t.Fatalf("expected networking, got %q", top)
	}
}

func TestCompositeScoreTieBreaksLexicographically(t *testing.T) {
	t.Parallel()

	_, top := CompositeScore(domain.Rating{
		"zebra": 6,
		"alpha": 6,
		"mid":   6,
	})
	if top != "alpha" {
		t.Fatalf("expected lexicographic tie-break to alpha, got %q", top)
	}
}

func TestCompositeScoreClampsOutOfRangeRatings(t *testing.T) {
	t.Parallel()

	score, _ := CompositeScore(domain.Rating{
		"accuracy":         50,
		"practical_value":  50,
		"potential_impact": 50,
		"golang":           50,
	})
	if score != 100 {
		t.Fatalf("expected clamp to 100, got %d", score)
	}

	score, _ = CompositeScore(domain.Rating{
		"accuracy": -50,
	})
	if score != 0 {
		t.Fatalf("expected clamp to 0, got %d", score)
	}
}

func TestCompositeScoreNoTopicalCategories(t *testing.T) {
	t.Parallel()

	score, top := CompositeScore(domain.Rating{
		"accuracy":         10,
		"practical_value":  10,
		"potential_impact": 10,
	})
	// 30/40 = 75 with no topical contribution.
	if score != 75 {
		t.Fatalf("expected 75, got %d", score)
	}
	if top != "" {
		t.Fatalf("expected no dominant category, got %q", top)
	}
}

func TestParseDocumentDefaultsMissingFields(t *testing.T) {
	t.Parallel()

	doc, err := ParseDocument([]byte(`{"title":"Only a title"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title != "Only a title" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if doc.Brief != "" || doc.Summary != "" || doc.Source != "" {
		t.Fatalf("missing fields must default to empty: %+v", doc)
	}

	score, top := CompositeScore(doc.Rating)
	if score != 0 || top != "" {
		t.Fatalf("nil rating must score zero, got %d/%q", score, top)
	}
}

func TestParseDocumentMalformed(t *testing.T) {
	t.Parallel()

	if _, err := ParseDocument([]byte(`{not json`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
