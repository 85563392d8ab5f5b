// Package index exposes the passage similarity search the assistant retrieves
// knowledge from. The production backend is Weaviate; an in-process lexical
// index backs tests and index-less runs.
package index

import (
	"context"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
)

// Searcher finds the k nearest passages for a free-text query.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]domain.ScoredPassage, error)
}
