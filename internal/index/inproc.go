package index

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
)

// InprocIndex is a lexical stand-in for the vector index. Distance is
// derived from query token coverage: a passage containing every query token
// scores distance 0, one containing none scores 2. Deterministic, so tests
// can assert exact similarity values.
type InprocIndex struct {
	mu       sync.RWMutex
	passages []domain.Passage
}

// NewInprocIndex builds an empty index.
func NewInprocIndex() *InprocIndex {
	return &InprocIndex{}
}

// Add appends passages to the index.
func (idx *InprocIndex) Add(passages ...domain.Passage) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.passages = append(idx.passages, passages...)
}

// SimilaritySearch ranks passages by token coverage of the query.
func (idx *InprocIndex) SimilaritySearch(_ context.Context, query string, k int) ([]domain.ScoredPassage, error) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	scored := make([]domain.ScoredPassage, 0, len(idx.passages))
	for _, p := range idx.passages {
		contentTokens := tokenSet(p.Content)
		matched := 0
		for _, tok := range queryTokens {
			if contentTokens[tok] {
				matched++
			}
		}
		coverage := float64(matched) / float64(len(queryTokens))
		scored = append(scored, domain.ScoredPassage{
			Passage:  p,
			Distance: 2 * (1 - coverage),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func tokenize(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', ':', ';', '?', '¿', '!', '¡', '(', ')':
			return ' '
		}
		return r
	}, strings.ToLower(s))
	return strings.Fields(cleaned)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenize(s) {
		set[tok] = true
	}
	return set
}
