package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
)

func TestInprocIndexRanksByCoverage(t *testing.T) {
	idx := NewInprocIndex()
	idx.Add(
		domain.Passage{Content: "Nombre del Producto: Cargador Solar Portátil, Precio: $45000"},
		domain.Passage{Content: "Política de devoluciones de la tienda"},
	)

	hits, err := idx.SimilaritySearch(context.Background(), "cargador solar portátil", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Contains(t, hits[0].Passage.Content, "Cargador Solar")
	assert.InDelta(t, 0.0, hits[0].Distance, 1e-9)
	assert.InDelta(t, 1.0, hits[0].Similarity(), 1e-9)
	assert.Less(t, hits[1].Similarity(), hits[0].Similarity())
}

func TestInprocIndexHonorsK(t *testing.T) {
	idx := NewInprocIndex()
	for i := 0; i < 5; i++ {
		idx.Add(domain.Passage{Content: "jabón artesanal de lavanda"})
	}
	hits, err := idx.SimilaritySearch(context.Background(), "jabón", 3)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestSimilarityIsClampedAtZero(t *testing.T) {
	s := domain.ScoredPassage{Distance: 3.5}
	assert.Equal(t, 0.0, s.Similarity())
}
