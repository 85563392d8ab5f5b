package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePassagesMapsProductMetadata(t *testing.T) {
	data := map[string]any{
		"Get": map[string]any{
			"DocumentChunk": []any{
				map[string]any{
					"content":         "Nombre del Producto: Botella Reutilizable, Categoría: Hogar",
					"source":          "inventario_final.xlsx",
					"source_type":     "inventory",
					"file_type":       "excel",
					"producto_nombre": "Botella Reutilizable",
					"categoria":       "Hogar",
					"cantidad":        "25",
					"precio":          "18.50",
					"_additional":     map[string]any{"distance": 0.2},
				},
				map[string]any{
					"content":         "Las devoluciones se aceptan dentro de 30 días.",
					"source":          "politicas.pdf",
					"source_type":     "policy",
					"file_type":       "pdf",
					"producto_nombre": nil,
					"categoria":       nil,
					"cantidad":        nil,
					"precio":          nil,
					"_additional":     map[string]any{"distance": 0.8},
				},
			},
		},
	}

	hits, err := decodePassages(data, "DocumentChunk")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	inventory := hits[0].Passage
	assert.Equal(t, "Botella Reutilizable", inventory.Metadata["producto_nombre"])
	assert.Equal(t, "Hogar", inventory.Metadata["categoria"])
	assert.Equal(t, "25", inventory.Metadata["cantidad"])
	assert.Equal(t, "18.50", inventory.Metadata["precio"])
	assert.Equal(t, "inventory", inventory.Metadata["source_type"])
	assert.InDelta(t, 0.9, hits[0].Similarity(), 1e-9)

	policy := hits[1].Passage
	assert.Equal(t, "pdf", policy.Metadata["file_type"])
	_, hasName := policy.Metadata["producto_nombre"]
	assert.False(t, hasName, "null product properties stay out of the metadata")
}

func TestDecodePassagesEmptyResponse(t *testing.T) {
	hits, err := decodePassages(map[string]any{"Get": map[string]any{}}, "DocumentChunk")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
