package products

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
)

func TestParseProductContentLabeledFormat(t *testing.T) {
	content := "Fila 4: Nombre del Producto: Cargador Solar Portátil, Categoría: Electrónica, Cantidad en Stock: 75, Precio Unitario ($): 49.99, Fecha de Ingreso: 2025-09-15"

	got := ParseProductContent(content)
	assert.Equal(t, "Cargador Solar Portátil", got.Name)
	assert.Equal(t, "Electrónica", got.Category)
	assert.Equal(t, "75", got.Quantity)
	assert.Equal(t, "49.99", got.Price)
}

func TestParseProductContentPatternOrder(t *testing.T) {
	// Both labels present: the more specific one wins.
	content := "Nombre del Producto: Botella Térmica, Producto: otra cosa, Precio Unitario ($): 35000, Precio: 1"
	got := ParseProductContent(content)
	assert.Equal(t, "Botella Térmica", got.Name)
	assert.Equal(t, "35000", got.Price)
}

func TestParseProductContentShortLabels(t *testing.T) {
	got := ParseProductContent("Producto: Cepillo de Bambú, Categoria: Higiene, Cantidad: 120, Precio: 8000")
	assert.Equal(t, "Cepillo de Bambú", got.Name)
	assert.Equal(t, "Higiene", got.Category)
	assert.Equal(t, "120", got.Quantity)
	assert.Equal(t, "8000", got.Price)
}

func TestParseProductContentFreeFormFallback(t *testing.T) {
	got := ParseProductContent("articulo nombre: Bolsa de Tela, stock total: 15, valor precio: 12000")
	assert.Equal(t, "Bolsa de Tela", got.Name)
	assert.Equal(t, "15", got.Quantity)
	assert.Equal(t, "12000", got.Price)
}

func TestParseProductContentEmpty(t *testing.T) {
	got := ParseProductContent("")
	assert.Equal(t, NotAvailable, got.Name)
	assert.Equal(t, NotAvailable, got.Category)
	assert.Equal(t, NotAvailable, got.Quantity)
	assert.Equal(t, NotAvailable, got.Price)
}

func TestCleanPrice(t *testing.T) {
	assert.Equal(t, "49999.50", cleanPrice(" $49,999.50 "))
	assert.Equal(t, "8000", cleanPrice("8000"))
}

func TestParseQueryModes(t *testing.T) {
	classify := func(isList bool) domain.Classification {
		return domain.Classification{IsListQuery: isList}
	}

	opts := ParseQuery("¿Tienen cargador solar?", classify(false))
	assert.Equal(t, SearchProduct, opts.SearchType)

	opts = ParseQuery("¿qué categorías de productos tienes?", classify(true))
	assert.Equal(t, SearchAllCategories, opts.SearchType)

	opts = ParseQuery("muéstrame todos los productos disponibles", classify(true))
	assert.Equal(t, SearchAllProducts, opts.SearchType)

	opts = ParseQuery("lista: jabón, cepillo y botella", classify(true))
	assert.Equal(t, SearchList, opts.SearchType)

	opts = ParseQuery("productos de la categoría hogar", classify(false))
	assert.Equal(t, SearchCategory, opts.SearchType)
	assert.Equal(t, "Hogar", opts.CategoryFilter)

	opts = ParseQuery("¿hay productos de menos de 20000?", classify(false))
	assert.Equal(t, SearchPrice, opts.SearchType)
	if assert.NotNil(t, opts.PriceMax) {
		assert.Equal(t, 20000.0, *opts.PriceMax)
	}

	opts = ParseQuery("busco algo de más de 50000", classify(false))
	assert.Equal(t, SearchPrice, opts.SearchType)
	if assert.NotNil(t, opts.PriceMin) {
		assert.Equal(t, 50000.0, *opts.PriceMin)
	}
}

func TestIsProductQuery(t *testing.T) {
	assert.True(t, IsProductQuery("¿tienen botellas?", domain.Classification{Category: "general"}))
	assert.True(t, IsProductQuery("hola", domain.Classification{Category: "producto"}))
	assert.False(t, IsProductQuery("¿cómo los contacto?", domain.Classification{Category: "contacto"}))
}
