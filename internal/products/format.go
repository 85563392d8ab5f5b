package products

import (
	"fmt"
	"strings"
)

// FormatResult renders whichever sub-result is populated.
func FormatResult(result *Result) string {
	switch {
	case result == nil:
		return FallbackResponse()
	case result.Match != nil:
		return FormatSingleProduct(result.Match)
	case result.List != nil:
		return FormatProductList(result.List)
	case result.Category != nil:
		return FormatCategory(result.Category)
	case result.Categories != nil:
		return FormatAllCategories(result.Categories)
	case result.Price != nil:
		return FormatPriceRange(result.Price)
	case result.Catalog != nil:
		return FormatCatalog(result.Catalog)
	default:
		return FallbackResponse()
	}
}

// FormatSingleProduct renders a single-product lookup.
func FormatSingleProduct(result *MatchResult) string {
	if !result.Exists {
		return `
❌ **Producto no encontrado**

No encontramos el producto que buscas en nuestro inventario.

¿Podrías intentar con:
- Otro nombre o descripción
- Buscar por categoría
- O contactarnos directamente:
  📧 soporte@ecomarket.com
  📞 +57 324 456 4450
`
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
✅ **Producto Encontrado:**

📦 **%s**
- Categoría: %s
- Cantidad en Stock: %s unidades
- Precio: $%s

¿Te gustaría más información sobre este producto?
`, result.Name, result.Category, result.Quantity, result.Price)

	if len(result.Alternatives) > 0 {
		b.WriteString("\n\n📋 **Productos alternativos similares:**\n")
		alternatives := result.Alternatives
		if len(alternatives) > 3 {
			alternatives = alternatives[:3]
		}
		for _, alt := range alternatives {
			fmt.Fprintf(&b, "- %s (Categoría: %s, Precio: $%s)\n", alt.Name, alt.Category, alt.Price)
		}
	}
	return b.String()
}

// FormatProductList renders a comma-separated list lookup.
func FormatProductList(result *ListResult) string {
	if result.TotalFound == 0 {
		return `
❌ **No se encontraron productos**

No se encontraron productos en nuestro inventario.

¿Podrías intentar con otros términos de búsqueda?
`
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
📋 **Resultados de Búsqueda:**

Encontrados %d de %d productos buscados:

`, result.TotalFound, result.TotalSearched)

	for idx, item := range result.Items {
		if item.Exists && item.Match != nil {
			fmt.Fprintf(&b, "%d. ✅ **%s**\n", idx+1, item.QueryName)
			fmt.Fprintf(&b, "   → %s\n", item.Match.Name)
			fmt.Fprintf(&b, "   - Categoría: %s\n", item.Match.Category)
			fmt.Fprintf(&b, "   - Stock: %s\n", item.Match.Quantity)
			fmt.Fprintf(&b, "   - Precio: $%s\n\n", item.Match.Price)
		} else {
			fmt.Fprintf(&b, "%d. ❌ **%s** (No encontrado)\n\n", idx+1, item.QueryName)
		}
	}
	return b.String()
}

// FormatCategory renders a category listing.
func FormatCategory(result *CategoryResult) string {
	if result.Total == 0 {
		return fmt.Sprintf(`
❌ **No se encontraron productos**

No hay productos en la categoría '%s' actualmente disponibles.
`, result.Category)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
📦 **Productos en categoría: %s**

Encontrados %d productos:

`, result.Category, result.Total)

	for idx, p := range result.Products {
		fmt.Fprintf(&b, "%d. **%s**\n", idx+1, p.Name)
		fmt.Fprintf(&b, "   - Stock: %s unidades\n", p.Quantity)
		fmt.Fprintf(&b, "   - Precio: $%s\n\n", p.Price)
	}
	return b.String()
}

// FormatAllCategories renders the category overview.
func FormatAllCategories(result *CategoriesResult) string {
	if result.Total == 0 {
		return `
❌ **No se encontraron categorías**

No hay categorías disponibles en nuestro inventario actual.
`
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
📦 **Categorías Disponibles:**

Tienes %d categorías de productos:

`, result.Total)

	for idx, cat := range result.Categories {
		fmt.Fprintf(&b, "%d. **%s** (%d productos)\n", idx+1, cat.Category, cat.ProductCount)
	}
	b.WriteString("\n💡 *Pregúntame por productos de una categoría específica para ver más detalles*")
	return b.String()
}

// FormatPriceRange renders a price range listing, cheapest first.
func FormatPriceRange(result *PriceResult) string {
	if result.Total == 0 {
		return `
❌ **No se encontraron productos**

No hay productos en ese rango de precio actualmente disponibles.
`
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
📦 **Productos en el rango de precio**

Encontrados %d productos:

`, result.Total)

	for idx, p := range result.Products {
		fmt.Fprintf(&b, "%d. **%s**\n", idx+1, p.Name)
		fmt.Fprintf(&b, "   - Categoría: %s\n", p.Category)
		fmt.Fprintf(&b, "   - Precio: $%.2f\n\n", p.Price)
	}
	return b.String()
}

// FormatCatalog renders the whole inventory grouped by category.
func FormatCatalog(result *CatalogResult) string {
	if result.Total == 0 {
		return `
❌ **No se encontraron productos**

No hay productos disponibles en nuestro inventario actual.
`
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
📦 **Catálogo Completo - %d Productos Disponibles**

`, result.Total)

	grouped := make(map[string][]CatalogProduct)
	var order []string
	for _, p := range result.Products {
		if _, ok := grouped[p.Category]; !ok {
			order = append(order, p.Category)
		}
		grouped[p.Category] = append(grouped[p.Category], p)
	}

	for _, category := range order {
		prods := grouped[category]
		fmt.Fprintf(&b, "\n### %s (%d productos)\n\n", category, len(prods))
		for _, p := range prods {
			fmt.Fprintf(&b, "**%s**\n", p.Name)
			fmt.Fprintf(&b, "- Stock: %s unidades\n", p.Quantity)
			fmt.Fprintf(&b, "- Precio: $%s\n\n", p.Price)
		}
	}

	b.WriteString("\n💡 *¿Te interesa algún producto en particular? Pregúntame por más detalles*")
	return b.String()
}

// FallbackResponse is the reply when the assistant cannot answer at all.
func FallbackResponse() string {
	return `
🙏 Disculpa, actualmente estamos configurando nuestro sistema de respuestas automáticas.

Por favor, contacta directamente con nuestro equipo de soporte:
- 📧 Email: soporte@ecomarket.com
- 📞 Teléfono: +57 324 456 4450
- ⏰ Horario: Lunes a Viernes 9:00 AM - 6:00 PM
`
}

// ErrorResponse is the apology used when a turn fails outright.
func ErrorResponse() string {
	return `
😔 Lo siento, tuve un problema al procesar tu consulta.

Por favor, intenta nuevamente o contacta a nuestro equipo:
- 📧 soporte@ecomarket.com
- 📞 +57 324 456 4450
`
}
