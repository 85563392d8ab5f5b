package products

import (
	"regexp"
	"strings"
)

// NotAvailable marks a product field that could not be recovered from the
// chunk text.
const NotAvailable = "N/A"

// ProductFields is the product record recovered from one inventory chunk.
type ProductFields struct {
	Name     string
	Category string
	Quantity string
	Price    string
}

// fieldPatterns are tried in order per field; the first hit wins. Inventory
// exports have drifted over time, so each field carries the label variants
// seen in the wild.
type fieldPattern struct {
	field    string
	patterns []*regexp.Regexp
}

var contentPatterns = []fieldPattern{
	{"name", compileAll(
		`Nombre del Producto:\s*([^,]+)`,
		`Producto:\s*([^,|]+)`,
		`nombre:\s*([^,|]+)`,
	)},
	{"category", compileAll(
		`Categoría:\s*([^,]+)`,
		`Categoria:\s*([^,|]+)`,
		`categoría:\s*([^,|]+)`,
	)},
	{"quantity", compileAll(
		`Cantidad en Stock:\s*([^,]+)`,
		`Cantidad:\s*([^,|]+)`,
		`cantidad:\s*([^,|]+)`,
	)},
	{"price", compileAll(
		`Precio Unitario.*?:\s*([^,]+)`,
		`Precio:\s*([^,|]+)`,
		`precio:\s*([^,|]+)`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// ParseProductContent recovers product fields from chunk text like
// "Fila 4: Nombre del Producto: Cargador Solar Portátil, Categoría:
// Electrónica, Cantidad en Stock: 75, Precio Unitario ($): 49.99".
// Fields that cannot be recovered come back as "N/A".
func ParseProductContent(content string) ProductFields {
	result := ProductFields{
		Name:     NotAvailable,
		Category: NotAvailable,
		Quantity: NotAvailable,
		Price:    NotAvailable,
	}
	if content == "" {
		return result
	}

	for _, fp := range contentPatterns {
		for _, pattern := range fp.patterns {
			match := pattern.FindStringSubmatch(content)
			if match == nil {
				continue
			}
			value := strings.TrimRight(strings.TrimSpace(match[1]), ",")
			if value == "" {
				continue
			}
			result.set(fp.field, value)
			break
		}
	}

	if result.allMissing() {
		result.parseFreeForm(content)
	}
	return result
}

func (p *ProductFields) set(field, value string) {
	switch field {
	case "name":
		p.Name = value
	case "category":
		p.Category = value
	case "quantity":
		p.Quantity = value
	case "price":
		p.Price = value
	}
}

func (p ProductFields) allMissing() bool {
	return p.Name == NotAvailable && p.Category == NotAvailable &&
		p.Quantity == NotAvailable && p.Price == NotAvailable
}

// parseFreeForm handles "key: value" pairs split by commas when none of the
// labeled patterns hit.
func (p *ProductFields) parseFreeForm(content string) {
	for _, part := range strings.Split(content, ",") {
		part = strings.TrimSpace(part)
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch {
		case strings.Contains(key, "nombre") || strings.Contains(key, "producto"):
			p.Name = value
		case strings.Contains(key, "categor"):
			p.Category = value
		case strings.Contains(key, "cantidad") || strings.Contains(key, "stock"):
			p.Quantity = value
		case strings.Contains(key, "precio"):
			p.Price = value
		}
	}
}

// cleanPrice strips currency symbols and thousands separators.
func cleanPrice(price string) string {
	cleaned := strings.ReplaceAll(price, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return strings.TrimSpace(cleaned)
}
