package products

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
)

var productQueryKeywords = []string{
	"¿tienen", "¿tienes", "¿hay", "¿existe", "¿disponible",
	"producto", "productos", "catalogo", "catálogo", "inventario",
	"en stock", "disponibilidad", "busco", "necesito", "quiero",
	"por categoria", "por categoría", "menos de", "menor a",
	"mayor a", "más de", "precio",
}

var productListKeywords = []string{
	"producto", "productos", "catalogo", "catálogo", "inventario",
	"en stock", "disponibilidad", "busco", "necesito", "quiero",
	"categoría", "categoria", "precio", "stock", "disponible",
}

// The category name usually follows the word "categoría"; "de" is the looser
// fallback. Unicode word classes so accented names capture whole.
var (
	categoryAfterLabel = regexp.MustCompile(`(?:categoría|categoria)\s+([\p{L}\p{N}_]+)`)
	categoryAfterDe    = regexp.MustCompile(`de\s+([\p{L}\p{N}_]+)`)
)

// IsProductQuery reports whether the question should go through the matcher
// rather than plain retrieval.
func IsProductQuery(question string, classification domain.Classification) bool {
	if classification.Category == "producto" {
		return true
	}
	lower := strings.ToLower(question)
	for _, kw := range productQueryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsProductListQuery reports whether a list-style question is about the
// inventory specifically.
func IsProductListQuery(question string, classification domain.Classification) bool {
	if classification.Category == "producto" {
		return true
	}
	lower := strings.ToLower(question)
	for _, kw := range productListKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ParseQuery derives the search mode and filters from the question text.
func ParseQuery(question string, classification domain.Classification) Options {
	lower := strings.ToLower(question)
	opts := Options{SearchType: SearchProduct}

	askingAboutCategories := strings.Contains(lower, "qué categor") ||
		strings.Contains(lower, "que categor") ||
		strings.Contains(lower, "cuales categor") ||
		strings.Contains(lower, "cuáles categor") ||
		strings.Contains(lower, "que tipos") ||
		strings.Contains(lower, "qué tipos")

	if (strings.Contains(lower, "categoría") || strings.Contains(lower, "categoria")) && !askingAboutCategories {
		match := categoryAfterLabel.FindStringSubmatch(lower)
		if match == nil {
			match = categoryAfterDe.FindStringSubmatch(lower)
		}
		if match != nil {
			opts.CategoryFilter = title(match[1])
			opts.SearchType = SearchCategory
		}
	}

	if askingAboutCategories {
		opts.SearchType = SearchAllCategories
	}

	if nums := queryNumbers.FindAllString(question, -1); len(nums) > 0 {
		if price, err := strconv.ParseFloat(nums[0], 64); err == nil {
			if strings.Contains(lower, "menos de") || strings.Contains(lower, "menor a") {
				opts.PriceMax = &price
				opts.SearchType = SearchPrice
			} else if strings.Contains(lower, "más de") || strings.Contains(lower, "mayor a") {
				opts.PriceMin = &price
				opts.SearchType = SearchPrice
			}
		}
	}

	isList := strings.Contains(lower, "lista") ||
		strings.Contains(lower, "cuáles") ||
		strings.Contains(lower, "qué productos") ||
		strings.Contains(lower, "muestra") ||
		classification.IsListQuery

	wantsEverything := strings.Contains(lower, "todos los productos") ||
		strings.Contains(lower, "todos tus productos") ||
		strings.Contains(lower, "todos productos") ||
		strings.Contains(lower, "catálogo completo") ||
		(strings.Contains(lower, "lista") && strings.Contains(lower, "disponibles")) ||
		(strings.Contains(lower, "lista") && strings.Contains(lower, "tienes")) ||
		(strings.Contains(lower, "qué productos") && strings.Contains(lower, "tienes"))

	hasMultipleProducts := strings.Contains(question, ",") || strings.Contains(question, " y ")

	// The list cascade only applies when no more specific mode already won;
	// a category or price question keeps its mode even when phrased as a
	// list.
	if opts.SearchType == SearchProduct {
		switch {
		case wantsEverything:
			opts.SearchType = SearchAllProducts
		case isList && hasMultipleProducts:
			opts.SearchType = SearchList
		case isList:
			opts.SearchType = SearchAllProducts
		}
	}

	return opts
}

func title(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
