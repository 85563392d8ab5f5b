// Package products answers inventory questions against the similarity
// index. Only chunks originating from inventory files are considered;
// policy documents and FAQs sharing the index never surface as products.
package products

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	"github.com/spec-kit/ecomarket-assistant/internal/index"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	apperrors "github.com/spec-kit/ecomarket-assistant/pkg/util/errorutil"
)

// SearchType selects the matcher mode.
type SearchType string

const (
	SearchProduct       SearchType = "producto"
	SearchExactName     SearchType = "nombre_exacto"
	SearchList          SearchType = "lista"
	SearchCategory      SearchType = "categoria"
	SearchPrice         SearchType = "precio"
	SearchAllCategories SearchType = "todas_categorias"
	SearchAllProducts   SearchType = "todos_productos"
)

const (
	// singleSearchK bounds nearest-neighbor fan-out for one product lookup.
	singleSearchK = 10
	// bulkSearchK effectively retrieves the whole inventory for list modes.
	bulkSearchK = 999
	// highSimilarity marks near-certain matches; when several clear it the
	// caller gets all of them instead of just the best.
	highSimilarity = 0.9
	// DefaultThreshold is the minimum similarity for a product to count as
	// existing.
	DefaultThreshold = 0.7
)

// Options carries the optional filters of a search.
type Options struct {
	SearchType     SearchType
	CategoryFilter string
	PriceMin       *float64
	PriceMax       *float64
	Threshold      float64
}

// ProductDetails is one matched product with its similarity score.
type ProductDetails struct {
	Name       string
	Category   string
	Quantity   string
	Price      string
	Similarity float64
}

// MatchResult is the outcome of a single-product lookup.
type MatchResult struct {
	Exists       bool
	Name         string
	Category     string
	Quantity     string
	Price        string
	Similarity   float64
	Message      string
	Content      string
	Alternatives []ProductDetails
	Err          string
}

// ListItem is the per-product outcome of a comma-separated list lookup.
type ListItem struct {
	QueryName string
	Exists    bool
	Similarity float64
	Match     *ProductDetails
	Message   string
}

// ListResult aggregates a list lookup.
type ListResult struct {
	Items         []ListItem
	TotalFound    int
	TotalSearched int
	Err           string
}

// CatalogProduct is an inventory row as shown in category and catalog modes.
type CatalogProduct struct {
	Name     string
	Category string
	Quantity string
	Price    string
}

// CategoryResult lists the products of one category.
type CategoryResult struct {
	Category string
	Products []CatalogProduct
	Total    int
	Err      string
}

// PricedProduct is an inventory row with a parsed numeric price.
type PricedProduct struct {
	Name     string
	Category string
	Quantity string
	Price    float64
}

// PriceResult lists the products inside a price range, cheapest first.
type PriceResult struct {
	Min      *float64
	Max      *float64
	Products []PricedProduct
	Total    int
	Err      string
}

// CategoryCount is one category with its product count.
type CategoryCount struct {
	Category     string
	ProductCount int
}

// CategoriesResult lists every inventory category, busiest first.
type CategoriesResult struct {
	Categories []CategoryCount
	Total      int
	Err        string
}

// CatalogResult lists the whole inventory alphabetically.
type CatalogResult struct {
	Products []CatalogProduct
	Total    int
	Err      string
}

// Result is the union of the per-mode outcomes; exactly one field is set.
type Result struct {
	Match      *MatchResult
	List       *ListResult
	Category   *CategoryResult
	Price      *PriceResult
	Categories *CategoriesResult
	Catalog    *CatalogResult
}

// Matcher runs inventory searches over the similarity index.
type Matcher struct {
	index     index.Searcher
	tracer    *observability.Tracer
	threshold float64
}

// NewMatcher builds a Matcher. A zero threshold falls back to the default.
func NewMatcher(searcher index.Searcher, tracer *observability.Tracer, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{index: searcher, tracer: tracer, threshold: threshold}
}

// CheckExistence dispatches a query to the mode named in opts. An empty
// query is the only input refused outright; index failures are reported
// inside the result so conversational callers can degrade.
func (m *Matcher) CheckExistence(ctx context.Context, traceID, query string, opts Options) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.NewInputMalformed("el query de búsqueda no puede estar vacío", nil)
	}

	switch opts.SearchType {
	case SearchProduct, "":
		return &Result{Match: m.SearchSingle(ctx, traceID, query, opts, false)}, nil
	case SearchExactName:
		return &Result{Match: m.SearchSingle(ctx, traceID, query, opts, true)}, nil
	case SearchList:
		return &Result{List: m.SearchProductList(ctx, traceID, query, opts)}, nil
	case SearchCategory:
		return &Result{Category: m.SearchByCategory(ctx, traceID, query, opts.CategoryFilter)}, nil
	case SearchPrice:
		return &Result{Price: m.SearchByPrice(ctx, traceID, query, opts.PriceMin, opts.PriceMax)}, nil
	case SearchAllCategories:
		return &Result{Categories: m.AllCategories(ctx, traceID)}, nil
	case SearchAllProducts:
		return &Result{Catalog: m.AllProducts(ctx, traceID)}, nil
	default:
		return nil, apperrors.NewInputMalformed(
			fmt.Sprintf("tipo de búsqueda no válido: %s", opts.SearchType), nil)
	}
}

// SearchSingle finds the best inventory match for one product name. When
// exact is set only the top match is considered; otherwise several
// near-certain matches (similarity > 0.9) are all returned.
func (m *Matcher) SearchSingle(ctx context.Context, traceID, query string, opts Options, exact bool) *MatchResult {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = m.threshold
	}

	hits, err := m.index.SimilaritySearch(ctx, query, singleSearchK)
	if err != nil {
		m.tracer.Error(traceID, "SEARCH_ERROR",
			fmt.Sprintf("Error en búsqueda individual: %v", err), nil)
		return &MatchResult{Exists: false, Err: err.Error()}
	}

	type scoredHit struct {
		passage    domain.Passage
		similarity float64
	}
	var filtered []scoredHit
	for _, hit := range hits {
		if !isInventory(hit.Passage.Metadata) {
			continue
		}
		similarity := hit.Similarity()
		if similarity < threshold {
			continue
		}
		if !matchesFilters(hit.Passage, opts.CategoryFilter, opts.PriceMin, opts.PriceMax) {
			continue
		}
		filtered = append(filtered, scoredHit{passage: hit.Passage, similarity: similarity})
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].similarity > filtered[j].similarity
	})

	if exact && len(filtered) > 1 {
		filtered = filtered[:1]
	} else if !exact {
		var high []scoredHit
		for _, h := range filtered {
			if h.similarity > highSimilarity {
				high = append(high, h)
			}
		}
		if len(high) > 0 {
			filtered = high
		}
	}

	if len(filtered) == 0 {
		return &MatchResult{
			Exists:  false,
			Name:    query,
			Message: fmt.Sprintf("No se encontró producto con similitud >= %s", formatFloat(threshold)),
		}
	}

	best := filtered[0]
	fields := fieldsFor(best.passage)
	result := &MatchResult{
		Exists:     true,
		Name:       fields.Name,
		Category:   fields.Category,
		Quantity:   fields.Quantity,
		Price:      fields.Price,
		Similarity: round3(best.similarity),
		Message:    fmt.Sprintf("Producto encontrado con similitud %.2f", best.similarity),
		Content:    best.passage.Content,
	}
	for _, alt := range filtered[1:] {
		altFields := fieldsFor(alt.passage)
		result.Alternatives = append(result.Alternatives, ProductDetails{
			Name:       altFields.Name,
			Category:   altFields.Category,
			Quantity:   altFields.Quantity,
			Price:      altFields.Price,
			Similarity: round3(alt.similarity),
		})
	}
	return result
}

// SearchProductList resolves a comma-separated list of product names, one
// single-product search each.
func (m *Matcher) SearchProductList(ctx context.Context, traceID, query string, opts Options) *ListResult {
	var names []string
	for _, part := range strings.Split(query, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		return &ListResult{Err: "lista de productos vacía"}
	}

	result := &ListResult{TotalSearched: len(names)}
	for _, name := range names {
		single := m.SearchSingle(ctx, traceID, name, opts, false)
		item := ListItem{
			QueryName:  name,
			Exists:     single.Exists,
			Similarity: single.Similarity,
		}
		if single.Exists {
			item.Match = &ProductDetails{
				Name:       single.Name,
				Category:   single.Category,
				Quantity:   single.Quantity,
				Price:      single.Price,
				Similarity: single.Similarity,
			}
			result.TotalFound++
		} else {
			item.Message = single.Message
			if item.Message == "" {
				item.Message = "Producto no encontrado"
			}
		}
		result.Items = append(result.Items, item)
	}
	return result
}

// SearchByCategory lists the inventory of one category. The explicit filter
// wins over the query text.
func (m *Matcher) SearchByCategory(ctx context.Context, traceID, query, categoryFilter string) *CategoryResult {
	category := categoryFilter
	if category == "" {
		category = query
	}

	hits, err := m.index.SimilaritySearch(ctx,
		fmt.Sprintf("categoría %s productos disponibles stock", category), bulkSearchK)
	if err != nil {
		m.tracer.Error(traceID, "CATEGORY_SEARCH_ERROR",
			fmt.Sprintf("Error buscando por categoría: %v", err), nil)
		return &CategoryResult{Category: category, Err: err.Error()}
	}

	var productsFound []CatalogProduct
	for _, hit := range hits {
		if !isInventory(hit.Passage.Metadata) {
			continue
		}
		fields := fieldsFor(hit.Passage)
		if !categoriesOverlap(fields.Category, category) {
			continue
		}
		productsFound = append(productsFound, CatalogProduct{
			Name:     fields.Name,
			Category: fields.Category,
			Quantity: fields.Quantity,
			Price:    fields.Price,
		})
	}

	unique := dedupeByName(productsFound)
	return &CategoryResult{Category: category, Products: unique, Total: len(unique)}
}

var queryNumbers = regexp.MustCompile(`\d+\.?\d*`)

// SearchByPrice lists inventory inside a price range. Bounds missing from
// the arguments are recovered from numbers in the query text: two numbers
// set min and max, one number sets the max.
func (m *Matcher) SearchByPrice(ctx context.Context, traceID, query string, priceMin, priceMax *float64) *PriceResult {
	if priceMin == nil && priceMax == nil && query != "" {
		nums := queryNumbers.FindAllString(query, -1)
		if len(nums) >= 2 {
			if lo, err := strconv.ParseFloat(nums[0], 64); err == nil {
				priceMin = &lo
			}
			if hi, err := strconv.ParseFloat(nums[1], 64); err == nil {
				priceMax = &hi
			}
		} else if len(nums) == 1 {
			if hi, err := strconv.ParseFloat(nums[0], 64); err == nil {
				priceMax = &hi
			}
		}
	}
	if priceMin == nil && priceMax == nil {
		return &PriceResult{Err: "debe especificar precio_min y/o precio_max"}
	}

	hits, err := m.index.SimilaritySearch(ctx, "productos inventario stock disponible", bulkSearchK)
	if err != nil {
		m.tracer.Error(traceID, "PRICE_SEARCH_ERROR",
			fmt.Sprintf("Error buscando por precio: %v", err), nil)
		return &PriceResult{Min: priceMin, Max: priceMax, Err: err.Error()}
	}

	var priced []PricedProduct
	seen := make(map[string]bool)
	for _, hit := range hits {
		if !isInventory(hit.Passage.Metadata) {
			continue
		}
		fields := fieldsFor(hit.Passage)
		price, err := strconv.ParseFloat(cleanPrice(fields.Price), 64)
		if err != nil {
			continue
		}
		if priceMin != nil && price < *priceMin {
			continue
		}
		if priceMax != nil && price > *priceMax {
			continue
		}
		if seen[fields.Name] {
			continue
		}
		seen[fields.Name] = true
		priced = append(priced, PricedProduct{
			Name:     fields.Name,
			Category: fields.Category,
			Quantity: fields.Quantity,
			Price:    price,
		})
	}

	sort.SliceStable(priced, func(i, j int) bool { return priced[i].Price < priced[j].Price })
	return &PriceResult{Min: priceMin, Max: priceMax, Products: priced, Total: len(priced)}
}

// AllCategories tallies every inventory category, most populated first.
// Only categories recorded directly on chunk metadata count; long strings
// leaking from document text are dropped.
func (m *Matcher) AllCategories(ctx context.Context, traceID string) *CategoriesResult {
	hits, err := m.index.SimilaritySearch(ctx,
		"productos disponibles inventario stock categoría", bulkSearchK)
	if err != nil {
		m.tracer.Error(traceID, "GET_ALL_CATEGORIES_ERROR",
			fmt.Sprintf("Error obteniendo categorías: %v", err), nil)
		return &CategoriesResult{Err: err.Error()}
	}

	counts := make(map[string]int)
	var order []string
	for _, hit := range hits {
		if !isInventory(hit.Passage.Metadata) {
			continue
		}
		category := hit.Passage.Metadata["categoria"]
		if category == "" || category == NotAvailable || category == "Sin categoría" {
			continue
		}
		if len(category) >= 100 {
			continue
		}
		if _, ok := counts[category]; !ok {
			order = append(order, category)
		}
		counts[category]++
	}

	result := &CategoriesResult{}
	for _, category := range order {
		result.Categories = append(result.Categories, CategoryCount{
			Category:     category,
			ProductCount: counts[category],
		})
	}
	sort.SliceStable(result.Categories, func(i, j int) bool {
		return result.Categories[i].ProductCount > result.Categories[j].ProductCount
	})
	result.Total = len(result.Categories)

	m.tracer.Info(traceID, "GET_ALL_CATEGORIES",
		fmt.Sprintf("Encontradas %d categorías", result.Total),
		map[string]any{"total_categorias": result.Total})
	return result
}

// AllProducts lists the whole inventory alphabetically, deduplicated by
// name. Names that look like document text rather than products (very long,
// multiline, bullet points) are dropped.
func (m *Matcher) AllProducts(ctx context.Context, traceID string) *CatalogResult {
	hits, err := m.index.SimilaritySearch(ctx,
		"productos disponibles en inventario stock catalogo catálogo", bulkSearchK)
	if err != nil {
		m.tracer.Error(traceID, "GET_ALL_PRODUCTS_ERROR",
			fmt.Sprintf("Error obteniendo productos: %v", err), nil)
		return &CatalogResult{Err: err.Error()}
	}

	var productsFound []CatalogProduct
	for _, hit := range hits {
		if !isInventory(hit.Passage.Metadata) {
			continue
		}
		fields := fieldsFor(hit.Passage)
		if fields.Name == NotAvailable || fields.Name == "" {
			continue
		}
		if len(fields.Name) >= 200 || strings.HasPrefix(fields.Name, "-") || strings.Contains(fields.Name, "\n") {
			continue
		}
		category := fields.Category
		if category == NotAvailable {
			category = "Sin categoría"
		}
		productsFound = append(productsFound, CatalogProduct{
			Name:     fields.Name,
			Category: category,
			Quantity: fields.Quantity,
			Price:    fields.Price,
		})
	}

	unique := dedupeByName(productsFound)
	sort.SliceStable(unique, func(i, j int) bool { return unique[i].Name < unique[j].Name })

	m.tracer.Info(traceID, "GET_ALL_PRODUCTS",
		fmt.Sprintf("Encontrados %d productos", len(unique)),
		map[string]any{"total_productos": len(unique)})
	return &CatalogResult{Products: unique, Total: len(unique)}
}

// isInventory gates chunks to those originating from inventory files.
func isInventory(metadata map[string]string) bool {
	if metadata["source_type"] == "inventory" || metadata["file_type"] == "excel" {
		return true
	}
	source := strings.ToLower(metadata["source"])
	return source != "" && (strings.Contains(source, "inventario") || strings.Contains(source, ".xlsx"))
}

// fieldsFor prefers chunk metadata and falls back to parsing the chunk text
// when the metadata carries no product name.
func fieldsFor(passage domain.Passage) ProductFields {
	name := passage.Metadata["producto_nombre"]
	if name == "" || name == NotAvailable {
		return ParseProductContent(passage.Content)
	}
	return ProductFields{
		Name:     name,
		Category: orNA(passage.Metadata["categoria"]),
		Quantity: orNA(passage.Metadata["cantidad"]),
		Price:    orNA(passage.Metadata["precio"]),
	}
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// matchesFilters applies the optional category and price constraints.
func matchesFilters(passage domain.Passage, categoryFilter string, priceMin, priceMax *float64) bool {
	fields := fieldsFor(passage)
	if categoryFilter != "" && !categoriesOverlap(fields.Category, categoryFilter) {
		return false
	}
	if priceMin != nil || priceMax != nil {
		price, err := strconv.ParseFloat(cleanPrice(fields.Price), 64)
		if err != nil {
			return false
		}
		if priceMin != nil && price < *priceMin {
			return false
		}
		if priceMax != nil && price > *priceMax {
			return false
		}
	}
	return true
}

// categoriesOverlap matches loosely in both directions so "Electrónica"
// hits "electrónica y accesorios" and vice versa.
func categoriesOverlap(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == "" || lb == "" {
		return false
	}
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

func dedupeByName(list []CatalogProduct) []CatalogProduct {
	seen := make(map[string]bool)
	var unique []CatalogProduct
	for _, p := range list {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		unique = append(unique, p)
	}
	return unique
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
