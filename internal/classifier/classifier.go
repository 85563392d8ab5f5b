// Package classifier derives category, urgency, and intent for an utterance
// from fixed keyword tables. No model is involved, so classification is
// deterministic and safe to run on every turn.
package classifier

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
)

// categoryRule pairs a category with its trigger keywords. Order matters:
// the first category with a hit wins.
type categoryRule struct {
	name     string
	keywords []string
}

var categoryRules = []categoryRule{
	{"producto", []string{"producto", "productos", "inventario", "catálogo", "disponibilidad", "stock"}},
	{"precio", []string{"precio", "costo", "cuánto cuesta", "valor"}},
	{"contacto", []string{"teléfono", "whatsapp", "email", "contactar", "contacto"}},
	{"devolución", []string{"devolución", "devolver", "reembolso", "garantía", "cambio"}},
	{"envío", []string{"envío", "entrega", "shipping", "transporte", "días"}},
	{"general", []string{"información", "ayuda", "duda", "consulta"}},
}

var listKeywords = []string{
	"lista", "listado", "todos", "cuáles", "qué", "muéstrame",
	"selección", "opciones", "categorías",
}

var (
	urgentKeywords = []string{"urgente", "ya", "inmediato", "ahora"}
	highKeywords   = []string{"importante", "necesito", "requiero"}
)

var intentRules = []struct {
	name     string
	keywords []string
}{
	{"buy", []string{"quiero", "deseo", "busco", "necesito"}},
	{"track", []string{"tengo", "mi pedido", "mi compra"}},
	{"support", []string{"problema", "error", "no funciona"}},
	{"info", []string{"información", "qué es", "cuál es"}},
}

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

var knownProductWords = []string{"botella", "bolsa", "cepillo", "cargador"}

const historyCap = 100

// Entity is a literal extracted from an utterance.
type Entity struct {
	Type  string
	Value string
}

// Classifier classifies utterances and keeps a bounded history of them.
type Classifier struct {
	tracer *observability.Tracer

	mu      sync.Mutex
	history []string
}

// New builds a Classifier reporting into tracer.
func New(tracer *observability.Tracer) *Classifier {
	return &Classifier{tracer: tracer}
}

// Classify reads category, list-ness, urgency, and intent off the utterance.
func (c *Classifier) Classify(traceID, query string) domain.Classification {
	normalized := strings.ToLower(query)

	classification := domain.Classification{
		Original:    query,
		Normalized:  normalized,
		Category:    detectCategory(normalized),
		IsListQuery: isListQuery(normalized),
		Urgency:     detectUrgency(normalized),
		Intent:      detectIntent(normalized),
	}

	c.mu.Lock()
	c.history = append(c.history, query)
	if len(c.history) > historyCap {
		c.history = c.history[len(c.history)-historyCap:]
	}
	c.mu.Unlock()

	c.tracer.Info(traceID, "QUERY_CLASSIFICATION",
		fmt.Sprintf("Consulta clasificada: %s", classification.Category),
		map[string]any{
			"category":      classification.Category,
			"is_list_query": classification.IsListQuery,
			"urgency":       classification.Urgency,
			"intention":     classification.Intent,
		})

	return classification
}

// History returns the queries seen so far, oldest first.
func (c *Classifier) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.history))
	copy(out, c.history)
	return out
}

// ExtractEntities pulls product mentions and numeric literals.
func (c *Classifier) ExtractEntities(query string) []Entity {
	var entities []Entity
	lower := strings.ToLower(query)
	for _, word := range knownProductWords {
		if strings.Contains(lower, word) {
			entities = append(entities, Entity{Type: "product", Value: query})
			break
		}
	}
	for _, num := range numberPattern.FindAllString(query, -1) {
		entities = append(entities, Entity{Type: "number", Value: num})
	}
	return entities
}

// SearchVariations expands a query into retrieval-friendly rephrasings. The
// original query always comes first.
func (c *Classifier) SearchVariations(query string) []string {
	variations := []string{query}
	if isListQuery(strings.ToLower(query)) {
		variations = append(variations,
			query+" con precios",
			query+" disponibles",
			"productos relacionados con "+query,
		)
	}
	variations = append(variations,
		strings.ReplaceAll(query, "cuánto cuesta", "precio de"),
		strings.ReplaceAll(query, "qué productos", "catálogo"),
	)
	return variations
}

func detectCategory(query string) string {
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(query, kw) {
				return rule.name
			}
		}
	}
	return "general"
}

func isListQuery(query string) bool {
	for _, kw := range listKeywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

func detectUrgency(query string) string {
	for _, kw := range urgentKeywords {
		if strings.Contains(query, kw) {
			return "urgent"
		}
	}
	for _, kw := range highKeywords {
		if strings.Contains(query, kw) {
			return "high"
		}
	}
	return "normal"
}

func detectIntent(query string) string {
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(query, kw) {
				return rule.name
			}
		}
	}
	return "general"
}
