package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/ecomarket-assistant/internal/classifier"
	"github.com/spec-kit/ecomarket-assistant/internal/completion"
	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	"github.com/spec-kit/ecomarket-assistant/internal/index"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/products"
)

// retrievalK documents feed the answer context.
const retrievalK = 10

const answerPrompt = `Eres el asistente virtual de EcoMarket, una plataforma de e-commerce sostenible.

CAPACIDADES DEL SISTEMA:
- Consultar inventario de productos ecológicos disponibles
- Gestionar tickets de clientes (devoluciones, compras, seguimientos, facturas, quejas)
- Responder preguntas sobre políticas, procesos y productos
- Buscar información en documentación corporativa

REGLAS DE RESPUESTA:
1. Usa ÚNICAMENTE la información del contexto proporcionado
2. NO inventes ni hagas suposiciones sobre información no presente
3. Si el contexto no contiene la información específica, di claramente "No encontré esa información específica en nuestros documentos"
4. Sé preciso con números, emails y teléfonos - copia exactamente como aparece
5. Si encuentras información de contacto, úsala exactamente como está escrita en el contexto
6. Si no estás seguro de algo, es mejor decir que no tienes esa información que inventar algo
7. Responde de manera amigable, profesional y útil
8. Si el contexto menciona un producto específico, incluye todos sus detalles (precio, stock, categoría)

Pregunta del usuario: %s

Contexto relevante:
%s

Tu respuesta (responde en el idioma del usuario):`

// Responder answers free-text questions over the document index, routing
// product questions through the matcher. Every answer degrades to a
// deterministic apology when the index or the completion model is missing.
type Responder struct {
	classifier *classifier.Classifier
	matcher    *products.Matcher
	index      index.Searcher
	completion completion.Client
	tracer     *observability.Tracer
	temp       float64
}

// NewResponder wires the responder. index and client may be nil; the
// responder then serves only its fallback answers.
func NewResponder(cls *classifier.Classifier, matcher *products.Matcher, searcher index.Searcher, client completion.Client, tracer *observability.Tracer, temperature float64) *Responder {
	return &Responder{
		classifier: cls,
		matcher:    matcher,
		index:      searcher,
		completion: client,
		tracer:     tracer,
		temp:       temperature,
	}
}

// Ready reports whether the document index is available.
func (r *Responder) Ready() bool {
	return r.index != nil
}

// ProcessQuery answers a question. Product questions go through the
// inventory matcher; everything else retrieves documents and asks the
// completion model. Failures never escape; the caller always gets a
// customer-facing string.
func (r *Responder) ProcessQuery(ctx context.Context, traceID, question string) string {
	if !r.Ready() {
		return products.FallbackResponse()
	}

	info := r.classifier.Classify(traceID, question)
	r.tracer.Info(traceID, "AGENT_PROCESSING", fmt.Sprintf("Procesando consulta tipo: %s", info.Category),
		map[string]any{"category": info.Category, "is_list_query": info.IsListQuery})

	if products.IsProductQuery(question, info) {
		return r.handleProductQuery(ctx, traceID, question, info)
	}

	if info.IsListQuery {
		if products.IsProductListQuery(question, info) {
			return r.handleProductQuery(ctx, traceID, question, info)
		}
		return r.handleListQuery(ctx, traceID, question)
	}

	return r.answer(ctx, traceID, question, question)
}

// ProductSearch answers an inventory question directly, skipping the
// routing heuristics. Used when an upstream plan already chose the tool.
func (r *Responder) ProductSearch(ctx context.Context, traceID, question string) string {
	if !r.Ready() {
		return products.FallbackResponse()
	}
	info := r.classifier.Classify(traceID, question)
	return r.handleProductQuery(ctx, traceID, question, info)
}

func (r *Responder) handleProductQuery(ctx context.Context, traceID, question string, info domain.Classification) string {
	opts := products.ParseQuery(question, info)
	result, err := r.matcher.CheckExistence(ctx, traceID, question, opts)
	if err != nil {
		r.tracer.Error(traceID, "RAG_ERROR", fmt.Sprintf("Error procesando consulta: %s", err),
			map[string]any{"question": truncate(question, 100), "error": err.Error()})
		return products.ErrorResponse()
	}
	return products.FormatResult(result)
}

// handleListQuery widens retrieval with query variations before answering.
func (r *Responder) handleListQuery(ctx context.Context, traceID, question string) string {
	seen := map[string]bool{}
	var contexts []string
	for _, variant := range r.classifier.SearchVariations(question) {
		hits, err := r.index.SimilaritySearch(ctx, variant, retrievalK)
		if err != nil {
			continue
		}
		for _, hit := range hits {
			if seen[hit.Passage.Content] {
				continue
			}
			seen[hit.Passage.Content] = true
			contexts = append(contexts, hit.Passage.Content)
		}
	}
	return r.complete(ctx, traceID, question, contexts)
}

func (r *Responder) answer(ctx context.Context, traceID, question, searchQuery string) string {
	hits, err := r.index.SimilaritySearch(ctx, searchQuery, retrievalK)
	if err != nil {
		r.tracer.Error(traceID, "RAG_ERROR", fmt.Sprintf("Error procesando consulta: %s", err),
			map[string]any{"question": truncate(question, 100), "error": err.Error()})
		return products.ErrorResponse()
	}
	contexts := make([]string, 0, len(hits))
	for _, hit := range hits {
		contexts = append(contexts, hit.Passage.Content)
	}
	return r.complete(ctx, traceID, question, contexts)
}

func (r *Responder) complete(ctx context.Context, traceID, question string, contexts []string) string {
	if r.completion == nil {
		return products.FallbackResponse()
	}
	contextBlock := strings.Join(contexts, "\n\n")
	if contextBlock == "" {
		contextBlock = "(sin documentos relevantes)"
	}
	reply, err := r.completion.Complete(ctx, completion.Request{
		Prompt:      fmt.Sprintf(answerPrompt, question, contextBlock),
		Temperature: r.temp,
	})
	if err != nil {
		r.tracer.Error(traceID, "RAG_ERROR", fmt.Sprintf("Error procesando consulta: %s", err),
			map[string]any{"question": truncate(question, 100), "error": err.Error()})
		return products.FallbackResponse()
	}
	return reply
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
