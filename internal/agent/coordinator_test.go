package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ecomarket-assistant/internal/classifier"
	"github.com/spec-kit/ecomarket-assistant/internal/completion"
	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	"github.com/spec-kit/ecomarket-assistant/internal/index"
	"github.com/spec-kit/ecomarket-assistant/internal/memory"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/products"
	"github.com/spec-kit/ecomarket-assistant/internal/rag"
	"github.com/spec-kit/ecomarket-assistant/internal/repository"
	"github.com/spec-kit/ecomarket-assistant/internal/tickets"
)

// newCoordinator builds the full turn pipeline on in-process stores. Any of
// the completion clients may be nil to exercise degraded paths.
func newCoordinator(reasoning, answering, synthesis completion.Client, passages ...domain.Passage) (*Coordinator, *observability.Tracer) {
	tracer := observability.NewTracer(500)
	idx := index.NewInprocIndex()
	idx.Add(passages...)
	cls := classifier.New(tracer)
	matcher := products.NewMatcher(idx, tracer, products.DefaultThreshold)
	responder := rag.NewResponder(cls, matcher, idx, answering, tracer, 0.3)
	tools := tickets.NewTools(repository.NewMemoryTicketStore(), tracer, repository.DefaultRetryPolicy)
	orchestrator := NewOrchestrator(responder, tools, reasoning, tracer, 0.1)
	synthesizer := NewSynthesizer(synthesis, tracer, 0.7)
	mem := memory.NewService(repository.NewInprocSessionMemory(), tracer, 5*time.Minute)
	return NewCoordinator(orchestrator, synthesizer, mem, tracer), tracer
}

func TestHandleTurnFullyDegradedNeverPanics(t *testing.T) {
	// No reasoning, answering or synthesis model anywhere.
	coordinator, tracer := newCoordinator(nil, nil, nil)

	result := coordinator.HandleTurn(context.Background(), "s1", "¿cuál es la política de devoluciones?")

	assert.NotEmpty(t, result.Response)
	assert.NotEmpty(t, result.TraceID)
	assert.NotEmpty(t, tracer.ByOperation("USER_QUERY_START"))
	assert.NotEmpty(t, tracer.ByOperation("USER_QUERY_COMPLETE"))
}

func TestHandleTurnMissingInfoShortCircuits(t *testing.T) {
	coordinator, tracer := newCoordinator(nil, nil, nil)

	result := coordinator.HandleTurn(context.Background(), "s1", "quiero abrir un ticket para devolver algo")

	assert.Contains(t, result.Response, "necesito un poco más de información")
	assert.Contains(t, result.Response, "tipo de ticket")
	assert.Empty(t, result.ToolsUsed, "no tools run when information is missing")
	assert.NotEmpty(t, tracer.ByOperation("MISSING_INFO_REQUESTED"))
	assert.Empty(t, tracer.ByOperation("TICKET_CREATE_START"))
}

func TestHandleTurnSharesOneTraceID(t *testing.T) {
	coordinator, tracer := newCoordinator(nil, completion.NewMockClient("respuesta"), completion.NewMockClient("respuesta final"))

	result := coordinator.HandleTurn(context.Background(), "s1", "¿cuál es el horario de atención?")

	records := tracer.ByTraceID(result.TraceID)
	require.NotEmpty(t, records)
	operations := map[string]bool{}
	for _, r := range records {
		operations[r.Operation] = true
	}
	assert.True(t, operations["USER_QUERY_START"])
	assert.True(t, operations["ORCHESTRATOR_ANALYSIS"])
	assert.True(t, operations["TOOLS_EXECUTED"])
	assert.True(t, operations["USER_QUERY_COMPLETE"])
}

func TestHandleTurnEnrichesAnalysisWithSessionMemory(t *testing.T) {
	reasoning := completion.NewMockClient(`{"intent": "Consultar información general", "tools_needed": ["RAG_SEARCH"], "requires_additional_info": false}`)
	coordinator, _ := newCoordinator(reasoning, completion.NewMockClient("respuesta"), nil)
	ctx := context.Background()

	first := coordinator.HandleTurn(ctx, "s1", "Hola, me llamo Ana Torres")
	require.Equal(t, "s1", first.SessionID)

	coordinator.HandleTurn(ctx, "s1", "¿cuál es la política de devoluciones?")

	calls := reasoning.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Prompt, "Contexto de la sesión:")
	assert.Contains(t, calls[1].Prompt, "nombre: Ana Torres")
}

func TestHandleTurnMintsSessionIDWhenEmpty(t *testing.T) {
	coordinator, _ := newCoordinator(nil, nil, nil)

	result := coordinator.HandleTurn(context.Background(), "", "hola, soy Pedro")

	assert.Regexp(t, `^session_[0-9a-f]{8}$`, result.SessionID)
}

func TestHandleTurnSynthesizesWithModel(t *testing.T) {
	synthesis := completion.NewMockClient("¡Hola! Claro, con mucho gusto te ayudo 🌿")
	coordinator, tracer := newCoordinator(nil, completion.NewMockClient("texto recuperado"), synthesis)

	result := coordinator.HandleTurn(context.Background(), "s1", "¿cuál es el horario de atención?")

	assert.Equal(t, "¡Hola! Claro, con mucho gusto te ayudo 🌿", result.Response)
	calls := synthesis.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "INFORMACIÓN RECUPERADA")
	assert.Contains(t, calls[0].Prompt, "texto recuperado")
	assert.NotEmpty(t, tracer.ByOperation("RESPONSE_GENERATED"))
}

func TestHandleTurnTicketFlowEndToEnd(t *testing.T) {
	coordinator, _ := newCoordinator(nil, nil, nil)
	ctx := context.Background()

	// The heuristic asks for the ticket type before creating anything.
	first := coordinator.HandleTurn(ctx, "s1", "quiero un ticket para devolver la botella, ana@example.com")
	assert.Contains(t, first.Response, "información")

	// A ticket-number query routes straight to the lookup.
	second := coordinator.HandleTurn(ctx, "s1", "consultar ticket TKT-1700000000-AB12CD34")
	assert.Equal(t, []string{domain.ToolTicketQuery}, second.ToolsUsed)
	assert.Contains(t, second.Response, "No se encontró el ticket TKT-1700000000-AB12CD34")
}
