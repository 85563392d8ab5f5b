package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ecomarket-assistant/internal/classifier"
	"github.com/spec-kit/ecomarket-assistant/internal/completion"
	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	"github.com/spec-kit/ecomarket-assistant/internal/index"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/products"
	"github.com/spec-kit/ecomarket-assistant/internal/rag"
	"github.com/spec-kit/ecomarket-assistant/internal/repository"
	"github.com/spec-kit/ecomarket-assistant/internal/tickets"
)

type brokenStore struct{}

func (brokenStore) Create(context.Context, *domain.Ticket) error { return assert.AnError }
func (brokenStore) Update(context.Context, *domain.Ticket) error { return assert.AnError }
func (brokenStore) GetByNumber(context.Context, string) (*domain.Ticket, error) {
	return nil, assert.AnError
}
func (brokenStore) ListWithFilter(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, assert.AnError
}
func (brokenStore) Delete(context.Context, string) error { return assert.AnError }

type fixture struct {
	orchestrator *Orchestrator
	tracer       *observability.Tracer
	index        *index.InprocIndex
}

func newFixture(reasoning completion.Client, answering completion.Client, store repository.TicketStore) fixture {
	tracer := observability.NewTracer(200)
	idx := index.NewInprocIndex()
	cls := classifier.New(tracer)
	matcher := products.NewMatcher(idx, tracer, products.DefaultThreshold)
	responder := rag.NewResponder(cls, matcher, idx, answering, tracer, 0.3)
	if store == nil {
		store = repository.NewMemoryTicketStore()
	}
	tools := tickets.NewTools(store, tracer, repository.DefaultRetryPolicy)
	return fixture{
		orchestrator: NewOrchestrator(responder, tools, reasoning, tracer, 0.1),
		tracer:       tracer,
		index:        idx,
	}
}

func TestAnalyzeParsesModelPlan(t *testing.T) {
	reasoning := completion.NewMockClient(`{
		"intent": "Buscar producto específico en inventario",
		"tools_needed": ["PRODUCT_SEARCH"],
		"reasoning": "pregunta por un producto",
		"requires_additional_info": false
	}`)
	f := newFixture(reasoning, nil, nil)

	analysis := f.orchestrator.Analyze(context.Background(), "t1", "¿Tienen botellas de acero?")

	assert.Equal(t, domain.OutcomeOK, analysis.Source)
	assert.Equal(t, "Buscar producto específico en inventario", analysis.Intent)
	assert.Equal(t, []string{domain.ToolProductSearch}, analysis.ToolsNeeded)
	assert.False(t, analysis.RequiresAdditionalInfo)
}

func TestAnalyzeParsesFencedJSON(t *testing.T) {
	reasoning := completion.NewMockClient("```json\n{\"intent\": \"Crear ticket de devolución\", \"tools_needed\": [\"TICKET_CREATE\"], \"requires_additional_info\": true, \"missing_info\": [\"email\"]}\n```")
	f := newFixture(reasoning, nil, nil)

	analysis := f.orchestrator.Analyze(context.Background(), "t1", "quiero devolver un producto")

	assert.Equal(t, domain.OutcomeOK, analysis.Source)
	assert.True(t, analysis.RequiresAdditionalInfo)
	assert.Equal(t, []string{"email"}, analysis.MissingInfo)
}

func TestAnalyzeMalformedReplyFallsBack(t *testing.T) {
	reasoning := completion.NewMockClient("claro, te ayudo con eso")
	f := newFixture(reasoning, nil, nil)

	analysis := f.orchestrator.Analyze(context.Background(), "t1", "¿tienen productos de hogar?")

	assert.Equal(t, domain.OutcomeDegraded, analysis.Source)
	assert.Equal(t, []string{domain.ToolProductSearch}, analysis.ToolsNeeded)
}

func TestAnalyzeReasoningErrorFallsBack(t *testing.T) {
	reasoning := completion.NewMockClient("").Fail(assert.AnError)
	f := newFixture(reasoning, nil, nil)

	analysis := f.orchestrator.Analyze(context.Background(), "t1", "¿cuál es la política de envíos?")

	assert.Equal(t, domain.OutcomeDegraded, analysis.Source)
	assert.Equal(t, []string{domain.ToolRAGSearch}, analysis.ToolsNeeded)
	assert.NotEmpty(t, f.tracer.ByOperation("REASONING_ERROR"))
}

func TestAnalyzeWithoutModelUsesHeuristic(t *testing.T) {
	f := newFixture(nil, nil, nil)
	ctx := context.Background()

	cases := []struct {
		query string
		tools []string
	}{
		{"quiero ver mi ticket", []string{domain.ToolTicketQuery}},
		{"necesito ayuda con mi ticket", []string{domain.ToolTicketQuery}},
		{"¿tienen productos ecológicos?", []string{domain.ToolProductSearch}},
		{"¿cuál es el horario de atención?", []string{domain.ToolRAGSearch}},
	}
	for _, tc := range cases {
		analysis := f.orchestrator.Analyze(ctx, "t1", tc.query)
		assert.Equal(t, tc.tools, analysis.ToolsNeeded, tc.query)
		assert.Equal(t, domain.OutcomeDegraded, analysis.Source, tc.query)
	}
}

func TestHeuristicTicketNumberAlwaysQueries(t *testing.T) {
	f := newFixture(nil, nil, nil)

	// Creation verbs lose against a ticket-number token.
	analysis := f.orchestrator.Analyze(context.Background(), "t1", "quiero devolver mi compra, mi ticket es TKT-1700000000-AB12CD34")

	assert.Equal(t, []string{domain.ToolTicketQuery}, analysis.ToolsNeeded)
	assert.False(t, analysis.RequiresAdditionalInfo)
}

func TestHeuristicTicketCreateNeedsInfo(t *testing.T) {
	f := newFixture(nil, nil, nil)

	analysis := f.orchestrator.Analyze(context.Background(), "t1", "quiero abrir un ticket para devolver algo")

	assert.Equal(t, []string{domain.ToolTicketCreate}, analysis.ToolsNeeded)
	assert.True(t, analysis.RequiresAdditionalInfo)
	assert.Equal(t, []string{"tipo de ticket"}, analysis.MissingInfo)
}

func TestExecuteToolsIsolatesFailures(t *testing.T) {
	f := newFixture(nil, completion.NewMockClient("respuesta de documentos"), brokenStore{})

	plan := domain.Analysis{
		Intent:      "mixto",
		ToolsNeeded: []string{domain.ToolTicketQuery, domain.ToolRAGSearch},
	}
	results := f.orchestrator.ExecuteTools(context.Background(), "t1", plan, "estado de mi pedido ana@example.com")

	require.Len(t, results.Data, 2)
	assert.Equal(t, domain.OutcomeFailed, results.Data[0].Outcome)
	assert.NotEmpty(t, results.Data[0].Err)
	assert.NotEqual(t, domain.OutcomeFailed, results.Data[1].Outcome, "one failing tool must not stop the rest")
	assert.NotEmpty(t, results.Data[1].Result)
	assert.NotEmpty(t, f.tracer.ByOperation("TOOL_EXECUTION_ERROR"))
}

func TestExecuteToolsUnknownTool(t *testing.T) {
	f := newFixture(nil, nil, nil)

	plan := domain.Analysis{ToolsNeeded: []string{"EMAIL_BLAST"}}
	results := f.orchestrator.ExecuteTools(context.Background(), "t1", plan, "hola")

	require.Len(t, results.Data, 1)
	assert.Equal(t, domain.OutcomeFailed, results.Data[0].Outcome)
	assert.Equal(t, "Herramienta no implementada", results.Data[0].Err)
}

func TestExecuteToolsTracesLifecycle(t *testing.T) {
	f := newFixture(nil, completion.NewMockClient("ok"), nil)

	plan := domain.Analysis{ToolsNeeded: []string{domain.ToolRAGSearch}}
	f.orchestrator.ExecuteTools(context.Background(), "t1", plan, "¿cuál es la política?")

	assert.NotEmpty(t, f.tracer.ByOperation("RAG_SEARCH_START"))
	success := f.tracer.ByOperation("RAG_SEARCH_SUCCESS")
	require.NotEmpty(t, success)
	assert.Equal(t, "RAG search in documents", success[0].Metadata["method"])
}

func TestExecuteToolsSharesTraceID(t *testing.T) {
	f := newFixture(nil, completion.NewMockClient("ok"), nil)

	plan := domain.Analysis{ToolsNeeded: []string{domain.ToolRAGSearch, domain.ToolProductSearch}}
	f.orchestrator.ExecuteTools(context.Background(), "turn-42", plan, "¿qué productos tienen?")

	records := f.tracer.ByTraceID("turn-42")
	assert.GreaterOrEqual(t, len(records), 4)
}
