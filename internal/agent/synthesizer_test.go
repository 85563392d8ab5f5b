package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ecomarket-assistant/internal/completion"
	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
)

func someAnalysis() domain.Analysis {
	return domain.Analysis{Intent: "Consultar información general", ToolsNeeded: []string{domain.ToolRAGSearch}}
}

func okResults(tool, result string) domain.ToolResults {
	return domain.ToolResults{
		Data:      []domain.ToolExecution{{Tool: tool, Result: result, Outcome: domain.OutcomeOK}},
		ToolsUsed: []string{tool},
	}
}

func TestGenerateAllToolsFailedIsOneApology(t *testing.T) {
	client := completion.NewMockClient("nunca debería usarse")
	s := NewSynthesizer(client, observability.NewTracer(10), 0.7)
	results := domain.ToolResults{
		Data: []domain.ToolExecution{
			{Tool: domain.ToolTicketQuery, Err: "conexión rechazada", Outcome: domain.OutcomeFailed},
			{Tool: domain.ToolRAGSearch, Err: "índice caído", Outcome: domain.OutcomeFailed},
		},
		ToolsUsed: []string{domain.ToolTicketQuery, domain.ToolRAGSearch},
	}

	got := s.Generate(context.Background(), "t1", someAnalysis(), results, "hola")

	assert.Contains(t, got, "soporte@ecomarket.com")
	assert.NotContains(t, got, "conexión rechazada", "raw tool errors never reach the customer")
	assert.Empty(t, client.Calls())
}

func TestGenerateWithoutClientConcatenatesResults(t *testing.T) {
	s := NewSynthesizer(nil, observability.NewTracer(10), 0.7)

	got := s.Generate(context.Background(), "t1", someAnalysis(), okResults(domain.ToolRAGSearch, "Horario: 9 a 18."), "horario")

	assert.Contains(t, got, "Horario: 9 a 18.")
}

func TestGenerateWithoutClientAndNoUsableResults(t *testing.T) {
	s := NewSynthesizer(nil, observability.NewTracer(10), 0.7)
	results := domain.ToolResults{
		Data: []domain.ToolExecution{
			{Tool: domain.ToolRAGSearch, Result: "", Outcome: domain.OutcomeOK},
			{Tool: domain.ToolTicketQuery, Err: "falló", Outcome: domain.OutcomeFailed},
		},
		ToolsUsed: []string{domain.ToolRAGSearch, domain.ToolTicketQuery},
	}

	got := s.Generate(context.Background(), "t1", someAnalysis(), results, "hola")

	assert.Contains(t, got, "no pude procesar tu solicitud")
}

func TestGeneratePromptCarriesResultsQueryAndTools(t *testing.T) {
	client := completion.NewMockClient("¡Claro! Abrimos de 9 a 18 🌿")
	tracer := observability.NewTracer(10)
	s := NewSynthesizer(client, tracer, 0.7)

	got := s.Generate(context.Background(), "t1", someAnalysis(), okResults(domain.ToolRAGSearch, "Horario: 9 a 18."), "¿a qué hora abren?")

	assert.Equal(t, "¡Claro! Abrimos de 9 a 18 🌿", got)
	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "INFORMACIÓN RECUPERADA")
	assert.Contains(t, calls[0].Prompt, "Horario: 9 a 18.")
	assert.Contains(t, calls[0].Prompt, "¿a qué hora abren?")
	assert.Contains(t, calls[0].Prompt, domain.ToolRAGSearch)
	assert.InDelta(t, 0.7, calls[0].Temperature, 0.001)
	assert.NotEmpty(t, tracer.ByOperation("RESPONSE_GENERATED"))
}

func TestGenerateCompletionErrorFallsBackToSimple(t *testing.T) {
	client := completion.NewMockClient("").Fail(assert.AnError)
	tracer := observability.NewTracer(10)
	s := NewSynthesizer(client, tracer, 0.7)

	got := s.Generate(context.Background(), "t1", someAnalysis(), okResults(domain.ToolRAGSearch, "Horario: 9 a 18."), "horario")

	assert.Contains(t, got, "Horario: 9 a 18.")
	assert.NotEmpty(t, tracer.ByOperation("RESPONSE_GENERATION_ERROR"))
}

func TestRequestMissingInfoListsFields(t *testing.T) {
	s := NewSynthesizer(nil, observability.NewTracer(10), 0.7)

	got := s.RequestMissingInfo([]string{"tipo de ticket", "email del cliente"}, "Crear ticket")

	assert.Contains(t, got, "Para ayudarte con 'Crear ticket'")
	assert.Contains(t, got, "📋 tipo de ticket")
	assert.Contains(t, got, "📋 email del cliente")
	assert.Contains(t, got, "estaré encantada de ayudarte")
}
