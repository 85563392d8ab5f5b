package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/ecomarket-assistant/internal/completion"
	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/products"
)

// Synthesizer turns tool results into the customer-facing reply. With no
// completion model it concatenates the tool results verbatim, so the turn
// still answers.
type Synthesizer struct {
	client completion.Client
	tracer *observability.Tracer
	temp   float64
}

// NewSynthesizer wires the synthesizer. client may be nil.
func NewSynthesizer(client completion.Client, tracer *observability.Tracer, temperature float64) *Synthesizer {
	return &Synthesizer{client: client, tracer: tracer, temp: temperature}
}

// Generate writes the reply for a turn. When every tool failed the reply is
// one generic apology with the support contact, never raw error text.
func (s *Synthesizer) Generate(ctx context.Context, traceID string, analysis domain.Analysis, results domain.ToolResults, originalQuery string) string {
	if results.Failed() {
		return products.ErrorResponse()
	}
	if s.client == nil {
		return s.formatSimple(results)
	}

	s.tracer.Info(traceID, "RESPONSE_GENERATION_START", "Iniciando generación de respuesta amigable",
		map[string]any{"original_query": truncate(originalQuery, 100), "tools_used": results.ToolsUsed})

	reply, err := s.client.Complete(ctx, completion.Request{
		System:      systemContextPrompt,
		Prompt:      fmt.Sprintf(synthesisPrompt, s.formatToolResults(results), originalQuery, strings.Join(results.ToolsUsed, ", ")),
		Temperature: s.temp,
	})
	if err != nil {
		s.tracer.Error(traceID, "RESPONSE_GENERATION_ERROR", fmt.Sprintf("Error generando respuesta: %s", err), nil)
		return s.formatSimple(results)
	}

	s.tracer.Success(traceID, "RESPONSE_GENERATED", "Respuesta generada exitosamente por Response Agent",
		map[string]any{"response_length": len(reply), "tools_used": results.ToolsUsed, "intent": analysis.Intent})
	return reply
}

func (s *Synthesizer) formatToolResults(results domain.ToolResults) string {
	var b strings.Builder
	b.WriteString("📊 INFORMACIÓN RECUPERADA:\n\n")
	for _, exec := range results.Data {
		fmt.Fprintf(&b, "**%s:**\n", exec.Tool)
		if exec.Err != "" {
			b.WriteString("(sin resultado)")
		} else {
			b.WriteString(exec.Result)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (s *Synthesizer) formatSimple(results domain.ToolResults) string {
	var b strings.Builder
	for _, exec := range results.Data {
		if exec.Err != "" || exec.Result == "" {
			continue
		}
		b.WriteString(exec.Result)
		b.WriteString("\n\n")
	}
	if b.Len() == 0 {
		return "Hola! 🌿 Lo siento, no pude procesar tu solicitud en este momento. Por favor, intenta de nuevo o contáctanos directamente."
	}
	return b.String()
}

// RequestMissingInfo asks the customer for the fields the plan flagged as
// missing. No completion model involved; the turn runs no tools.
func (s *Synthesizer) RequestMissingInfo(missing []string, intent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n¡Hola! 👋 Para ayudarte con '%s', necesito un poco más de información:\n\n", intent)
	for _, info := range missing {
		fmt.Fprintf(&b, "📋 %s\n", info)
	}
	b.WriteString("\nPor favor, proporciona esta información y estaré encantada de ayudarte. 🌿")
	return b.String()
}
