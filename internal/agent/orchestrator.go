package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/spec-kit/ecomarket-assistant/internal/completion"
	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/rag"
	"github.com/spec-kit/ecomarket-assistant/internal/tickets"
)

// Orchestrator decides what a turn needs and runs the tools. The reasoning
// model plans the turn; when it is unavailable or answers garbage, a keyword
// heuristic plans it instead and the analysis is tagged degraded.
type Orchestrator struct {
	responder *rag.Responder
	tickets   *tickets.Tools
	reasoning completion.Client
	tracer    *observability.Tracer
	temp      float64
}

// NewOrchestrator wires the orchestrator. reasoning may be nil; analysis
// then always takes the heuristic path.
func NewOrchestrator(responder *rag.Responder, ticketTools *tickets.Tools, reasoning completion.Client, tracer *observability.Tracer, temperature float64) *Orchestrator {
	return &Orchestrator{
		responder: responder,
		tickets:   ticketTools,
		reasoning: reasoning,
		tracer:    tracer,
		temp:      temperature,
	}
}

// Analyze plans the turn for a query. The primary path asks the reasoning
// model for strict JSON; any failure or malformed reply falls back to the
// keyword heuristic instead of aborting the turn.
func (o *Orchestrator) Analyze(ctx context.Context, traceID, query string) domain.Analysis {
	if o.reasoning == nil {
		return o.simpleAnalysis(query)
	}

	o.tracer.Info(traceID, "LLM_REASONING_START", "Iniciando reasoning con LLM",
		map[string]any{"query": truncate(query, 100)})

	reply, err := o.reasoning.Complete(ctx, completion.Request{
		System:      systemContextPrompt,
		Prompt:      fmt.Sprintf(reasoningPrompt, query),
		Temperature: o.temp,
	})
	if err != nil {
		o.tracer.Error(traceID, "REASONING_ERROR", fmt.Sprintf("Error en reasoning: %s", err), nil)
		return o.simpleAnalysis(query)
	}

	o.tracer.Success(traceID, "LLM_REASONING_COMPLETE", "Reasoning completado",
		map[string]any{"response_length": len(reply)})

	analysis, ok := parseAnalysis(reply)
	if !ok {
		return o.simpleAnalysis(query)
	}

	o.tracer.Info(traceID, "REASONING_ANALYSIS", "Análisis de consulta completado por Orchestrator",
		map[string]any{"intent": analysis.Intent, "tools_needed": analysis.ToolsNeeded, "reasoning": analysis.Reasoning})
	return analysis
}

// parseAnalysis reads the model's JSON plan, tolerating markdown fences
// around it. A plan without intent or tools is treated as malformed.
func parseAnalysis(reply string) (domain.Analysis, bool) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if !gjson.Valid(cleaned) {
		return domain.Analysis{}, false
	}
	parsed := gjson.Parse(cleaned)
	intent := parsed.Get("intent").String()
	toolsRaw := parsed.Get("tools_needed").Array()
	if intent == "" || len(toolsRaw) == 0 {
		return domain.Analysis{}, false
	}

	tools := make([]string, 0, len(toolsRaw))
	for _, t := range toolsRaw {
		tools = append(tools, t.String())
	}
	var missing []string
	for _, m := range parsed.Get("missing_info").Array() {
		missing = append(missing, m.String())
	}

	return domain.Analysis{
		Intent:                 intent,
		ToolsNeeded:            tools,
		Reasoning:              parsed.Get("reasoning").String(),
		RequiresAdditionalInfo: parsed.Get("requires_additional_info").Bool(),
		MissingInfo:            missing,
		Source:                 domain.OutcomeOK,
	}, true
}

// simpleAnalysis is the deterministic fallback plan. Ticket mentions split
// into query vs create; product or inventory mentions go to the matcher;
// everything else is a document search.
func (o *Orchestrator) simpleAnalysis(query string) domain.Analysis {
	lower := strings.ToLower(query)

	if strings.Contains(lower, "ticket") || tickets.ExtractTicketNumber(query) != "" {
		if tickets.DetectTicketIntent(query) == tickets.IntentQuery {
			return domain.Analysis{
				Intent:      "Consultar ticket existente",
				ToolsNeeded: []string{domain.ToolTicketQuery},
				Reasoning:   "Menciona consultar ticket",
				Source:      domain.OutcomeDegraded,
			}
		}
		return domain.Analysis{
			Intent:                 "Crear ticket",
			ToolsNeeded:            []string{domain.ToolTicketCreate},
			Reasoning:              "Menciona ticket sin consulta",
			RequiresAdditionalInfo: true,
			MissingInfo:            []string{"tipo de ticket"},
			Source:                 domain.OutcomeDegraded,
		}
	}

	if strings.Contains(lower, "producto") || strings.Contains(lower, "inventario") {
		return domain.Analysis{
			Intent:      "Buscar productos",
			ToolsNeeded: []string{domain.ToolProductSearch},
			Reasoning:   "Pregunta sobre productos",
			Source:      domain.OutcomeDegraded,
		}
	}

	return domain.Analysis{
		Intent:      "Consultar información general",
		ToolsNeeded: []string{domain.ToolRAGSearch},
		Reasoning:   "Consulta general, usar RAG",
		Source:      domain.OutcomeDegraded,
	}
}

// ExecuteTools dispatches each planned tool in order. One tool failing never
// stops the rest; the failure travels in its execution record instead.
func (o *Orchestrator) ExecuteTools(ctx context.Context, traceID string, analysis domain.Analysis, query string) domain.ToolResults {
	results := domain.ToolResults{ToolsUsed: analysis.ToolsNeeded}

	for _, tool := range analysis.ToolsNeeded {
		o.tracer.Info(traceID, tool+"_START", fmt.Sprintf("Iniciando ejecución de %s", tool),
			map[string]any{"query": truncate(query, 100)})

		exec := o.runTool(ctx, traceID, tool, query)
		results.Data = append(results.Data, exec)

		if exec.Outcome == domain.OutcomeFailed {
			o.tracer.Error(traceID, "TOOL_EXECUTION_ERROR", fmt.Sprintf("Error ejecutando %s: %s", tool, exec.Err), nil)
			continue
		}
		o.tracer.Success(traceID, tool+"_SUCCESS", fmt.Sprintf("Herramienta %s ejecutada exitosamente", tool),
			map[string]any{"method": exec.Method})
	}

	return results
}

func (o *Orchestrator) runTool(ctx context.Context, traceID, tool, query string) domain.ToolExecution {
	switch tool {
	case domain.ToolRAGSearch:
		outcome := domain.OutcomeOK
		if !o.responder.Ready() {
			outcome = domain.OutcomeDegraded
		}
		return domain.ToolExecution{
			Tool:    tool,
			Result:  o.responder.ProcessQuery(ctx, traceID, query),
			Method:  "RAG search in documents",
			Outcome: outcome,
		}

	case domain.ToolProductSearch:
		outcome := domain.OutcomeOK
		if !o.responder.Ready() {
			outcome = domain.OutcomeDegraded
		}
		return domain.ToolExecution{
			Tool:    tool,
			Result:  o.responder.ProductSearch(ctx, traceID, query),
			Method:  "Product search in inventory",
			Outcome: outcome,
		}

	case domain.ToolTicketCreate:
		resp := o.tickets.HandleCreate(ctx, traceID, query)
		return ticketExecution(tool, "Ticket creation", resp)

	case domain.ToolTicketQuery:
		resp := o.tickets.HandleQuery(ctx, traceID, query)
		return ticketExecution(tool, "Ticket query", resp)

	case domain.ToolDatabaseQuery:
		resp := o.tickets.QueryTickets(ctx, traceID, tickets.TicketQuery{
			TicketNumber:  tickets.ExtractTicketNumber(query),
			CustomerEmail: tickets.ExtractClientInfo(query).Email,
		})
		return ticketExecution(tool, "Database query", resp)

	default:
		return domain.ToolExecution{
			Tool:    tool,
			Outcome: domain.OutcomeFailed,
			Err:     "Herramienta no implementada",
		}
	}
}

// ticketExecution flattens a tool response into an execution record. A
// lookup that found nothing is a normal answer, not a failure; only a real
// error marks the execution failed.
func ticketExecution(tool, method string, resp tickets.ToolResponse) domain.ToolExecution {
	exec := domain.ToolExecution{
		Tool:    tool,
		Result:  renderTicketResponse(resp),
		Method:  method,
		Outcome: domain.OutcomeOK,
	}
	if resp.Err != "" {
		exec.Outcome = domain.OutcomeFailed
		exec.Err = resp.Err
	}
	return exec
}

func renderTicketResponse(resp tickets.ToolResponse) string {
	parts := []string{resp.Message}
	if resp.Instructions != "" {
		parts = append(parts, resp.Instructions)
	}
	for _, t := range resp.Tickets {
		parts = append(parts, fmt.Sprintf("🎫 %s | %s | estado: %s | prioridad: %s | %s",
			t.Number, t.Type, t.Status, t.Priority, t.Title))
	}
	return strings.Join(parts, "\n")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
