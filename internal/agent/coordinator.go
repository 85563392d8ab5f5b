package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/ecomarket-assistant/internal/memory"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
)

// Coordinator runs one conversational turn end to end: extract user info
// into session memory, enrich the query with remembered context, plan,
// execute, synthesize. Every step shares one trace id.
type Coordinator struct {
	orchestrator *Orchestrator
	synthesizer  *Synthesizer
	memory       *memory.Service
	tracer       *observability.Tracer
}

// NewCoordinator wires the turn coordinator.
func NewCoordinator(orchestrator *Orchestrator, synthesizer *Synthesizer, mem *memory.Service, tracer *observability.Tracer) *Coordinator {
	return &Coordinator{
		orchestrator: orchestrator,
		synthesizer:  synthesizer,
		memory:       mem,
		tracer:       tracer,
	}
}

// TurnResult is what one turn produced.
type TurnResult struct {
	Response  string
	SessionID string
	TraceID   string
	Intent    string
	ToolsUsed []string
}

// HandleTurn processes one customer utterance and returns the reply. It
// never panics or errors outward; degraded subsystems produce apologetic
// replies instead.
func (c *Coordinator) HandleTurn(ctx context.Context, sessionID, query string) TurnResult {
	start := time.Now()
	traceID := observability.NewTraceID()

	c.tracer.Info(traceID, "USER_QUERY_START", "📥 Consulta recibida",
		map[string]any{"query": truncate(query, 200)})

	sessionID, extracted := c.memory.ExtractUserInfo(ctx, traceID, sessionID, query)
	c.tracer.Info(traceID, "USER_INFO_EXTRACTED", fmt.Sprintf("Información extraída: %d campo(s)", len(extracted)),
		map[string]any{"session_id": sessionID, "extracted": extracted})

	enriched := query + c.memory.ContextBlock(ctx, traceID, sessionID)

	analysis := c.orchestrator.Analyze(ctx, traceID, enriched)
	c.tracer.Info(traceID, "ORCHESTRATOR_ANALYSIS", fmt.Sprintf("Consulta analizada: %s", analysis.Intent),
		map[string]any{"intent": analysis.Intent, "tools_needed": analysis.ToolsNeeded, "source": string(analysis.Source)})

	if analysis.RequiresAdditionalInfo {
		response := c.synthesizer.RequestMissingInfo(analysis.MissingInfo, analysis.Intent)
		c.tracer.Info(traceID, "MISSING_INFO_REQUESTED", fmt.Sprintf("Solicitada información adicional: %v", analysis.MissingInfo),
			map[string]any{"missing_info": analysis.MissingInfo, "intent": analysis.Intent})
		return TurnResult{
			Response:  response,
			SessionID: sessionID,
			TraceID:   traceID,
			Intent:    analysis.Intent,
		}
	}

	results := c.orchestrator.ExecuteTools(ctx, traceID, analysis, query)
	c.tracer.Info(traceID, "TOOLS_EXECUTED", fmt.Sprintf("Herramientas usadas: %v", results.ToolsUsed),
		map[string]any{"tools_used": results.ToolsUsed})

	response := c.synthesizer.Generate(ctx, traceID, analysis, results, query)

	elapsed := time.Since(start).Seconds()
	c.tracer.Success(traceID, "USER_QUERY_COMPLETE", fmt.Sprintf("✅ Consulta procesada en %.2fs", elapsed),
		map[string]any{
			"query":           truncate(query, 100),
			"intent":          analysis.Intent,
			"tools":           analysis.ToolsNeeded,
			"processing_time": elapsed,
			"response_length": len(response),
		})

	return TurnResult{
		Response:  response,
		SessionID: sessionID,
		TraceID:   traceID,
		Intent:    analysis.Intent,
		ToolsUsed: results.ToolsUsed,
	}
}
