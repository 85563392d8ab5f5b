package domain

// Outcome tags how a pipeline stage arrived at its value.
type Outcome string

const (
	// OutcomeOK means the primary path (reasoning model, live tool) produced
	// the value.
	OutcomeOK Outcome = "ok"
	// OutcomeDegraded means a deterministic fallback produced the value after
	// the primary path was unavailable or returned garbage.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeFailed means the stage could not produce a usable value at all.
	OutcomeFailed Outcome = "failed"
)

// Tool names the orchestrator can route to.
const (
	ToolRAGSearch     = "RAG_SEARCH"
	ToolProductSearch = "PRODUCT_SEARCH"
	ToolTicketCreate  = "TICKET_CREATE"
	ToolTicketQuery   = "TICKET_QUERY"
	ToolDatabaseQuery = "DATABASE_QUERY"
)

// Classification is the deterministic read of a single utterance.
type Classification struct {
	Original    string
	Normalized  string
	Category    string
	IsListQuery bool
	Urgency     string
	Intent      string
}

// Analysis is the orchestrator's plan for a turn: which tools to run and
// whether the turn must stop to ask the customer for more data.
type Analysis struct {
	Intent                 string
	ToolsNeeded            []string
	Reasoning              string
	RequiresAdditionalInfo bool
	MissingInfo            []string
	// Source records whether the plan came from the reasoning model or the
	// keyword fallback.
	Source Outcome
}

// ToolExecution is the outcome of running one tool during a turn.
type ToolExecution struct {
	Tool    string
	Result  string
	Method  string
	Outcome Outcome
	Err     string
}

// Degraded reports whether the tool fell back or failed outright.
func (t ToolExecution) Degraded() bool {
	return t.Outcome != OutcomeOK
}

// ToolResults aggregates the executions of a turn in dispatch order.
type ToolResults struct {
	ToolsUsed []string
	Data      []ToolExecution
}

// Failed reports whether every dispatched tool failed.
func (r ToolResults) Failed() bool {
	if len(r.Data) == 0 {
		return false
	}
	for _, d := range r.Data {
		if d.Outcome != OutcomeFailed {
			return false
		}
	}
	return true
}
