package dto

import "time"

// ChatRequest is one customer utterance.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse carries the assistant reply and the turn's trace id.
type ChatResponse struct {
	Reply     string   `json:"reply"`
	SessionID string   `json:"session_id"`
	TraceID   string   `json:"trace_id"`
	Intent    string   `json:"intent,omitempty"`
	ToolsUsed []string `json:"tools_used,omitempty"`
}

// ToolRequest feeds the structured return tools. Input is either the
// delimited form ("pedido; producto; fecha; motivo") or natural language.
type ToolRequest struct {
	Input string `json:"input"`
}

// ToolResponse wraps a tool's customer-facing text.
type ToolResponse struct {
	Result string `json:"result"`
}

// AdminLoginRequest payload.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the issued admin token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
