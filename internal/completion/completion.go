// Package completion wraps the chat model behind a single-method port so the
// reasoning and synthesis stages can degrade uniformly when no model is
// configured.
package completion

import "context"

// Request is one completion call.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
}

// Client produces a completion for a prompt. Implementations return an error
// when the model is unreachable; callers fall back instead of failing the
// turn.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
