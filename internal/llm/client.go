package llm

import (
	"context"
	"errors"
	"time"
)

// ErrNoBackend is returned when no inference backend is configured.
var ErrNoBackend = errors.New("llm: no backend configured")

// Client is the interface for an inference backend that turns prompts into
// natural-language output. Implementations may be slow and may fail; callers
// are expected to degrade gracefully rather than abort.
type Client interface {
	// Generate sends a prompt to the backend and returns the completion.
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Request describes a single generation call.
type Request struct {
	// Prompt is the user-level instruction.
	Prompt string

	// SystemPrompt sets the assistant persona. Optional.
	SystemPrompt string

	// Temperature overrides the client default when > 0.
	Temperature float64

	// MaxTokens caps the completion length when > 0.
	MaxTokens int
}

// Result is the outcome of a successful generation call.
type Result struct {
	// Content is the generated text.
	Content string

	// Model is the model name reported by the backend.
	Model string

	// TokensUsed is the total token count reported by the backend, if any.
	TokensUsed int

	// Elapsed is the wall-clock duration of the call.
	Elapsed time.Duration
}
