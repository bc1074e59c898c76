package output

import (
	"context"
	"time"
)

// CompletionGateway is the interface for the text-completion service that
// proposes code repairs. This abstraction allows different backends
// (Ollama, OpenAI-compatible servers, test doubles).
type CompletionGateway interface {
	// Complete sends a prompt and returns the raw reply text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name identifies the backend and model, e.g. "ollama/qwen2.5-coder:1.5b"
	Name() string
}

// CompletionRequest represents a request to the completion service
type CompletionRequest struct {
	Prompt      string        // Full prompt text
	Timeout     time.Duration // Request timeout; zero means the backend default
	Temperature float64       // Sampling temperature (0.0-1.0)
}

// CompletionResponse represents the reply from the completion service
type CompletionResponse struct {
	Text       string        // Raw reply, usually markdown with a fenced code block
	Model      string        // Model that produced the reply
	Duration   time.Duration // Round-trip time
	TokensUsed int           // Number of tokens used (if reported)
}
