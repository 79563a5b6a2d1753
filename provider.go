package quackquery

import "context"

// Provider abstracts an LLM backend.
type Provider interface {
	// Chat sends a request and returns a complete response.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// ChatStream streams text deltas into ch, then returns the final
	// response with usage stats. Implementations close ch when done.
	ChatStream(ctx context.Context, req ChatRequest, ch chan<- string) (ChatResponse, error)
	// Name returns the provider name (e.g. "gemini", "openai").
	Name() string
}

// Transcriber converts a recorded audio clip to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio AudioData) (string, error)
}
