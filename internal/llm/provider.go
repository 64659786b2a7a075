package llm

import "context"

// Provider is the uniform adapter interface over vendor chat APIs. Each
// adapter hides its vendor's request/response shapes behind Complete.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
