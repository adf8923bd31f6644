package agent

import (
	"context"
)

// Provider defines the generative model used when no FAQ answers a query.
// Any error is treated as the model being unavailable.
type Provider interface {
	// Generate returns the model's reply to prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider and model for logs.
	Name() string
}

// Ensure GeminiProvider implements Provider.
var _ Provider = (*GeminiProvider)(nil)
