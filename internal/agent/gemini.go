package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultModels are tried in order when probing is enabled.
var DefaultModels = []string{"gemini-1.5-flash", "gemini-1.0-pro", "gemini-pro"}

const probePrompt = "Say hello"

var errEmptyText = errors.New("model returned empty text")

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	APIKey string
	// Models are candidate model names, preferred first.
	Models []string
	// Probe issues a short test call per candidate and keeps the first one
	// that answers. Without probing the first candidate is used as-is.
	Probe        bool
	ProbeTimeout time.Duration
}

// GeminiProvider generates replies with the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiProvider creates a Gemini-backed provider. It returns an error
// wrapping ErrProviderUnavailable when no key is configured or no candidate
// model responds.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, logger *slog.Logger) (*GeminiProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", ErrProviderUnavailable)
	}
	models := candidateModels(cfg.Models)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %w", ErrProviderUnavailable, err)
	}

	p := &GeminiProvider{client: client, model: models[0], logger: logger}
	if !cfg.Probe {
		return p, nil
	}

	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	for _, model := range models {
		logger.Info("Trying model", "model", model)
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		_, err := p.generateWith(probeCtx, model, probePrompt)
		cancel()
		if err != nil {
			logger.Warn("Model probe failed", "model", model, "error", err)
			continue
		}
		logger.Info("Model probe succeeded", "model", model)
		p.model = model
		return p, nil
	}
	return nil, fmt.Errorf("%w: no gemini model responded (tried %s)", ErrProviderUnavailable, strings.Join(models, ", "))
}

// Name implements Provider.
func (p *GeminiProvider) Name() string {
	return "gemini/" + p.model
}

// Model returns the selected model name.
func (p *GeminiProvider) Model() string {
	return p.model
}

// Generate implements Provider.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.generateWith(ctx, p.model, prompt)
}

func (p *GeminiProvider) generateWith(ctx context.Context, model, prompt string) (string, error) {
	res, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := res.Text()
	if strings.TrimSpace(text) == "" {
		return "", errEmptyText
	}
	return text, nil
}

// candidateModels puts the configured models first and appends the defaults
// that were not already listed.
func candidateModels(configured []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range append(append([]string{}, configured...), DefaultModels...) {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
