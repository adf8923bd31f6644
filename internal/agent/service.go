package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/helpdesk-bot/internal/domain"
)

// Config is built once at startup and handed to NewService.
type Config struct {
	// FAQs is the ordered FAQ list; first match wins.
	FAQs []domain.FAQEntry
	// Provider may be nil, in which case every non-FAQ turn is answered by
	// the fallback responder.
	Provider Provider
	Logger   *slog.Logger
}

// Service routes user messages to an FAQ answer, the generative model, or a
// canned fallback, and flags turns that need a human.
type Service struct {
	faqs     []domain.FAQEntry
	provider Provider
	logger   *slog.Logger
}

// NewService creates a routing service from cfg.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	faqs := make([]domain.FAQEntry, len(cfg.FAQs))
	copy(faqs, cfg.FAQs)
	return &Service{
		faqs:     faqs,
		provider: cfg.Provider,
		logger:   logger,
	}
}

// FAQCount returns the number of loaded FAQs.
func (s *Service) FAQCount() int {
	return len(s.faqs)
}

// ProviderName returns the configured provider, or "fallback" when none is set.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return string(SourceFallback)
	}
	return s.provider.Name()
}

// Generate produces the routing result for a single user turn. It never
// fails: model errors are masked by the fallback responder.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) Result {
	log := s.logger.With("session_id", req.SessionID)

	if answer, ok := MatchFAQ(req.Message, s.faqs); ok {
		log.Debug("answered from FAQ")
		return newResult(answer, SourceFAQ, false)
	}

	response, source := s.callModel(ctx, req.Message, log)
	escalate := RequiresEscalation(req.Message)
	if escalate {
		log.Info("escalation trigger detected", "source", source)
	}
	return newResult(response, source, escalate)
}

// callModel makes exactly one provider attempt and falls back on any failure.
func (s *Service) callModel(ctx context.Context, prompt string, log *slog.Logger) (string, Source) {
	text, err := s.generate(ctx, prompt)
	if err != nil {
		reply, category := fallbackFor(prompt)
		log.Warn("using fallback reply", "category", category, "error", err)
		return reply, SourceFallback
	}
	return text, SourceModel
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("%w: no provider configured", ErrProviderUnavailable)
	}
	text, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, s.provider.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s returned empty text", ErrProviderUnavailable, s.provider.Name())
	}
	return text, nil
}
