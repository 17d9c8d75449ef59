package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fleveque/stock-advisor/internal/llm"
	"github.com/fleveque/stock-advisor/internal/model"
	"github.com/fleveque/stock-advisor/internal/storage"
)

// CompletionProvider sends prompts to LLM providers with ordered fallback.
// Rate limited to keep API costs predictable. Tries providers in configured
// order — first success wins, failures fall through to the next client.
// Every attempt is recorded for cost tracking.
type CompletionProvider struct {
	clients  []llm.Client // Ordered list: first is primary, rest are fallbacks
	limiter  *rate.Limiter
	callRepo storage.LLMCallRepository
	logger   *zap.Logger
}

// NewCompletionProvider creates a provider with an ordered list of LLM clients.
// The order is configurable via config.yaml: llm.provider_order: ["groq", "anthropic"]
// so swapping provider priority is a config change, not a code change.
func NewCompletionProvider(
	clients []llm.Client,
	ratePerMinute int,
	callRepo storage.LLMCallRepository,
	logger *zap.Logger,
) *CompletionProvider {
	rps := rate.Every(time.Minute / time.Duration(ratePerMinute))

	return &CompletionProvider{
		clients:  clients,
		limiter:  rate.NewLimiter(rps, 1), // burst of 1 — strict rate limiting
		callRepo: callRepo,
		logger:   logger,
	}
}

// Complete sends the prompt to each configured client in order and returns
// the first successful reply text.
func (p *CompletionProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if len(p.clients) == 0 {
		return "", fmt.Errorf("no LLM providers configured")
	}

	var lastErr error

	for i, client := range p.clients {
		// Rate limit — blocks until a token is available or context is cancelled.
		if err := p.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}

		start := time.Now()
		reply, err := client.Complete(ctx, prompt)
		p.recordCall(ctx, client, len(prompt), err, time.Since(start).Milliseconds())

		if err == nil {
			return reply, nil
		}

		lastErr = err

		if i < len(p.clients)-1 {
			p.logger.Warn("LLM provider failed, trying next",
				zap.String("provider", client.ProviderName()),
				zap.Error(err),
			)
		}
	}

	return "", fmt.Errorf("all LLM providers failed: %w", lastErr)
}

func (p *CompletionProvider) recordCall(ctx context.Context, client llm.Client, promptChars int, callErr error, durationMs int64) {
	call := &model.LLMCall{
		Provider:    client.ProviderName(),
		Model:       client.ModelName(),
		PromptChars: promptChars,
		Success:     callErr == nil,
	}
	call.DurationMs = &durationMs

	if err := p.callRepo.Create(ctx, call); err != nil {
		p.logger.Error("recording LLM call", zap.Error(err))
	}
}
