package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements the Client interface using Claude.
// A single-turn text completion is all the advisor needs, so no tool use or
// agentic loop here — the reply's text blocks are concatenated and returned.
type AnthropicClient struct {
	client      *anthropic.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewAnthropicClient creates a Claude-backed completion client.
func NewAnthropicClient(apiKey, model string, maxTokens int, temperature float32) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicClient{
		client:      &client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (a *AnthropicClient) ProviderName() string { return "anthropic" }
func (a *AnthropicClient) ModelName() string    { return a.model }

func (a *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   int64(a.maxTokens),
		Temperature: anthropic.Float(float64(a.temperature)),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text content")
	}

	return strings.TrimSpace(sb.String()), nil
}
