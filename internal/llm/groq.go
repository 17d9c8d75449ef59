package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// GroqClient implements the Client interface against Groq's OpenAI-compatible
// chat-completions API. The go-openai client is pointed at Groq's base URL;
// the same code path works against OpenAI itself or any compatible endpoint.
type GroqClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewGroqClient creates a Groq-backed completion client.
// baseURL is typically "https://api.groq.com/openai/v1".
func NewGroqClient(apiKey, baseURL, model string, maxTokens int, temperature float32) *GroqClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GroqClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (g *GroqClient) ProviderName() string { return "groq" }
func (g *GroqClient) ModelName() string    { return g.model }

// Complete sends the prompt as a single user message and returns the
// assistant's reply text, trimmed of surrounding whitespace.
func (g *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("groq API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
