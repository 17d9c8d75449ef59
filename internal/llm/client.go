// Package llm provides a provider-agnostic interface for LLM text completion.
// The advisor composes a single analysis prompt and only needs the raw reply
// text back — structure is recovered downstream by the response parser.
package llm

import "context"

// Client is the interface for LLM completion providers. Both Groq
// (OpenAI-compatible) and Anthropic implement it, allowing the service to
// fall back from one to the other.
//
// Keep interfaces small: one method is ideal. The bigger the interface, the
// weaker the abstraction.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	ProviderName() string
	ModelName() string
}

// systemPrompt frames every completion request; the analysis instructions
// live in the user prompt built by the composer.
const systemPrompt = "You are a financial research assistant."
