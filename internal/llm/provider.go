package llm

import (
	"context"
	"slices"
	"strings"
)

// Provider is the core abstraction over an upstream model API.
// Adapters return the upstream text verbatim; fence stripping and JSON
// extraction belong to the caller.
type Provider interface {
	// Call sends one single-turn request and returns the assistant text
	// together with the raw upstream body. Failures are *ProviderError.
	Call(ctx context.Context, req Request) (*Result, error)

	// Name returns the provider identifier this adapter is registered under.
	Name() Name

	// ModelID returns the model identifier this adapter is configured to use.
	ModelID() string
}

// Name identifies a provider adapter.
type Name string

const (
	OpenAI      Name = "openai"
	HuggingFace Name = "huggingface"
	Gemini      Name = "gemini"
	Anthropic   Name = "anthropic"
	OpenRouter  Name = "openrouter"
)

var knownNames = []Name{OpenAI, HuggingFace, Gemini, Anthropic, OpenRouter}

// Names returns every supported provider name in registration order.
func Names() []Name {
	return slices.Clone(knownNames)
}

// ParseName normalizes s (trimmed, lower-cased) and reports whether it is a
// supported provider.
func ParseName(s string) (Name, bool) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	return n, slices.Contains(knownNames, n)
}

// Request describes one generation call.
type Request struct {
	// System is the system prompt. Adapters without a system role prepend
	// it to the user text separated by a blank line.
	System string

	// User is the user prompt.
	User string

	// MaxTokens caps the output length. Zero selects the adapter default.
	MaxTokens int

	// Temperature controls randomness. Zero selects the configured default.
	Temperature float64
}

// Result holds the outcome of a successful provider call.
type Result struct {
	// AssistantText is the payload after the provider envelope is unwrapped.
	AssistantText string

	// RawResponse is the verbatim upstream body.
	RawResponse string
}

// joinPrompt builds the single text input used by adapters without a
// system role.
func joinPrompt(req Request) string {
	if req.System == "" {
		return req.User
	}
	return req.System + "\n\n" + req.User
}
