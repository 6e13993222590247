package llm

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider creates the adapter registered as "openrouter".
// OpenRouter exposes an OpenAI-compatible API, so the chat-completion
// adapter is reused with a different base URL.
func NewOpenRouterProvider(cfg ProviderConfig, httpClient HTTPDoer) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}
	return newOpenAICompatible(OpenRouter, cfg, httpClient)
}
