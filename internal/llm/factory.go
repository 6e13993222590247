package llm

import (
	"github.com/ulilazmi100/micro-skill/internal/logging"
	"github.com/ulilazmi100/micro-skill/internal/store"
)

// Registry maps provider names to ready-to-call providers.
type Registry struct {
	providers map[Name]Provider
}

// Option customizes NewRegistry.
type Option func(*registryOptions)

type registryOptions struct {
	httpClient HTTPDoer
	sleep      Sleeper
	log        *logging.Logger
	eventRepo  store.EventRepo
}

// WithHTTPClient sets the HTTP client shared by every adapter.
func WithHTTPClient(c HTTPDoer) Option {
	return func(o *registryOptions) { o.httpClient = c }
}

// WithSleeper replaces the backoff sleeper used between retries.
func WithSleeper(s Sleeper) Option {
	return func(o *registryOptions) { o.sleep = s }
}

// WithLogger sets the logger used by adapters and decorators.
func WithLogger(l *logging.Logger) Option {
	return func(o *registryOptions) { o.log = l }
}

// WithEventRepo records every provider call in repo.
func WithEventRepo(repo store.EventRepo) Option {
	return func(o *registryOptions) { o.eventRepo = repo }
}

// NewRegistry builds every known provider from configuration.
// Each provider is wrapped with middleware:
// caller → logging → retry (huggingface, gemini) → attempt timeout → base.
func NewRegistry(cfg Config, opts ...Option) *Registry {
	o := registryOptions{log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{providers: make(map[Name]Provider, len(knownNames))}
	for _, name := range knownNames {
		pc, _ := cfg.Provider(name)
		log := o.log.With("provider", string(name))

		var p Provider
		switch name {
		case OpenAI:
			p = NewOpenAIProvider(pc, o.httpClient)
		case OpenRouter:
			p = NewOpenRouterProvider(pc, o.httpClient)
		case Anthropic:
			p = NewAnthropicProvider(pc, o.httpClient)
		case HuggingFace:
			p = NewHuggingFaceProvider(pc, o.httpClient)
		case Gemini:
			p = NewGeminiProvider(pc, o.httpClient, log)
		}

		p = WithAttemptTimeout(p, cfg.AttemptTimeout)
		if name == HuggingFace || name == Gemini {
			p = WithRetry(p, cfg.Retry, o.sleep, log)
		}
		r.providers[name] = WithLogging(p, o.eventRepo, log)
	}
	return r
}

// NewRegistryOf builds a registry from already constructed providers.
func NewRegistryOf(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[Name]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name Name) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}
