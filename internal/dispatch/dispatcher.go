// Package dispatch routes generation requests to a provider adapter and
// turns the assistant text into a structured result.
package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/ulilazmi100/micro-skill/internal/extract"
	"github.com/ulilazmi100/micro-skill/internal/fixture"
	"github.com/ulilazmi100/micro-skill/internal/llm"
	"github.com/ulilazmi100/micro-skill/internal/logging"
)

// DemoProvider is reported as the provider of fixture results.
const DemoProvider = "demo"

// GenerateRequest asks for a structured (JSON) generation.
type GenerateRequest struct {
	// Provider names the adapter. Empty selects the configured default.
	Provider string

	UserPrompt string

	// MaxTokens overrides the adapter budget when positive.
	MaxTokens int
}

// Generation is a successful structured generation.
type Generation struct {
	// Parsed is the JSON value recovered from the assistant text.
	Parsed any

	// Raw is the verbatim upstream response body.
	Raw string

	// AssistantText is the assistant text after fence stripping.
	AssistantText string

	Provider string
}

// PlainTextRequest asks for free-form text with a caller-supplied system
// prompt.
type PlainTextRequest struct {
	Provider  string
	System    string
	User      string
	MaxTokens int
}

// PlainText is a successful plain-text generation.
type PlainText struct {
	AssistantText string
	RawResponse   string
	Provider      string
}

// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	cfg      llm.Config
	registry *llm.Registry
	system   string
	log      *logging.Logger

	registryOpts []llm.Option
}

// Option customizes New.
type Option func(*Dispatcher)

// WithRegistry replaces the registry built from configuration.
func WithRegistry(r *llm.Registry) Option {
	return func(d *Dispatcher) { d.registry = r }
}

// WithSystemPrompt replaces SystemPrompt for structured generations.
func WithSystemPrompt(s string) Option {
	return func(d *Dispatcher) { d.system = s }
}

// WithProviderOptions passes opts to the registry built from configuration.
// It has no effect together with WithRegistry.
func WithProviderOptions(opts ...llm.Option) Option {
	return func(d *Dispatcher) { d.registryOpts = append(d.registryOpts, opts...) }
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// New creates a dispatcher. Unless WithRegistry is given, providers are
// built from cfg.
func New(cfg llm.Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		system: SystemPrompt,
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = llm.NewRegistry(cfg, d.registryOpts...)
	}
	return d
}

// DemoMode reports whether results come from the fixture.
func (d *Dispatcher) DemoMode() bool {
	return d.cfg.DemoMode
}

// Generate calls the requested provider with the shared system prompt and
// extracts a JSON value from its reply. In demo mode it returns the fixture
// without touching any provider, whatever the provider name.
func (d *Dispatcher) Generate(ctx context.Context, req GenerateRequest) (*Generation, error) {
	if d.cfg.DemoMode {
		raw := string(fixture.JSON())
		return &Generation{
			Parsed:        fixture.Value(),
			Raw:           raw,
			AssistantText: raw,
			Provider:      DemoProvider,
		}, nil
	}

	p, err := d.resolve(req.Provider, req.UserPrompt)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := p.Call(ctx, llm.Request{
		System:    d.system,
		User:      req.UserPrompt,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	cleaned := extract.StripFences(res.AssistantText)
	parsed, ok := extract.JSON(cleaned)
	if !ok {
		pe := &llm.ProviderError{Provider: p.Name(), Code: llm.CodeParseError, Details: cleaned}
		if strings.TrimSpace(res.AssistantText) == "" {
			pe.Code = llm.CodeEmptyResponse
			pe.Details = res.RawResponse
		}
		d.log.Warn("structured generation unparseable",
			"provider", string(p.Name()),
			"code", string(pe.Code),
			"text_chars", len(cleaned),
		)
		return nil, pe
	}

	d.log.Debug("structured generation",
		"provider", string(p.Name()),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return &Generation{
		Parsed:        parsed,
		Raw:           res.RawResponse,
		AssistantText: cleaned,
		Provider:      string(p.Name()),
	}, nil
}

// GeneratePlainText calls the requested provider with req.System and
// returns its fence-stripped reply. Blank replies are not an error. In demo
// mode it returns the first lesson's canned full guide.
func (d *Dispatcher) GeneratePlainText(ctx context.Context, req PlainTextRequest) (*PlainText, error) {
	if d.cfg.DemoMode {
		guide := fixture.Supplement(0, fixture.KindExpansion)
		return &PlainText{AssistantText: guide, RawResponse: guide, Provider: DemoProvider}, nil
	}

	p, err := d.resolve(req.Provider, req.User)
	if err != nil {
		return nil, err
	}

	res, err := p.Call(ctx, llm.Request{
		System:    req.System,
		User:      req.User,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return &PlainText{
		AssistantText: extract.StripFences(res.AssistantText),
		RawResponse:   res.RawResponse,
		Provider:      string(p.Name()),
	}, nil
}

// resolve picks the provider for requested, falling back to the configured
// default and then to openai, and checks the prompt before the name.
func (d *Dispatcher) resolve(requested, prompt string) (llm.Provider, error) {
	name := strings.ToLower(strings.TrimSpace(requested))
	if name == "" {
		name = string(d.cfg.DefaultProvider)
	}
	if name == "" {
		name = string(llm.OpenAI)
	}

	if strings.TrimSpace(prompt) == "" {
		return nil, &llm.WrapperError{
			Code:     llm.CodeMissingUserPrompt,
			Provider: name,
			Message:  "user prompt must be a non-empty string",
		}
	}

	p, ok := d.registry.Lookup(llm.Name(name))
	if !ok {
		return nil, &llm.WrapperError{
			Code:     llm.CodeUnsupportedProvider,
			Provider: name,
			Message:  "unsupported provider " + name,
		}
	}
	return p, nil
}
