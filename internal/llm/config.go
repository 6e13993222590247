package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys. They double as environment variable names.
const (
	KeyDemoMode        = "DEMO_MODE"
	KeyDefaultProvider = "DEFAULT_PROVIDER"
	KeyTemperature     = "LLM_TEMPERATURE"
	KeyRetryAttempts   = "LLM_RETRY_MAX_ATTEMPTS"
	KeyRetryWait       = "LLM_RETRY_INITIAL_WAIT"
	KeyRetryMultiplier = "LLM_RETRY_MULTIPLIER"
	KeyAttemptTimeout  = "LLM_ATTEMPT_TIMEOUT"
)

// providerKeys names the configuration keys of one provider.
type providerKeys struct {
	APIKey  string
	Model   string
	BaseURL string
}

var providerEnv = map[Name]providerKeys{
	OpenAI:      {"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL"},
	HuggingFace: {"HUGGINGFACE_API_KEY", "HF_MODEL", "HF_BASE_URL"},
	Gemini:      {"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL"},
	Anthropic:   {"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "ANTHROPIC_BASE_URL"},
	OpenRouter:  {"OPENROUTER_API_KEY", "OPENROUTER_MODEL", "OPENROUTER_BASE_URL"},
}

// Config holds all provider configuration. It is built once at start-up
// and never mutated afterwards.
type Config struct {
	// DemoMode short-circuits every generation with the canned fixture.
	DemoMode bool

	// DefaultProvider is used when a caller does not name one.
	DefaultProvider Name

	// Temperature is sent with every request that does not set its own.
	// Default: 0.25.
	Temperature float64

	OpenAI      ProviderConfig
	HuggingFace ProviderConfig
	Gemini      ProviderConfig
	Anthropic   ProviderConfig
	OpenRouter  ProviderConfig

	// Retry governs the adapters that retry 5xx responses.
	Retry RetryConfig

	// AttemptTimeout bounds a single upstream attempt. Default: 60s.
	AttemptTimeout time.Duration
}

// ProviderConfig holds the settings of one provider adapter.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string

	// MaxTokens is the output budget used when a request leaves it unset.
	MaxTokens int

	// Temperature is copied from Config.Temperature by Config.Provider.
	Temperature float64
}

// RetryConfig configures the bounded retry policy for 5xx responses.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DefaultProvider: OpenAI,
		Temperature:     0.25,
		OpenAI: ProviderConfig{
			Model:     "gpt-3.5-turbo",
			BaseURL:   "https://api.openai.com/v1",
			MaxTokens: 7000,
		},
		HuggingFace: ProviderConfig{
			Model:     "mistralai/Mistral-7B-Instruct-v0.3",
			BaseURL:   "https://api-inference.huggingface.co",
			MaxTokens: 7000,
		},
		Gemini: ProviderConfig{
			Model:     "gemini-2.5-flash",
			BaseURL:   "https://generativelanguage.googleapis.com/v1beta",
			MaxTokens: 10000,
		},
		Anthropic: ProviderConfig{
			Model:     "claude-haiku",
			MaxTokens: 4096,
		},
		OpenRouter: ProviderConfig{
			Model:     "google/gemini-2.0-flash-exp",
			BaseURL:   "https://openrouter.ai/api/v1",
			MaxTokens: 7000,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			Multiplier:  2.0,
		},
		AttemptTimeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	v := viper.New()
	v.AutomaticEnv()
	return LoadConfig(v)
}

// LoadConfig builds a Config from v. Keys are the environment variable
// names; a config file read into v may use them in any case. Empty string
// values are treated as unset.
func LoadConfig(v *viper.Viper) Config {
	cfg := DefaultConfig()

	cfg.DemoMode = strings.TrimSpace(v.GetString(KeyDemoMode)) == "true"

	if p := strings.TrimSpace(v.GetString(KeyDefaultProvider)); p != "" {
		cfg.DefaultProvider = Name(strings.ToLower(p))
	}

	if v.IsSet(KeyTemperature) {
		cfg.Temperature = v.GetFloat64(KeyTemperature)
	}
	if v.IsSet(KeyRetryAttempts) {
		cfg.Retry.MaxAttempts = v.GetInt(KeyRetryAttempts)
	}
	if v.IsSet(KeyRetryWait) {
		cfg.Retry.InitialWait = v.GetDuration(KeyRetryWait)
	}
	if v.IsSet(KeyRetryMultiplier) {
		cfg.Retry.Multiplier = v.GetFloat64(KeyRetryMultiplier)
	}
	if v.IsSet(KeyAttemptTimeout) {
		cfg.AttemptTimeout = v.GetDuration(KeyAttemptTimeout)
	}

	for name, keys := range providerEnv {
		pc := cfg.providerRef(name)
		if k := strings.TrimSpace(v.GetString(keys.APIKey)); k != "" {
			pc.APIKey = k
		}
		if m := strings.TrimSpace(v.GetString(keys.Model)); m != "" {
			pc.Model = m
		}
		if u := strings.TrimSpace(v.GetString(keys.BaseURL)); u != "" {
			pc.BaseURL = strings.TrimRight(u, "/")
		}
	}

	return cfg
}

// Provider returns the settings for the named provider with the shared
// temperature applied.
func (c Config) Provider(n Name) (ProviderConfig, bool) {
	pc := c.providerRef(n)
	if pc == nil {
		return ProviderConfig{}, false
	}
	out := *pc
	out.Temperature = c.Temperature
	return out, true
}

func (c *Config) providerRef(n Name) *ProviderConfig {
	switch n {
	case OpenAI:
		return &c.OpenAI
	case HuggingFace:
		return &c.HuggingFace
	case Gemini:
		return &c.Gemini
	case Anthropic:
		return &c.Anthropic
	case OpenRouter:
		return &c.OpenRouter
	default:
		return nil
	}
}

// EnvKeys returns the configuration key names for the named provider.
func EnvKeys(n Name) (apiKey, model string) {
	k := providerEnv[n]
	return k.APIKey, k.Model
}

// Validate checks the settings shared by every provider. Missing API keys
// are not an error here; they surface as MISSING_API_KEY when the provider
// is called.
func (c Config) Validate() error {
	// Demo mode never resolves a provider, so any name is accepted.
	if _, ok := ParseName(string(c.DefaultProvider)); !ok && !c.DemoMode {
		return fmt.Errorf("unknown default provider: %q", c.DefaultProvider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyRetryAttempts, c.Retry.MaxAttempts)
	}
	if c.Retry.InitialWait < 0 {
		return fmt.Errorf("%s must not be negative", KeyRetryWait)
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("%s must be at least 1, got %g", KeyRetryMultiplier, c.Retry.Multiplier)
	}
	if c.AttemptTimeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyAttemptTimeout)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%s must be within [0, 2], got %g", KeyTemperature, c.Temperature)
	}
	return nil
}
