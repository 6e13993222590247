package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulilazmi100/micro-skill/internal/fixture"
	"github.com/ulilazmi100/micro-skill/internal/llm"
)

func newTestDispatcher(cfg llm.Config, providers ...llm.Provider) *Dispatcher {
	return New(cfg, WithRegistry(llm.NewRegistryOf(providers...)))
}

func TestGenerate_DemoModeSkipsProviders(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(server.Close)

	cfg := llm.DefaultConfig()
	cfg.DemoMode = true
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.BaseURL = server.URL
	d := New(cfg, WithProviderOptions(llm.WithHTTPClient(server.Client())))

	for _, provider := range []string{"", "openai", "no-such-provider"} {
		start := time.Now()
		gen, err := d.Generate(context.Background(), GenerateRequest{Provider: provider, UserPrompt: "Smoke test"})
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond)
		assert.Equal(t, DemoProvider, gen.Provider)
		assert.Equal(t, fixture.Value(), gen.Parsed)
		assert.JSONEq(t, string(fixture.JSON()), gen.Raw)
	}
	assert.Zero(t, hits.Load(), "demo mode must not reach the network")
}

func TestGenerate_DemoModeIgnoresMissingPrompt(t *testing.T) {
	cfg := llm.DefaultConfig()
	cfg.DemoMode = true
	mock := llm.NewMockProvider(llm.OpenAI)
	d := newTestDispatcher(cfg, mock)

	_, err := d.Generate(context.Background(), GenerateRequest{})
	require.NoError(t, err)
	assert.Zero(t, mock.CallCount())
	assert.True(t, d.DemoMode())
}

func TestGenerate_Success(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		cleaned string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose", "Here you go: {\"a\":1} enjoy", "Here you go: {\"a\":1} enjoy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.Gemini, llm.MockResponse{Text: tt.text, Raw: "raw-body"})
			d := newTestDispatcher(llm.DefaultConfig(), mock)

			gen, err := d.Generate(context.Background(), GenerateRequest{Provider: " Gemini ", UserPrompt: "p", MaxTokens: 42})
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"a": float64(1)}, gen.Parsed)
			assert.Equal(t, "raw-body", gen.Raw)
			assert.Equal(t, tt.cleaned, gen.AssistantText)
			assert.Equal(t, "gemini", gen.Provider)

			require.Len(t, mock.Calls, 1)
			assert.Equal(t, SystemPrompt, mock.Calls[0].System)
			assert.Equal(t, "p", mock.Calls[0].User)
			assert.Equal(t, 42, mock.Calls[0].MaxTokens)
		})
	}
}

func TestGenerate_ProviderResolution(t *testing.T) {
	openai := llm.NewMockProvider(llm.OpenAI, llm.MockResponse{Text: "{}"})
	hf := llm.NewMockProvider(llm.HuggingFace, llm.MockResponse{Text: "{}"})

	cfg := llm.DefaultConfig()
	cfg.DefaultProvider = llm.HuggingFace
	gen, err := newTestDispatcher(cfg, openai, hf).Generate(context.Background(), GenerateRequest{UserPrompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "huggingface", gen.Provider)

	cfg.DefaultProvider = ""
	gen, err = newTestDispatcher(cfg, openai, hf).Generate(context.Background(), GenerateRequest{UserPrompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "openai", gen.Provider)
}

func TestGenerate_WrapperErrors(t *testing.T) {
	tests := []struct {
		name     string
		req      GenerateRequest
		code     llm.Code
		provider string
	}{
		{"missing prompt", GenerateRequest{Provider: "openai"}, llm.CodeMissingUserPrompt, "openai"},
		{"blank prompt", GenerateRequest{Provider: "openai", UserPrompt: " \n\t"}, llm.CodeMissingUserPrompt, "openai"},
		{"prompt checked first", GenerateRequest{Provider: "bogus"}, llm.CodeMissingUserPrompt, "bogus"},
		{"unsupported", GenerateRequest{Provider: "Bogus", UserPrompt: "p"}, llm.CodeUnsupportedProvider, "bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.OpenAI)
			_, err := newTestDispatcher(llm.DefaultConfig(), mock).Generate(context.Background(), tt.req)

			var we *llm.WrapperError
			require.ErrorAs(t, err, &we)
			assert.Equal(t, tt.code, we.Code)
			assert.Equal(t, tt.provider, we.Provider)
			assert.Equal(t, llm.SourceWrapper, we.ErrorSource())
			assert.Zero(t, mock.CallCount())
		})
	}
}

func TestGenerate_ContentErrors(t *testing.T) {
	tests := []struct {
		name    string
		resp    llm.MockResponse
		code    llm.Code
		details string
	}{
		{"empty", llm.MockResponse{Text: "", Raw: `{"choices":[]}`}, llm.CodeEmptyResponse, `{"choices":[]}`},
		{"whitespace", llm.MockResponse{Text: "  \n ", Raw: "raw"}, llm.CodeEmptyResponse, "raw"},
		{"prose", llm.MockResponse{Text: "```\nno json here\n```"}, llm.CodeParseError, "no json here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.OpenAI, tt.resp)
			_, err := newTestDispatcher(llm.DefaultConfig(), mock).Generate(context.Background(), GenerateRequest{UserPrompt: "p"})

			var pe *llm.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.code, pe.Code)
			assert.Equal(t, tt.details, pe.Details)
			assert.Equal(t, llm.OpenAI, pe.Provider)
			assert.Equal(t, llm.KindContent, pe.Code.Kind())
		})
	}
}

func TestGenerate_GeminiCandidateWithoutParts(t *testing.T) {
	body := `{"candidates":[{"content":{"role":"model"},"finishReason":"MAX_TOKENS"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	cfg := llm.DefaultConfig()
	cfg.Gemini.APIKey = "gm-key"
	cfg.Gemini.BaseURL = server.URL
	d := New(cfg, WithProviderOptions(llm.WithHTTPClient(server.Client())))

	gen, err := d.Generate(context.Background(), GenerateRequest{Provider: "gemini", UserPrompt: "x"})
	assert.Nil(t, gen)

	var pe *llm.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, llm.CodeEmptyResponse, pe.Code)
	assert.Equal(t, llm.Gemini, pe.Provider)
	assert.Equal(t, body, pe.Details)
}

func TestGenerate_AdapterErrorPassesThrough(t *testing.T) {
	upstream := &llm.ProviderError{Provider: llm.OpenAI, Code: llm.CodeProviderError, Status: 401, Details: "bad key"}
	mock := llm.NewMockProvider(llm.OpenAI, llm.MockResponse{Err: upstream})

	_, err := newTestDispatcher(llm.DefaultConfig(), mock).Generate(context.Background(), GenerateRequest{UserPrompt: "p"})
	assert.True(t, errors.Is(err, upstream))
}

func TestGeneratePlainText(t *testing.T) {
	mock := llm.NewMockProvider(llm.Anthropic,
		llm.MockResponse{Text: "```\nStep one.\n```", Raw: "raw"},
		llm.MockResponse{Text: ""},
	)
	d := newTestDispatcher(llm.DefaultConfig(), mock)

	out, err := d.GeneratePlainText(context.Background(), PlainTextRequest{Provider: "anthropic", System: "sys", User: "u", MaxTokens: 300})
	require.NoError(t, err)
	assert.Equal(t, "Step one.", out.AssistantText)
	assert.Equal(t, "raw", out.RawResponse)
	assert.Equal(t, "anthropic", out.Provider)
	assert.Equal(t, llm.Request{System: "sys", User: "u", MaxTokens: 300}, mock.Calls[0])

	out, err = d.GeneratePlainText(context.Background(), PlainTextRequest{Provider: "anthropic", User: "u"})
	require.NoError(t, err, "blank plain text is not an error")
	assert.Empty(t, out.AssistantText)

	_, err = d.GeneratePlainText(context.Background(), PlainTextRequest{Provider: "anthropic"})
	assert.Equal(t, llm.CodeMissingUserPrompt, llm.CodeOf(err))
}

func TestGeneratePlainText_DemoMode(t *testing.T) {
	cfg := llm.DefaultConfig()
	cfg.DemoMode = true
	out, err := newTestDispatcher(cfg).GeneratePlainText(context.Background(), PlainTextRequest{Provider: "whatever"})
	require.NoError(t, err)
	assert.Equal(t, DemoProvider, out.Provider)
	assert.Equal(t, fixture.Supplement(0, fixture.KindExpansion), out.AssistantText)
}
