package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the chat-completion adapter using the OpenAI
// SDK. It also serves OpenRouter and other OpenAI-compatible APIs via
// BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	name   Name
	model  string
	cfg    ProviderConfig
}

// NewOpenAIProvider creates the adapter registered as "openai". A missing
// API key is reported when the provider is called.
func NewOpenAIProvider(cfg ProviderConfig, httpClient HTTPDoer) *OpenAIProvider {
	return newOpenAICompatible(OpenAI, cfg, httpClient)
}

func newOpenAICompatible(name Name, cfg ProviderConfig, httpClient HTTPDoer) *OpenAIProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = capturingDoer{inner: httpClient}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		name:   name,
		model:  cfg.Model,
		cfg:    cfg,
	}
}

func (p *OpenAIProvider) Call(ctx context.Context, req Request) (*Result, error) {
	if p.cfg.APIKey == "" {
		key, _ := EnvKeys(p.name)
		return nil, missingKey(p.name, key)
	}

	chatReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   orDefault(req.MaxTokens, p.cfg.MaxTokens),
		Temperature: float32(orDefault(req.Temperature, p.cfg.Temperature)),
	}

	capt := &capture{}
	resp, err := p.client.CreateChatCompletion(withCapture(ctx, capt), chatReq)
	if err != nil {
		return nil, p.mapError(err, capt)
	}

	text := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}

	return &Result{AssistantText: text, RawResponse: string(capt.body)}, nil
}

func (p *OpenAIProvider) Name() Name { return p.name }

func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) mapError(err error, capt *capture) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider: p.name,
			Code:     CodeProviderError,
			Status:   apiErr.HTTPStatusCode,
			Message:  apiErr.Message,
			Details:  string(capt.body),
			Err:      err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{
			Provider: p.name,
			Code:     CodeProviderError,
			Status:   reqErr.HTTPStatusCode,
			Message:  fmt.Sprintf("upstream returned %s", http.StatusText(reqErr.HTTPStatusCode)),
			Details:  string(reqErr.Body),
			Err:      err,
		}
	}

	// A 2xx status that failed to decode.
	if capt.status >= 200 && capt.status < 300 {
		return &ProviderError{
			Provider: p.name,
			Code:     CodeInvalidResponse,
			Status:   capt.status,
			Message:  "response body is not a chat completion",
			Details:  string(capt.body),
			Err:      err,
		}
	}

	return transportError(p.name, err)
}

// capture records the status and body of the upstream response seen by a
// single call.
type capture struct {
	status int
	body   []byte
}

type captureKey struct{}

func withCapture(ctx context.Context, c *capture) context.Context {
	return context.WithValue(ctx, captureKey{}, c)
}

// capturingDoer buffers response bodies into the capture carried by the
// request context, then hands the SDK an equivalent reader.
type capturingDoer struct {
	inner HTTPDoer
}

func (d capturingDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.inner.Do(req)
	if err != nil {
		return resp, err
	}

	c, ok := req.Context().Value(captureKey{}).(*capture)
	if !ok {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.status = resp.StatusCode
	c.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
