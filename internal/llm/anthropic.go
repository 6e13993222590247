package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicModels maps friendly names to Anthropic model IDs.
var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// AnthropicProvider implements the messages adapter using the Anthropic SDK.
// SDK retries are disabled so a call is a single upstream attempt.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
	cfg    ProviderConfig
}

// NewAnthropicProvider creates the adapter registered as "anthropic".
func NewAnthropicProvider(cfg ProviderConfig, httpClient HTTPDoer) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	client := anthropic.NewClient(opts...)

	return &AnthropicProvider{
		client: &client,
		model:  resolveModel(cfg.Model, anthropicModels),
		cfg:    cfg,
	}
}

func (p *AnthropicProvider) Call(ctx context.Context, req Request) (*Result, error) {
	if p.cfg.APIKey == "" {
		key, _ := EnvKeys(Anthropic)
		return nil, missingKey(Anthropic, key)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(orDefault(req.MaxTokens, p.cfg.MaxTokens)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
		Temperature: anthropic.Float(orDefault(req.Temperature, p.cfg.Temperature)),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	var httpResp *http.Response
	msg, err := p.client.Messages.New(ctx, params, option.WithResponseInto(&httpResp))
	if err != nil {
		return nil, mapAnthropicError(err, httpResp)
	}

	text := ""
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	return &Result{AssistantText: text, RawResponse: msg.RawJSON()}, nil
}

func (p *AnthropicProvider) Name() Name { return Anthropic }

func (p *AnthropicProvider) ModelID() string { return p.model }

func mapAnthropicError(err error, resp *http.Response) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider: Anthropic,
			Code:     CodeProviderError,
			Status:   apiErr.StatusCode,
			Message:  fmt.Sprintf("upstream returned %s", http.StatusText(apiErr.StatusCode)),
			Details:  apiErr.RawJSON(),
			Err:      err,
		}
	}
	if resp != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &ProviderError{
			Provider: Anthropic,
			Code:     CodeInvalidResponse,
			Status:   resp.StatusCode,
			Message:  "response body is not a message",
			Err:      err,
		}
	}
	return transportError(Anthropic, err)
}

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	// If not in the map, use as-is (allows direct model IDs).
	return name
}
