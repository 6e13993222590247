package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// HuggingFaceProvider implements the hosted-inference adapter. It posts a
// single text input and unwraps the generated_text field.
type HuggingFaceProvider struct {
	client HTTPDoer
	cfg    ProviderConfig
}

// NewHuggingFaceProvider creates the adapter registered as "huggingface".
func NewHuggingFaceProvider(cfg ProviderConfig, httpClient HTTPDoer) *HuggingFaceProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HuggingFaceProvider{client: httpClient, cfg: cfg}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// Call performs one attempt. Retries are layered on by WithRetry.
func (p *HuggingFaceProvider) Call(ctx context.Context, req Request) (*Result, error) {
	if p.cfg.APIKey == "" {
		key, _ := EnvKeys(HuggingFace)
		return nil, missingKey(HuggingFace, key)
	}

	payload := hfRequest{
		Inputs: joinPrompt(req),
		Parameters: hfParameters{
			MaxNewTokens: orDefault(req.MaxTokens, p.cfg.MaxTokens),
			Temperature:  orDefault(req.Temperature, p.cfg.Temperature),
		},
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	reply, err := postJSON(ctx, p.client, p.endpoint(), header, payload)
	if err != nil {
		return nil, transportError(HuggingFace, err)
	}
	if !reply.ok() {
		return nil, statusError(HuggingFace, reply)
	}

	return &Result{
		AssistantText: unwrapHFText(reply.Body),
		RawResponse:   string(reply.Body),
	}, nil
}

func (p *HuggingFaceProvider) Name() Name { return HuggingFace }

func (p *HuggingFaceProvider) ModelID() string { return p.cfg.Model }

func (p *HuggingFaceProvider) endpoint() string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + "/models/" + p.cfg.Model
}

// unwrapHFText picks generated_text from an array or object body and
// falls back to the raw body for any other shape.
func unwrapHFText(body []byte) string {
	var list []hfGeneration
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) > 0 && list[0].GeneratedText != "" {
			return list[0].GeneratedText
		}
		return string(body)
	}

	var single hfGeneration
	if err := json.Unmarshal(body, &single); err == nil && single.GeneratedText != "" {
		return single.GeneratedText
	}

	return string(body)
}
