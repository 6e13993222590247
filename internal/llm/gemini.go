package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"google.golang.org/genai"

	"github.com/ulilazmi100/micro-skill/internal/logging"
)

// geminiAuthFallback lists the statuses that trigger an immediate retry
// with the key in the query string instead of the header.
var geminiAuthFallback = []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound}

// GeminiProvider implements the generateContent adapter. Wire types come
// from the genai SDK; the transport is plain HTTP so the credential can be
// sent either as a header or as a query parameter.
type GeminiProvider struct {
	client HTTPDoer
	cfg    ProviderConfig
	log    *logging.Logger
}

// NewGeminiProvider creates the adapter registered as "gemini".
func NewGeminiProvider(cfg ProviderConfig, httpClient HTTPDoer, log *logging.Logger) *GeminiProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logging.Nop()
	}
	return &GeminiProvider{client: httpClient, cfg: cfg, log: log}
}

type geminiRequest struct {
	Contents         []*genai.Content        `json:"contents"`
	GenerationConfig *genai.GenerationConfig `json:"generationConfig"`
}

// Call performs one attempt. Retries are layered on by WithRetry.
func (p *GeminiProvider) Call(ctx context.Context, req Request) (*Result, error) {
	if p.cfg.APIKey == "" {
		key, _ := EnvKeys(Gemini)
		return nil, missingKey(Gemini, key)
	}

	temp := float32(orDefault(req.Temperature, p.cfg.Temperature))
	payload := geminiRequest{
		Contents: []*genai.Content{
			{Parts: []*genai.Part{{Text: joinPrompt(req)}}},
		},
		GenerationConfig: &genai.GenerationConfig{
			Temperature:     &temp,
			MaxOutputTokens: int32(orDefault(req.MaxTokens, p.cfg.MaxTokens)),
			CandidateCount:  1,
		},
	}

	reply, err := p.send(ctx, payload, false)
	if err != nil {
		return nil, transportError(Gemini, err)
	}
	if slices.Contains(geminiAuthFallback, reply.Status) {
		reply, err = p.send(ctx, payload, true)
		if err != nil {
			return nil, transportError(Gemini, err)
		}
	}
	if !reply.ok() {
		return nil, statusError(Gemini, reply)
	}

	return &Result{
		AssistantText: unwrapGeminiText(reply.Body),
		RawResponse:   string(reply.Body),
	}, nil
}

func (p *GeminiProvider) Name() Name { return Gemini }

func (p *GeminiProvider) ModelID() string { return p.cfg.Model }

func (p *GeminiProvider) send(ctx context.Context, payload geminiRequest, queryKey bool) (*httpReply, error) {
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/models/" + url.PathEscape(p.cfg.Model) + ":generateContent"

	header := http.Header{}
	if queryKey {
		endpoint += "?key=" + url.QueryEscape(p.cfg.APIKey)
	} else {
		header.Set("x-goog-api-key", p.cfg.APIKey)
	}

	reply, err := postJSON(ctx, p.client, endpoint, header, payload)
	if err != nil {
		err = redactURL(err)
	}
	auth := "header"
	if queryKey {
		auth = "query"
	}
	if err != nil {
		p.log.Debug("gemini request failed", "auth", auth, "error", err)
		return nil, err
	}
	p.log.Debug("gemini response", "auth", auth, "status", reply.Status)
	return reply, nil
}

// geminiEnvelope is a lenient view of a response whose candidate content
// may be a plain string, or that carries a top-level responseText.
type geminiEnvelope struct {
	Candidates []struct {
		Content json.RawMessage `json:"content"`
	} `json:"candidates"`
	ResponseText string `json:"responseText"`
}

// unwrapGeminiText concatenates the first candidate's part texts, falling
// back to a string content, then responseText, then the raw body. A
// candidate content without parts (e.g. a MAX_TOKENS stop) yields "".
func unwrapGeminiText(body []byte) string {
	var resp genai.GenerateContentResponse
	if err := json.Unmarshal(body, &resp); err == nil && len(resp.Candidates) > 0 {
		if c := resp.Candidates[0]; c != nil && c.Content != nil {
			var b strings.Builder
			for _, part := range c.Content.Parts {
				if part != nil {
					b.WriteString(part.Text)
				}
			}
			return b.String()
		}
	}

	var env geminiEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if len(env.Candidates) > 0 {
			var s string
			if err := json.Unmarshal(env.Candidates[0].Content, &s); err == nil {
				return s
			}
		}
		if env.ResponseText != "" {
			return env.ResponseText
		}
	}

	return string(body)
}

// redactURL drops the query string from a *url.Error so the key sent by the
// query fallback never reaches error messages.
func redactURL(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	if base, _, found := strings.Cut(uerr.URL, "?"); found {
		uerr.URL = base + "?key=REDACTED"
	}
	return err
}
