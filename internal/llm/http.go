package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPDoer is the subset of *http.Client the adapters depend on.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// httpReply is a fully read upstream response.
type httpReply struct {
	Status int
	Body   []byte
}

func (r httpReply) ok() bool { return r.Status >= 200 && r.Status < 300 }

// postJSON marshals payload, sends it and reads the whole response body.
// A nil reply with a non-nil error means no response was received.
func postJSON(ctx context.Context, client HTTPDoer, url string, header http.Header, payload any) (*httpReply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &httpReply{Status: resp.StatusCode, Body: data}, nil
}

// transportError wraps a failure where no upstream response was received.
func transportError(p Name, err error) *ProviderError {
	return &ProviderError{
		Provider: p,
		Code:     CodeProviderError,
		Message:  "request failed",
		Err:      err,
	}
}

// statusError reports a non-2xx upstream response.
func statusError(p Name, reply *httpReply) *ProviderError {
	return &ProviderError{
		Provider: p,
		Code:     CodeProviderError,
		Status:   reply.Status,
		Message:  fmt.Sprintf("upstream returned %s", http.StatusText(reply.Status)),
		Details:  string(reply.Body),
	}
}

// orDefault returns v unless it is zero.
func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
