package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	// Text is returned as AssistantText. RawResponse defaults to Text when
	// Raw is empty.
	Text string
	Raw  string
	Err  error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	name      Name
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider registered under name.
func NewMockProvider(name Name, responses ...MockResponse) *MockProvider {
	return &MockProvider{name: name, responses: responses}
}

// Call returns the next canned response, or a PROVIDER_ERROR when the
// queue is empty.
func (m *MockProvider) Call(_ context.Context, req Request) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ProviderError{
			Provider: m.name,
			Code:     CodeProviderError,
			Message:  "mock response queue is empty",
		}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	raw := resp.Raw
	if raw == "" {
		raw = resp.Text
	}
	return &Result{AssistantText: resp.Text, RawResponse: raw}, nil
}

func (m *MockProvider) Name() Name { return m.name }

// ModelID returns "mock".
func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Call invocations made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
