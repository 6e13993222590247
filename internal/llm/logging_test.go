package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ulilazmi100/micro-skill/internal/store"
)

type fakeEventRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.LLMCallEventData
	err    error
}

func (f *fakeEventRepo) AppendLLMCall(_ context.Context, data store.LLMCallEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, data)
	return f.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	repo := &fakeEventRepo{}
	mock := NewMockProvider(OpenAI, MockResponse{Text: "hello"})
	p := WithLogging(mock, repo, nil)

	ctx := WithRequestID(WithPurpose(context.Background(), "lessons"), "req-1")
	res, err := p.Call(ctx, Request{System: "abc", User: "de"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AssistantText != "hello" {
		t.Fatalf("unexpected text: %q", res.AssistantText)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if !ev.Success || ev.Provider != "openai" || ev.Model != "mock" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.Purpose != "lessons" || ev.RequestID != "req-1" {
		t.Errorf("context labels not recorded: %+v", ev)
	}
	if ev.PromptChars != 5 || ev.ResponseChars != 5 {
		t.Errorf("char counts = %d/%d", ev.PromptChars, ev.ResponseChars)
	}
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	repo := &fakeEventRepo{}
	upstream := &ProviderError{Provider: Gemini, Code: CodeProviderError, Status: 503}
	mock := NewMockProvider(Gemini, MockResponse{Err: upstream})
	p := WithLogging(mock, repo, nil)

	_, err := p.Call(context.Background(), Request{})
	if !errors.Is(err, upstream) {
		t.Fatalf("decorator must pass errors through, got %v", err)
	}

	ev := repo.events[0]
	if ev.Success || ev.ErrorCode != "PROVIDER_ERROR" || ev.Status != 503 || ev.ErrorMessage == "" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.Purpose != "unknown" {
		t.Errorf("purpose = %q, want unknown", ev.Purpose)
	}
}

func TestLoggingProvider_RecorderFailureDoesNotFailCall(t *testing.T) {
	repo := &fakeEventRepo{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(OpenAI, MockResponse{Text: "ok"}), repo, nil)

	if _, err := p.Call(context.Background(), Request{}); err != nil {
		t.Fatalf("recording failure leaked: %v", err)
	}
}

func TestLoggingProvider_NilRepo(t *testing.T) {
	p := WithLogging(NewMockProvider(OpenAI, MockResponse{Text: "ok"}), nil, nil)
	if _, err := p.Call(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != OpenAI || p.ModelID() != "mock" {
		t.Errorf("identity not forwarded: %s/%s", p.Name(), p.ModelID())
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(DefaultConfig())
	for _, name := range Names() {
		p, ok := reg.Lookup(name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		if p.Name() != name {
			t.Errorf("Lookup(%s).Name() = %s", name, p.Name())
		}
	}
	if _, ok := reg.Lookup("bogus"); ok {
		t.Fatal("unexpected provider")
	}

	mock := NewMockProvider(Gemini)
	custom := NewRegistryOf(mock)
	if p, ok := custom.Lookup(Gemini); !ok || p != Provider(mock) {
		t.Fatal("NewRegistryOf must register by name")
	}
}

func TestRegistry_MissingKeyRecorded(t *testing.T) {
	repo := &fakeEventRepo{}
	reg := NewRegistry(DefaultConfig(), WithEventRepo(repo))
	p, _ := reg.Lookup(HuggingFace)

	_, err := p.Call(context.Background(), Request{User: "u"})
	if CodeOf(err) != CodeMissingAPIKey {
		t.Fatalf("expected MISSING_API_KEY, got %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].ErrorCode != "MISSING_API_KEY" {
		t.Fatalf("expected one recorded failure, got %+v", repo.events)
	}
}
