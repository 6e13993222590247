package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit    int    // max results (0 = unlimited)
	Provider string // exact provider match ("" = any)
	Failed   bool   // only unsuccessful calls
}

// LLMCallEventData captures the data for a single provider call.
type LLMCallEventData struct {
	RequestID     string
	Provider      string
	Model         string
	Purpose       string
	LatencyMs     int64
	Success       bool
	Status        int
	ErrorCode     string
	ErrorMessage  string
	PromptChars   int
	ResponseChars int
}

// LLMCallEvent is a stored provider call.
type LLMCallEvent struct {
	Sequence  int64
	ID        string
	Timestamp time.Time
	LLMCallEventData
}

// ProviderUsage aggregates calls per provider.
type ProviderUsage struct {
	Provider     string
	Calls        int
	Failures     int
	AvgLatencyMs float64
}

// EventRepo provides append and query access to provider call events.
type EventRepo interface {
	// AppendLLMCall records a provider call event.
	AppendLLMCall(ctx context.Context, data LLMCallEventData) error

	// QueryLLMCalls returns events newest first.
	QueryLLMCalls(ctx context.Context, opts QueryOpts) ([]LLMCallEvent, error)

	// GetLLMCall returns the event with the given sequence number, or
	// ErrNotFound.
	GetLLMCall(ctx context.Context, sequence int64) (*LLMCallEvent, error)

	// UsageByProvider aggregates all events by provider.
	UsageByProvider(ctx context.Context) ([]ProviderUsage, error)
}
