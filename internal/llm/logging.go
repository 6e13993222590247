package llm

import (
	"context"
	"errors"
	"time"

	"github.com/ulilazmi100/micro-skill/internal/logging"
	"github.com/ulilazmi100/micro-skill/internal/store"
)

// LoggingProvider is a decorator that logs every provider call and records
// it as an event when an event repo is configured.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	log       *logging.Logger
}

// WithLogging wraps a Provider with call logging. repo may be nil.
func WithLogging(p Provider, repo store.EventRepo, log *logging.Logger) Provider {
	if log == nil {
		log = logging.Nop()
	}
	return &LoggingProvider{inner: p, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Call(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	res, err := l.inner.Call(ctx, req)

	data := store.LLMCallEventData{
		RequestID:   RequestIDFrom(ctx),
		Provider:    string(l.inner.Name()),
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		PromptChars: len(req.System) + len(req.User),
	}
	if res != nil {
		data.ResponseChars = len(res.AssistantText)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		data.ErrorCode = string(CodeOf(err))
		var pe *ProviderError
		if errors.As(err, &pe) {
			data.Status = pe.Status
		}
	}

	kv := []any{
		"provider", data.Provider,
		"model", data.Model,
		"purpose", data.Purpose,
		"latency_ms", data.LatencyMs,
	}
	if err != nil {
		l.log.Warn("provider call failed", append(kv, "code", data.ErrorCode, "status", data.Status)...)
	} else {
		l.log.Info("provider call succeeded", append(kv, "response_chars", data.ResponseChars)...)
	}

	// Record the event but don't fail the request if recording fails.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMCall(context.WithoutCancel(ctx), data); logErr != nil {
			l.log.Warn("failed to record provider call event", "error", logErr)
		}
	}

	return res, err
}

func (l *LoggingProvider) Name() Name { return l.inner.Name() }

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }
