package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const llmEventColumns = `sequence, id, request_id, provider, model, purpose, latency_ms, success,
	status, error_code, error_message, prompt_chars, response_chars, created_at`

// eventRepo implements EventRepo with plain SQL.
type eventRepo struct {
	db  *sql.DB
	now func() time.Time
}

func (r *eventRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *eventRepo) AppendLLMCall(ctx context.Context, data LLMCallEventData) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO llm_call_events (id, request_id, provider, model, purpose, latency_ms, success,
			status, error_code, error_message, prompt_chars, response_chars, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		data.RequestID,
		data.Provider,
		data.Model,
		data.Purpose,
		data.LatencyMs,
		data.Success,
		data.Status,
		data.ErrorCode,
		data.ErrorMessage,
		data.PromptChars,
		data.ResponseChars,
		r.clock().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save LLM call event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMCalls(ctx context.Context, opts QueryOpts) ([]LLMCallEvent, error) {
	var (
		where []string
		args  []any
	)
	if opts.Provider != "" {
		where = append(where, "provider = ?")
		args = append(args, opts.Provider)
	}
	if opts.Failed {
		where = append(where, "success = 0")
	}

	q := "SELECT " + llmEventColumns + " FROM llm_call_events"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM call events: %w", err)
	}
	defer rows.Close()

	var out []LLMCallEvent
	for rows.Next() {
		ev, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMCall(ctx context.Context, sequence int64) (*LLMCallEvent, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+llmEventColumns+" FROM llm_call_events WHERE sequence = ?", sequence)
	ev, err := scanLLMEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ev, err
}

func (r *eventRepo) UsageByProvider(ctx context.Context) ([]ProviderUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT provider,
			COUNT(*),
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END),
			AVG(latency_ms)
		FROM llm_call_events
		GROUP BY provider
		ORDER BY COUNT(*) DESC, provider`)
	if err != nil {
		return nil, fmt.Errorf("aggregate LLM call events: %w", err)
	}
	defer rows.Close()

	var out []ProviderUsage
	for rows.Next() {
		var u ProviderUsage
		if err := rows.Scan(&u.Provider, &u.Calls, &u.Failures, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(s scanner) (*LLMCallEvent, error) {
	var (
		ev      LLMCallEvent
		created int64
	)
	err := s.Scan(
		&ev.Sequence,
		&ev.ID,
		&ev.RequestID,
		&ev.Provider,
		&ev.Model,
		&ev.Purpose,
		&ev.LatencyMs,
		&ev.Success,
		&ev.Status,
		&ev.ErrorCode,
		&ev.ErrorMessage,
		&ev.PromptChars,
		&ev.ResponseChars,
		&created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan LLM call event: %w", err)
	}
	ev.Timestamp = time.UnixMilli(created).UTC()
	return &ev, nil
}
