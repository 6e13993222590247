package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is checked in TestFileStore_WAL.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileStore_WAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}

func TestMigrationsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendLLMCall(ctx, LLMCallEventData{Provider: "openai", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	var version int64
	if err := s.DB().QueryRow("SELECT MAX(version_id) FROM goose_db_version").Scan(&version); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}

	got, err := s.EventRepo().QueryLLMCalls(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the event to survive reopen, got %d", len(got))
	}
}

func TestAppendAndQueryLLMCalls(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMCallEventData{
		{RequestID: "r1", Provider: "openai", Model: "gpt-3.5-turbo", Purpose: "lessons", LatencyMs: 120, Success: true, PromptChars: 900, ResponseChars: 1500},
		{RequestID: "r2", Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "lessons", LatencyMs: 300, Success: false, Status: 503, ErrorCode: "PROVIDER_ERROR", ErrorMessage: "unavailable"},
		{RequestID: "r3", Provider: "openai", Model: "gpt-3.5-turbo", Purpose: "hint", LatencyMs: 80, Success: true},
	}
	for _, ev := range events {
		if err := repo.AppendLLMCall(ctx, ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMCalls(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].RequestID != "r3" {
		t.Errorf("expected newest first, got %q", all[0].RequestID)
	}
	if all[0].ID == "" {
		t.Error("expected generated event ID")
	}
	if all[0].Timestamp.IsZero() {
		t.Error("expected timestamp")
	}

	openai, err := repo.QueryLLMCalls(ctx, QueryOpts{Provider: "openai", Limit: 1})
	if err != nil {
		t.Fatalf("query provider: %v", err)
	}
	if len(openai) != 1 || openai[0].Purpose != "hint" {
		t.Fatalf("unexpected provider query result: %+v", openai)
	}

	failed, err := repo.QueryLLMCalls(ctx, QueryOpts{Failed: true})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed event, got %d", len(failed))
	}
	if failed[0].Status != 503 || failed[0].ErrorCode != "PROVIDER_ERROR" || failed[0].Success {
		t.Errorf("unexpected failed event: %+v", failed[0])
	}
}

func TestGetLLMCall(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendLLMCall(ctx, LLMCallEventData{Provider: "huggingface", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}

	list, err := repo.QueryLLMCalls(ctx, QueryOpts{Limit: 1})
	if err != nil || len(list) != 1 {
		t.Fatalf("query: %v (%d rows)", err, len(list))
	}

	ev, err := repo.GetLLMCall(ctx, list[0].Sequence)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ev.Provider != "huggingface" || !ev.Success {
		t.Errorf("unexpected event: %+v", ev)
	}

	_, err = repo.GetLLMCall(ctx, 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUsageByProvider(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, ev := range []LLMCallEventData{
		{Provider: "openai", LatencyMs: 100, Success: true},
		{Provider: "openai", LatencyMs: 300, Success: false},
		{Provider: "gemini", LatencyMs: 50, Success: true},
	} {
		if err := repo.AppendLLMCall(ctx, ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	usage, err := repo.UsageByProvider(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(usage))
	}
	if usage[0].Provider != "openai" || usage[0].Calls != 2 || usage[0].Failures != 1 || usage[0].AvgLatencyMs != 200 {
		t.Errorf("unexpected openai usage: %+v", usage[0])
	}
	if usage[1].Provider != "gemini" || usage[1].Calls != 1 || usage[1].Failures != 0 {
		t.Errorf("unexpected gemini usage: %+v", usage[1])
	}
}

func TestAppendUsesClock(t *testing.T) {
	s := openTestStore(t)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &eventRepo{db: s.DB(), now: func() time.Time { return fixed }}
	ctx := context.Background()

	if err := repo.AppendLLMCall(ctx, LLMCallEventData{Provider: "openai"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	list, err := repo.QueryLLMCalls(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !list[0].Timestamp.Equal(fixed) {
		t.Errorf("timestamp = %v, want %v", list[0].Timestamp, fixed)
	}
}

func TestDefaultDBPath_Env(t *testing.T) {
	want := filepath.Join(t.TempDir(), "sub", "x.db")
	t.Setenv("MICROSKILL_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Errorf("DefaultDBPath = %q, want %q", got, want)
	}
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MICROSKILL_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dir, "microskill", "microskill.db"); got != want {
		t.Errorf("DefaultDBPath = %q, want %q", got, want)
	}
}
