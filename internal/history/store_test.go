package history_test

import (
	"context"
	"testing"
	"time"

	"tailor/internal/config"
	"tailor/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	cfg := &config.Config{}
	cfg.Paths.DataDir = t.TempDir()
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run, err := store.Record(ctx, history.Run{
		RequestID:      "req-1",
		Success:        true,
		Compiled:       true,
		PageCount:      1,
		FixAttempts:    1,
		ShrinkAttempts: 0,
		Duration:       2500 * time.Millisecond,
		DocumentBytes:  4096,
		Summary:        "optimized successfully: compiles to 1 page(s)",
	})
	if err != nil {
		t.Fatalf("record run: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("recorded run must have an ID")
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("recorded run must have a creation time")
	}

	got, err := store.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got == nil {
		t.Fatal("expected run, got nil")
	}
	if !got.Success || !got.Compiled || got.PageCount != 1 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if got.Duration != 2500*time.Millisecond {
		t.Fatalf("duration = %v, want 2.5s", got.Duration)
	}
	if got.Summary != run.Summary {
		t.Fatalf("summary mismatch: %q", got.Summary)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	store := openStore(t)
	got, err := store.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("get missing run: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing run, got %+v", got)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Record(ctx, history.Run{
			RequestID: "req",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Summary:   "run",
		})
		if err != nil {
			t.Fatalf("record run %d: %v", i, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].CreatedAt.After(runs[1].CreatedAt) {
		t.Fatalf("runs not newest-first: %v then %v", runs[0].CreatedAt, runs[1].CreatedAt)
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("list all runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := &config.Config{}
	cfg.Paths.DataDir = t.TempDir()

	first, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := first.Record(context.Background(), history.Run{RequestID: "a", Summary: "x"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	runs, err := second.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run after reopen, got %d", len(runs))
	}
}
