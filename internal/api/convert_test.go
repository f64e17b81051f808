package api_test

import (
	"testing"
	"time"

	"tailor/internal/api"
	"tailor/internal/history"
	"tailor/internal/latex"
	"tailor/internal/pipeline"
)

func TestFromResult(t *testing.T) {
	result := pipeline.Result{
		Document:  "\\documentclass{article}",
		Success:   true,
		Compiled:  true,
		PageCount: 1,
		Summary:   "optimized successfully: compiles to 1 page(s)",
		Attempts: []pipeline.Attempt{
			{Phase: pipeline.PhaseOptimize, Index: 1},
			{Phase: pipeline.PhaseFix, Index: 2},
			{Phase: pipeline.PhaseShrink, Index: 3},
			{Phase: pipeline.PhaseFix, Index: 4},
		},
	}

	resp := api.FromResult(result)
	if !resp.Success || resp.PageCount != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.FixAttempts != 2 || resp.ShrinkAttempts != 1 {
		t.Fatalf("attempt counts wrong: fixes=%d shrinks=%d", resp.FixAttempts, resp.ShrinkAttempts)
	}
	if resp.OptimizedLatex != result.Document || resp.OptimizationSummary != result.Summary {
		t.Fatal("document or summary not carried through")
	}
}

func TestFromResultDegraded(t *testing.T) {
	result := pipeline.Result{
		Document:  "\\documentclass{article}",
		Compiled:  true,
		PageCount: 2,
		Summary:   "document compiles but spans 2 page(s)",
		Attempts: []pipeline.Attempt{
			{Phase: pipeline.PhaseOptimize, Index: 1, Diagnostic: latex.Diagnostic{Compiled: true, PageCount: 2}},
		},
	}
	resp := api.FromResult(result)
	if resp.Success {
		t.Fatal("degraded result must not report success")
	}
	if !resp.Compiled || resp.PageCount != 2 {
		t.Fatalf("degraded-with-artifact fields lost: %+v", resp)
	}
}

func TestFromRun(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := history.Run{
		ID:             7,
		RequestID:      "req-7",
		CreatedAt:      created,
		Success:        true,
		Compiled:       true,
		PageCount:      1,
		FixAttempts:    1,
		ShrinkAttempts: 2,
		Duration:       1500 * time.Millisecond,
		DocumentBytes:  2048,
		Summary:        "ok",
	}

	view := api.FromRun(run)
	if view.ID != 7 || view.CreatedAt != "2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.DurationMS != 1500 {
		t.Fatalf("duration_ms = %d, want 1500", view.DurationMS)
	}
}

func TestFromRunsSkipsNil(t *testing.T) {
	views := api.FromRuns([]*history.Run{nil, {ID: 1}, nil})
	if len(views) != 1 || views[0].ID != 1 {
		t.Fatalf("unexpected views: %+v", views)
	}
}
