package prompts_test

import (
	"strings"
	"testing"

	"tailor/internal/prompts"
)

func TestSystemPromptLoaded(t *testing.T) {
	sys := prompts.System()
	if !strings.Contains(sys, "One-Page Enforcement") {
		t.Fatal("system prompt missing phase instructions")
	}
	if !strings.Contains(sys, "SELF-VALIDATION CHECKLIST") {
		t.Fatal("system prompt missing self-validation checklist")
	}
}

func TestOptimizationEmbedsInputs(t *testing.T) {
	p := prompts.Optimization("\\documentclass{article}", "Senior Gopher wanted")
	if !strings.Contains(p, "Senior Gopher wanted") {
		t.Fatal("job description missing from prompt")
	}
	if !strings.Contains(p, "\\documentclass{article}") {
		t.Fatal("document missing from prompt")
	}
}

func TestFixEmbedsExcerptVerbatim(t *testing.T) {
	excerpt := "! Undefined control sequence.\nl.42 \\resumeItem"
	p := prompts.Fix(excerpt)
	if !strings.Contains(p, excerpt) {
		t.Fatal("fix prompt must embed the exact error excerpt")
	}
}

func TestShrinkCarriesPageCountsNotErrors(t *testing.T) {
	p := prompts.Shrink(3, 1)
	if !strings.Contains(p, "produces 3 pages") {
		t.Fatalf("shrink prompt missing page count: %q", p)
	}
	if !strings.Contains(p, "exactly 1 page(s)") {
		t.Fatalf("shrink prompt missing target: %q", p)
	}
	if strings.Contains(p, "error") && strings.Contains(p, "```") {
		t.Fatal("shrink prompt must not carry an error excerpt block")
	}
}
