package preflight_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tailor/internal/config"
	"tailor/internal/preflight"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("Scratch directory", dir)
	if !result.Passed {
		t.Fatalf("expected pass for %s, got %q", dir, result.Detail)
	}

	result = preflight.CheckDirectoryAccess("Scratch directory", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatal("expected failure for missing directory")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	result = preflight.CheckDirectoryAccess("Scratch directory", file)
	if result.Passed {
		t.Fatal("expected failure for non-directory")
	}
}

func TestCheckCompiler(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "pdflatex")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	if result := preflight.CheckCompiler(stub); !result.Passed {
		t.Fatalf("expected pass, got %q", result.Detail)
	}
	if result := preflight.CheckCompiler("definitely-not-a-latex-binary"); result.Passed {
		t.Fatal("expected failure for missing binary")
	}
	if result := preflight.CheckCompiler("   "); result.Passed || result.Detail != "command not configured" {
		t.Fatalf("expected unconfigured-command failure, got %+v", result)
	}
}

func TestCheckAPIKey(t *testing.T) {
	if result := preflight.CheckAPIKey("sk-ant-test"); !result.Passed {
		t.Fatalf("expected pass, got %q", result.Detail)
	}
	if result := preflight.CheckAPIKey("   "); result.Passed {
		t.Fatal("expected failure for blank key")
	}
}

func TestCheckLLMAgainstMockServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"pong"}]}`))
	}))
	defer server.Close()

	result := preflight.CheckLLM(context.Background(), config.LLM{
		APIKey:  "sk-ant-test",
		BaseURL: server.URL,
		Model:   "test-model",
	})
	if !result.Passed {
		t.Fatalf("expected pass, got %q", result.Detail)
	}

	result = preflight.CheckLLM(context.Background(), config.LLM{BaseURL: server.URL})
	if result.Passed {
		t.Fatal("expected failure when key is missing")
	}
}

func TestRunAllCoversRequiredChecks(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Paths.ScratchDir = dir
	cfg.Paths.LogDir = dir
	cfg.Paths.DataDir = dir
	cfg.LaTeX.Command = "definitely-not-a-latex-binary"
	cfg.LLM.APIKey = "sk-ant-test"

	results := preflight.RunAll(context.Background(), cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if preflight.Passed(results) {
		t.Fatal("expected overall failure with missing compiler")
	}

	var compilerFailed bool
	for _, result := range results {
		if result.Name == "LaTeX compiler" && !result.Passed {
			compilerFailed = true
		}
	}
	if !compilerFailed {
		t.Fatal("compiler check should have failed")
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := preflight.RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}
