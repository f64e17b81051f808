package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tailor/internal/services/claude"
)

func textResponse(text string) map[string]any {
	return map[string]any{
		"content":     []any{map[string]any{"type": "text", "text": text}},
		"stop_reason": "end_turn",
	}
}

const fakeDoc = "\\documentclass{article}\\begin{document}ok\\end{document}"

func newServerClient(t *testing.T, handler http.HandlerFunc) *claude.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return claude.NewClient(
		claude.Config{APIKey: "test-key", Model: "test-model"},
		claude.WithBaseURL(server.URL),
		claude.WithSleeper(func(time.Duration) {}),
	)
}

func TestTransformReturnsCleanedDocument(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Fatalf("unexpected api key header %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Fatal("missing anthropic-version header")
		}
		var req struct {
			System   string           `json:"system"`
			Messages []claude.Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System != "sys" || len(req.Messages) != 1 {
			t.Fatalf("unexpected request: system=%q messages=%d", req.System, len(req.Messages))
		}
		_ = json.NewEncoder(w).Encode(textResponse("```latex\n" + fakeDoc + "\n```"))
	})

	doc, err := client.Transform(context.Background(), "sys", []claude.Message{{Role: "user", Content: "optimize"}})
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if doc != fakeDoc {
		t.Fatalf("expected fences stripped, got %q", doc)
	}
}

func TestTransformRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(textResponse(fakeDoc))
	})

	doc, err := client.Transform(context.Background(), "sys", []claude.Message{{Role: "user", Content: "x"}})
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if doc != fakeDoc {
		t.Fatalf("unexpected document: %q", doc)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestTransformRetriesNonDocumentResponse(t *testing.T) {
	var calls atomic.Int32
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_ = json.NewEncoder(w).Encode(textResponse("Sure! Here is some commentary instead of a document."))
			return
		}
		_ = json.NewEncoder(w).Encode(textResponse(fakeDoc))
	})

	doc, err := client.Transform(context.Background(), "sys", []claude.Message{{Role: "user", Content: "x"}})
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if doc != fakeDoc {
		t.Fatalf("unexpected document: %q", doc)
	}
}

func TestTransformExhaustsRetryBound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := claude.NewClient(
		claude.Config{APIKey: "k", Model: "m"},
		claude.WithBaseURL(server.URL),
		claude.WithRetryMaxAttempts(3),
		claude.WithSleeper(func(time.Duration) {}),
	)
	_, err := client.Transform(context.Background(), "sys", []claude.Message{{Role: "user", Content: "x"}})
	if err == nil {
		t.Fatal("expected error after retry exhaustion")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestTransformDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	if _, err := client.Transform(context.Background(), "sys", []claude.Message{{Role: "user", Content: "x"}}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single attempt for 400, got %d", calls.Load())
	}
}

func TestTransformRequiresAPIKey(t *testing.T) {
	client := claude.NewClient(claude.Config{})
	if _, err := client.Transform(context.Background(), "sys", []claude.Message{{Role: "user", Content: "x"}}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestCleanDocumentVariants(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```latex\n" + fakeDoc + "\n```", fakeDoc},
		{"```tex\n" + fakeDoc + "\n```", fakeDoc},
		{"```\n" + fakeDoc + "\n```", fakeDoc},
		{"  " + fakeDoc + "  ", fakeDoc},
	}
	for _, tc := range cases {
		if got := claude.CleanDocument(tc.in); got != tc.want {
			t.Fatalf("CleanDocument(%q) = %q", tc.in, got)
		}
	}
}
