package compiler

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

// stubCompiler routes commandContext to the test binary's helper process,
// forwarding the scratch workspace through the environment.
func stubCompiler(t *testing.T, mode string, pages int, calls *int) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if calls != nil {
			*calls++
		}
		outDir := ""
		for i, arg := range args {
			if arg == "-output-directory" && i+1 < len(args) {
				outDir = args[i+1]
			}
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"TAILOR_HELPER_MODE="+mode,
			"TAILOR_HELPER_OUTDIR="+outDir,
			"TAILOR_HELPER_PAGES="+strconv.Itoa(pages),
		)
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	dir := os.Getenv("TAILOR_HELPER_OUTDIR")
	pages, _ := strconv.Atoi(os.Getenv("TAILOR_HELPER_PAGES"))
	switch os.Getenv("TAILOR_HELPER_MODE") {
	case "success":
		var pdf strings.Builder
		pdf.WriteString("%PDF-1.5\n1 0 obj << /Type /Pages /Count 9 >> endobj\n")
		for i := 0; i < pages; i++ {
			fmt.Fprintf(&pdf, "%d 0 obj << /Type /Page >> endobj\n", i+2)
		}
		pdf.WriteString("%%EOF\n")
		_ = os.WriteFile(filepath.Join(dir, "document.pdf"), []byte(pdf.String()), 0o644)
		_ = os.WriteFile(filepath.Join(dir, "document.log"), []byte("Output written on document.pdf\n"), 0o644)
		os.Exit(0)
	case "objstm":
		// Page dictionaries packed into a flate-compressed object stream,
		// the way pdftex emits them at \pdfobjcompresslevel=2. The byte
		// scan cannot see them; only the log line carries the count.
		var objects strings.Builder
		for i := 0; i < pages; i++ {
			fmt.Fprintf(&objects, "%d 0 obj << /Type /Page >> endobj\n", i+2)
		}
		var deflated bytes.Buffer
		zw := zlib.NewWriter(&deflated)
		_, _ = zw.Write([]byte(objects.String()))
		_ = zw.Close()

		var pdf bytes.Buffer
		pdf.WriteString("%PDF-1.5\n")
		fmt.Fprintf(&pdf, "1 0 obj << /Type /ObjStm /N %d /First 0 /Filter /FlateDecode /Length %d >>\nstream\n",
			pages, deflated.Len())
		pdf.Write(deflated.Bytes())
		pdf.WriteString("\nendstream\nendobj\n%%EOF\n")
		_ = os.WriteFile(filepath.Join(dir, "document.pdf"), pdf.Bytes(), 0o644)

		log := fmt.Sprintf("Output written on document.pdf (%d pages, %d bytes).\n", pages, pdf.Len())
		_ = os.WriteFile(filepath.Join(dir, "document.log"), []byte(log), 0o644)
		os.Exit(0)
	case "fail":
		log := "This is pdfTeX\n! Undefined control sequence.\nl.12 \\bogus\n"
		_ = os.WriteFile(filepath.Join(dir, "document.log"), []byte(log), 0o644)
		os.Exit(1)
	case "crash":
		os.Exit(2)
	case "sleep":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(0)
}

func newTestEngine(t *testing.T, scratch string) *Engine {
	t.Helper()
	return New(Config{
		Command:      "pdflatex",
		ScratchRoot:  scratch,
		Timeout:      5 * time.Second,
		Passes:       2,
		ExcerptLimit: 2000,
	})
}

func assertScratchEmpty(t *testing.T, scratch string) {
	t.Helper()
	entries, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatalf("read scratch root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected clean scratch root, found %d entries", len(entries))
	}
}

func TestCompileSuccessSinglePage(t *testing.T) {
	scratch := t.TempDir()
	var calls int
	stubCompiler(t, "success", 1, &calls)

	engine := newTestEngine(t, scratch)
	diag, pdf := engine.Compile(context.Background(), "\\documentclass{article}...")

	if !diag.Compiled {
		t.Fatalf("expected success, got excerpt %q", diag.ErrorExcerpt)
	}
	if diag.PageCount != 1 {
		t.Fatalf("expected 1 page, got %d", diag.PageCount)
	}
	if diag.ArtifactSize == 0 || len(pdf) == 0 {
		t.Fatal("expected artifact bytes")
	}
	if calls != 2 {
		t.Fatalf("expected 2 compiler passes, got %d", calls)
	}
	assertScratchEmpty(t, scratch)
}

func TestCompileReportsMultiPageCount(t *testing.T) {
	scratch := t.TempDir()
	stubCompiler(t, "success", 3, nil)

	diag, _ := newTestEngine(t, scratch).Compile(context.Background(), "doc")
	if !diag.Compiled || diag.PageCount != 3 {
		t.Fatalf("expected 3-page success, got %+v", diag)
	}
	assertScratchEmpty(t, scratch)
}

func TestCompileCountsPagesInObjectStreamArtifact(t *testing.T) {
	scratch := t.TempDir()
	stubCompiler(t, "objstm", 3, nil)

	diag, pdf := newTestEngine(t, scratch).Compile(context.Background(), "doc")
	if !diag.Compiled {
		t.Fatalf("expected success, got excerpt %q", diag.ErrorExcerpt)
	}
	if diag.PageCount != 3 {
		t.Fatalf("expected 3 pages, got %d", diag.PageCount)
	}
	if len(pdf) == 0 {
		t.Fatal("expected artifact bytes")
	}
	assertScratchEmpty(t, scratch)
}

func TestCompileFailureExtractsLogError(t *testing.T) {
	scratch := t.TempDir()
	var calls int
	stubCompiler(t, "fail", 0, &calls)

	diag, pdf := newTestEngine(t, scratch).Compile(context.Background(), "doc")
	if diag.Compiled {
		t.Fatal("expected failure")
	}
	if pdf != nil {
		t.Fatal("expected no artifact on failure")
	}
	if !strings.HasPrefix(diag.ErrorExcerpt, "! Undefined control sequence.") {
		t.Fatalf("unexpected excerpt: %q", diag.ErrorExcerpt)
	}
	if calls != 1 {
		t.Fatalf("expected halt after first failing pass, got %d calls", calls)
	}
	assertScratchEmpty(t, scratch)
}

func TestCompileCrashWithoutLogStillHasExcerpt(t *testing.T) {
	scratch := t.TempDir()
	stubCompiler(t, "crash", 0, nil)

	diag, _ := newTestEngine(t, scratch).Compile(context.Background(), "doc")
	if diag.Compiled {
		t.Fatal("expected failure")
	}
	if strings.TrimSpace(diag.ErrorExcerpt) == "" {
		t.Fatal("crash diagnostic must carry a non-empty excerpt")
	}
	assertScratchEmpty(t, scratch)
}

func TestCompileTimeoutKillsAndCleansUp(t *testing.T) {
	scratch := t.TempDir()
	stubCompiler(t, "sleep", 0, nil)

	engine := New(Config{
		Command:     "pdflatex",
		ScratchRoot: scratch,
		Timeout:     200 * time.Millisecond,
		Passes:      2,
	})
	start := time.Now()
	diag, _ := engine.Compile(context.Background(), "doc")
	if time.Since(start) > 10*time.Second {
		t.Fatal("timeout was not enforced")
	}
	if diag.Compiled {
		t.Fatal("expected timeout failure")
	}
	if diag.ErrorExcerpt != "timeout" {
		t.Fatalf("expected timeout excerpt, got %q", diag.ErrorExcerpt)
	}
	assertScratchEmpty(t, scratch)
}

func TestCompileCancellationCleansUp(t *testing.T) {
	scratch := t.TempDir()
	stubCompiler(t, "sleep", 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	diag, _ := newTestEngine(t, scratch).Compile(ctx, "doc")
	if diag.Compiled {
		t.Fatal("expected cancellation failure")
	}
	assertScratchEmpty(t, scratch)
}

func TestCompileExcerptRespectsConfiguredLimit(t *testing.T) {
	scratch := t.TempDir()
	stubCompiler(t, "fail", 0, nil)

	engine := New(Config{
		Command:      "pdflatex",
		ScratchRoot:  scratch,
		Timeout:      5 * time.Second,
		Passes:       1,
		ExcerptLimit: 20,
	})
	diag, _ := engine.Compile(context.Background(), "doc")
	if len(diag.ErrorExcerpt) > 20+len(" [...]") {
		t.Fatalf("excerpt exceeds limit: %q", diag.ErrorExcerpt)
	}
}

func TestCheckAvailableReportsMissingBinary(t *testing.T) {
	engine := New(Config{Command: "definitely-not-a-real-binary-name", ScratchRoot: t.TempDir()})
	if _, err := engine.CheckAvailable(context.Background()); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
