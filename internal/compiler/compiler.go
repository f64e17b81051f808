package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"tailor/internal/latex"
	"tailor/internal/logging"
)

var commandContext = exec.CommandContext

const (
	sourceFileName = "document.tex"
	// waitDelay bounds how long we wait for output pipes after killing the
	// compiler's process group.
	waitDelay = 5 * time.Second
)

// Config captures the runtime settings for the compiler engine.
type Config struct {
	Command      string
	ScratchRoot  string
	Timeout      time.Duration
	Passes       int
	ExcerptLimit int
}

// Engine runs the external compiler. Safe for concurrent use; each compile
// owns its own scratch directory.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// Option customizes the engine.
type Option func(*Engine)

// WithLogger overrides the default no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New constructs an engine from the supplied configuration.
func New(cfg Config, opts ...Option) *Engine {
	if cfg.Command == "" {
		cfg.Command = "pdflatex"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Passes <= 0 {
		cfg.Passes = 2
	}
	if cfg.ExcerptLimit <= 0 {
		cfg.ExcerptLimit = 2000
	}
	engine := &Engine{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Compile runs the compiler against the document and returns the structured
// diagnostic plus the produced PDF bytes on success. Every failure mode,
// including workspace setup errors, timeouts, and crashes, resolves to a
// diagnostic with Compiled=false and a non-empty excerpt.
func (e *Engine) Compile(ctx context.Context, document string) (latex.Diagnostic, []byte) {
	log := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldComponent, "compiler"))

	workspace := filepath.Join(e.cfg.ScratchRoot, "compile-"+uuid.NewString())
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return failed(fmt.Sprintf("create scratch workspace: %v", err)), nil
	}
	defer func() {
		if err := os.RemoveAll(workspace); err != nil {
			log.Warn("scratch cleanup failed", logging.String("workspace", workspace), logging.Error(err))
		}
	}()

	sourcePath := filepath.Join(workspace, sourceFileName)
	if err := os.WriteFile(sourcePath, []byte(document), 0o644); err != nil {
		return failed(fmt.Sprintf("write source: %v", err)), nil
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	var runErr error
	for pass := 1; pass <= e.cfg.Passes; pass++ {
		runErr = e.runPass(runCtx, workspace, sourcePath)
		if runCtx.Err() != nil {
			break
		}
		if runErr != nil {
			// halt-on-error: a later pass cannot recover this source.
			break
		}
	}
	elapsed := time.Since(start)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		log.Warn("compile timed out", logging.Duration("elapsed", elapsed))
		return failed("timeout"), nil
	}
	if errors.Is(runCtx.Err(), context.Canceled) {
		return failed("canceled"), nil
	}

	logText := readWorkspaceFile(workspace, "document.log")

	pdf, err := os.ReadFile(filepath.Join(workspace, "document.pdf"))
	if err == nil && runErr == nil {
		pages := latex.CountPDFPages(pdf)
		if pages < 1 {
			// Compressed object streams hide page dictionaries from the
			// byte scan; the completion line still carries the count.
			pages = latex.CountLogPages(logText)
		}
		if pages < 1 {
			log.Warn("artifact reports no pages", logging.Int("bytes", len(pdf)))
			return failed("produced artifact contains no pages"), nil
		}
		log.Info("compile succeeded",
			logging.Int("pages", pages),
			logging.Int("bytes", len(pdf)),
			logging.Duration("elapsed", elapsed))
		return latex.Diagnostic{Compiled: true, PageCount: pages, ArtifactSize: int64(len(pdf))}, pdf
	}

	excerpt := latex.ExtractLogError(logText, e.cfg.ExcerptLimit)
	if excerpt == "" {
		excerpt = describeRunError(runErr, e.cfg.Command, e.cfg.ExcerptLimit)
	}
	log.Warn("compile failed",
		logging.String("excerpt", latex.Truncate(excerpt, 200)),
		logging.Duration("elapsed", elapsed))
	return failed(excerpt), nil
}

// CheckAvailable probes the compiler binary and returns its version banner.
func (e *Engine) CheckAvailable(ctx context.Context) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := commandContext(probeCtx, e.cfg.Command, "--version")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s not available: %w", e.cfg.Command, err)
	}
	banner := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(banner, '\n'); idx >= 0 {
		banner = banner[:idx]
	}
	return banner, nil
}

func (e *Engine) runPass(ctx context.Context, workspace, sourcePath string) error {
	cmd := commandContext(ctx, e.cfg.Command,
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory", workspace,
		sourcePath,
	)
	cmd.Dir = workspace
	// Run the compiler in its own process group so a timeout kills any
	// children it spawned, not just the leader.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", e.cfg.Command, err)
	}
	return nil
}

func failed(excerpt string) latex.Diagnostic {
	excerpt = strings.TrimSpace(excerpt)
	if excerpt == "" {
		excerpt = "compilation failed with no diagnostic output"
	}
	return latex.Diagnostic{ErrorExcerpt: excerpt}
}

func readWorkspaceFile(workspace, name string) string {
	data, err := os.ReadFile(filepath.Join(workspace, name))
	if err != nil {
		return ""
	}
	return string(data)
}

func describeRunError(runErr error, command string, limit int) string {
	if runErr == nil {
		return "compilation produced no artifact and no log"
	}
	var execErr *exec.Error
	if errors.As(runErr, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return fmt.Sprintf("%s not found: ensure a LaTeX distribution is installed and in PATH", command)
	}
	return latex.Truncate(runErr.Error(), limit)
}
