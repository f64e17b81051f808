package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"tailor/internal/config"
	"tailor/internal/history"
	"tailor/internal/latex"
	"tailor/internal/logging"
	"tailor/internal/pipeline"
	"tailor/internal/preflight"
)

// Optimizer is the slice of the pipeline runner the daemon needs.
type Optimizer interface {
	Optimize(ctx context.Context, req pipeline.Request) pipeline.Result
	Compile(ctx context.Context, document string) (latex.Diagnostic, []byte)
}

// Daemon owns the process lifecycle and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	runner Optimizer
	store  *history.Store

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	BindAddress  string
	HistoryDB    string
	LockFilePath string
	Checks       []preflight.Result
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, runner Optimizer, store *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil || store == nil {
		return nil, errors.New("daemon requires config, runner, and history store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "tailord.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger.With(logging.FieldComponent, "daemon"),
		runner:   runner,
		store:    store,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, runs preflight checks, and begins serving
// the HTTP API. It fails fast when a required check does not pass.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tailor daemon instance is already running")
	}

	checks := preflight.RunAll(ctx, d.cfg)
	for _, check := range checks {
		if check.Passed {
			d.logger.Info("preflight check passed",
				"check", check.Name, "detail", check.Detail)
			continue
		}
		d.logger.Error("preflight check failed",
			"check", check.Name, "detail", check.Detail)
	}
	if !preflight.Passed(checks) {
		_ = d.lock.Unlock()
		return fmt.Errorf("preflight failed: %s", summarizeFailures(checks))
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("tailor daemon started", "lock", d.lockPath, "bind", d.cfg.Paths.APIBind)
	return nil
}

// Stop stops the HTTP server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", "error", err.Error())
	}
	d.running.Store(false)
	d.logger.Info("tailor daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr reports the address the API listener is bound to, or "" when the
// daemon is not serving.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status returns the current daemon status including fresh preflight results.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		BindAddress:  d.Addr(),
		HistoryDB:    d.store.Path(),
		LockFilePath: d.lockPath,
		Checks:       preflight.RunAll(ctx, d.cfg),
	}
}

func summarizeFailures(checks []preflight.Result) string {
	var failures []string
	for _, check := range checks {
		if !check.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", check.Name, check.Detail))
		}
	}
	return strings.Join(failures, "; ")
}
