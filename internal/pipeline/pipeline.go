package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tailor/internal/latex"
	"tailor/internal/logging"
	"tailor/internal/prompts"
	"tailor/internal/services"
	"tailor/internal/services/claude"
)

// Runner executes optimization runs. Safe for concurrent use; each run owns
// its own session.
type Runner struct {
	transformer Transformer
	compiler    Compiler
	maxFix      int
	maxShrink   int
	targetPages int
	logger      *slog.Logger
}

// Option adjusts optional Runner behavior.
type Option func(*Runner)

// WithLogger attaches a logger for run progress events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger.With(logging.FieldComponent, "pipeline")
		}
	}
}

// NewRunner wires the generative transformer and the compiler adapter with
// the retry bounds. Non-positive bounds fall back to safe minimums so a
// malformed config cannot produce an unbounded loop.
func NewRunner(transformer Transformer, compiler Compiler, maxFix, maxShrink, targetPages int, opts ...Option) *Runner {
	if maxFix < 0 {
		maxFix = 0
	}
	if maxShrink < 0 {
		maxShrink = 0
	}
	if targetPages < 1 {
		targetPages = 1
	}
	r := &Runner{
		transformer: transformer,
		compiler:    compiler,
		maxFix:      maxFix,
		maxShrink:   maxShrink,
		targetPages: targetPages,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Optimize runs the full pipeline for one request and always returns a
// terminal Result. It never panics on bad input and never returns an error;
// failure modes are expressed in Result.Summary.
func (r *Runner) Optimize(ctx context.Context, req Request) Result {
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}

	if strings.TrimSpace(req.Document) == "" {
		return Result{Document: req.Document, Summary: "source document is empty"}
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return Result{Document: req.Document, Summary: "job description is empty"}
	}

	sess := &session{}
	r.logger.InfoContext(ctx, "optimization run started",
		logging.FieldEventType, "run_started",
		"document_bytes", len(req.Document))

	current, err := r.transform(ctx, sess, PhaseOptimize,
		prompts.Optimization(req.Document, req.JobDescription))
	if err != nil {
		return r.serviceFailure(ctx, req.Document, sess, err)
	}
	sess.current = current

	// Loop one: repair until the candidate compiles or the fix budget runs out.
	diag, artifact, err := r.fixUntilCompiled(ctx, sess, PhaseOptimize)
	if err != nil {
		return r.serviceFailure(ctx, sess.current, sess, err)
	}
	if !diag.Compiled {
		return r.compileFailure(ctx, sess, diag)
	}

	// Loop two: condense until the artifact fits or the shrink budget runs out.
	// A shrunk candidate re-enters the full fix loop, since condensation can
	// itself break the document.
	for diag.PageCount > r.targetPages {
		if sess.shrinkAttempts >= r.maxShrink {
			return r.overflowFailure(ctx, sess, diag, artifact)
		}
		sess.shrinkAttempts++
		attempt := sess.shrinkAttempts
		r.logger.InfoContext(services.WithAttempt(ctx, attempt), "requesting shrink",
			logging.FieldEventType, "shrink_requested",
			"page_count", diag.PageCount,
			"target_pages", r.targetPages)

		current, err = r.transform(ctx, sess, PhaseShrink,
			prompts.Shrink(diag.PageCount, r.targetPages))
		if err != nil {
			return r.serviceFailure(ctx, sess.current, sess, err)
		}
		sess.current = current

		diag, artifact, err = r.fixUntilCompiled(ctx, sess, PhaseShrink)
		if err != nil {
			return r.serviceFailure(ctx, sess.current, sess, err)
		}
		if !diag.Compiled {
			return r.compileFailure(ctx, sess, diag)
		}
	}

	r.logger.InfoContext(ctx, "optimization run succeeded",
		logging.FieldEventType, "run_succeeded",
		"page_count", diag.PageCount,
		"fix_attempts", sess.fixAttempts,
		"shrink_attempts", sess.shrinkAttempts)
	return Result{
		Document:  sess.current,
		Success:   true,
		Compiled:  true,
		PageCount: diag.PageCount,
		Summary:   fmt.Sprintf("optimized successfully: compiles to %d page(s)", diag.PageCount),
		Artifact:  artifact,
		Attempts:  sess.attempts,
	}
}

// Compile verifies a document outside the optimization loop: structural
// validation first, then a real compile when the structure holds.
func (r *Runner) Compile(ctx context.Context, document string) (latex.Diagnostic, []byte) {
	if verdict := latex.Validate(document); !verdict.OK {
		return latex.FromValidation(verdict.Reason), nil
	}
	return r.compiler.Compile(ctx, document)
}

// fixUntilCompiled is the shared verification sub-loop: validate, compile,
// and on failure feed the diagnostic back as a fix instruction, up to the
// fix budget. The phase tags which pipeline step produced the first
// candidate; repaired candidates are recorded under PhaseFix.
func (r *Runner) fixUntilCompiled(ctx context.Context, sess *session, phase Phase) (latex.Diagnostic, []byte, error) {
	diag, artifact := r.verify(ctx, sess, phase)
	for !diag.Compiled {
		if sess.fixAttempts >= r.maxFix {
			return diag, artifact, nil
		}
		sess.fixAttempts++
		r.logger.InfoContext(services.WithAttempt(ctx, sess.fixAttempts), "requesting fix",
			logging.FieldEventType, "fix_requested",
			"error_excerpt", diag.ErrorExcerpt)

		current, err := r.transform(ctx, sess, PhaseFix, prompts.Fix(diag.ErrorExcerpt))
		if err != nil {
			return diag, nil, err
		}
		sess.current = current
		diag, artifact = r.verify(ctx, sess, PhaseFix)
	}
	return diag, artifact, nil
}

// verify runs the cheap structural validation and, only when it passes, the
// real compile. Either way it records one attempt on the session.
func (r *Runner) verify(ctx context.Context, sess *session, phase Phase) (latex.Diagnostic, []byte) {
	ctx = services.WithPhase(ctx, string(phase))

	var (
		diag     latex.Diagnostic
		artifact []byte
	)
	if verdict := latex.Validate(sess.current); !verdict.OK {
		diag = latex.FromValidation(verdict.Reason)
		r.logger.WarnContext(ctx, "structural validation failed",
			logging.FieldEventType, "validation_failed",
			"reason", verdict.Reason)
	} else {
		diag, artifact = r.compiler.Compile(ctx, sess.current)
	}
	sess.record(phase, diag)
	return diag, artifact
}

// transform issues one instruction to the generative service. The history
// grows by exactly two messages per successful call: the outbound
// instruction and the inbound candidate. A failed call leaves the history
// untouched; the run terminates anyway.
func (r *Runner) transform(ctx context.Context, sess *session, phase Phase, instruction string) (string, error) {
	ctx = services.WithPhase(ctx, string(phase))
	history := make([]claude.Message, 0, len(sess.history)+1)
	history = append(history, sess.history...)
	history = append(history, claude.Message{Role: claude.RoleUser, Content: instruction})

	candidate, err := r.transformer.Transform(ctx, prompts.System(), history)
	if err != nil {
		return "", err
	}
	sess.history = append(history, claude.Message{Role: claude.RoleAssistant, Content: candidate})
	return candidate, nil
}

func (r *Runner) serviceFailure(ctx context.Context, document string, sess *session, err error) Result {
	r.logger.ErrorContext(ctx, "generative service failed",
		logging.FieldEventType, "run_degraded",
		"retryable", services.IsRetryable(err),
		"error", err.Error())
	return Result{
		Document: document,
		Summary:  fmt.Sprintf("generative service failed: %v", err),
		Attempts: sess.attempts,
	}
}

func (r *Runner) compileFailure(ctx context.Context, sess *session, diag latex.Diagnostic) Result {
	r.logger.WarnContext(ctx, "fix attempts exhausted",
		logging.FieldEventType, "run_degraded",
		"fix_attempts", sess.fixAttempts,
		"error_excerpt", diag.ErrorExcerpt)
	return Result{
		Document: sess.current,
		Summary: fmt.Sprintf("document does not compile after %d fix attempt(s): %s",
			sess.fixAttempts, diag.ErrorExcerpt),
		Attempts: sess.attempts,
	}
}

func (r *Runner) overflowFailure(ctx context.Context, sess *session, diag latex.Diagnostic, artifact []byte) Result {
	r.logger.WarnContext(ctx, "shrink attempts exhausted",
		logging.FieldEventType, "run_degraded",
		"shrink_attempts", sess.shrinkAttempts,
		"page_count", diag.PageCount)
	return Result{
		Document:  sess.current,
		Compiled:  true,
		PageCount: diag.PageCount,
		Summary: fmt.Sprintf("document compiles but spans %d page(s) after %d shrink attempt(s); target is %d",
			diag.PageCount, sess.shrinkAttempts, r.targetPages),
		Artifact: artifact,
		Attempts: sess.attempts,
	}
}
