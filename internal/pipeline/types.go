package pipeline

import (
	"context"

	"tailor/internal/latex"
	"tailor/internal/services/claude"
)

// Phase names the pipeline step that produced a candidate document.
type Phase string

const (
	PhaseOptimize Phase = "optimize"
	PhaseFix      Phase = "fix"
	PhaseShrink   Phase = "shrink"
)

// Request is one optimization job. Immutable once accepted.
type Request struct {
	Document       string
	JobDescription string
}

// Attempt is one verification outcome, kept for observability and tests.
// Control decisions use only the counters in the session.
type Attempt struct {
	Phase      Phase
	Index      int
	Diagnostic latex.Diagnostic
}

// Result is the single, terminal output of a run.
//
// Success means the document compiles to the target page count. A degraded
// run with Compiled=true still carries a valid artifact that merely exceeds
// the target length; a degraded run with Compiled=false carries the last
// candidate text and no artifact.
type Result struct {
	Document  string
	Success   bool
	Compiled  bool
	PageCount int
	Summary   string
	Artifact  []byte
	Attempts  []Attempt
}

// Transformer is the narrow interface over the generative service.
type Transformer interface {
	Transform(ctx context.Context, system string, history []claude.Message) (string, error)
}

// Compiler is the narrow interface over the external compiler adapter.
type Compiler interface {
	Compile(ctx context.Context, document string) (latex.Diagnostic, []byte)
}

// session holds the conversation history, attempt counters, and the evolving
// candidate for one run. Exclusively owned by that run; discarded at its end.
type session struct {
	history        []claude.Message
	current        string
	fixAttempts    int
	shrinkAttempts int
	attempts       []Attempt
}

func (s *session) record(phase Phase, diag latex.Diagnostic) {
	s.attempts = append(s.attempts, Attempt{
		Phase:      phase,
		Index:      len(s.attempts) + 1,
		Diagnostic: diag,
	})
}
