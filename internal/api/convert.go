package api

import (
	"time"

	"tailor/internal/history"
	"tailor/internal/pipeline"
)

// FromResult converts a pipeline outcome into its transport form.
func FromResult(result pipeline.Result) OptimizeResponse {
	fixes, shrinks := countAttempts(result.Attempts)
	return OptimizeResponse{
		OptimizedLatex:      result.Document,
		OptimizationSummary: result.Summary,
		Success:             result.Success,
		Compiled:            result.Compiled,
		PageCount:           result.PageCount,
		FixAttempts:         fixes,
		ShrinkAttempts:      shrinks,
	}
}

// FromRun converts a recorded run into its transport form.
func FromRun(run history.Run) RunView {
	return RunView{
		ID:             run.ID,
		RequestID:      run.RequestID,
		CreatedAt:      run.CreatedAt.UTC().Format(time.RFC3339),
		Success:        run.Success,
		Compiled:       run.Compiled,
		PageCount:      run.PageCount,
		FixAttempts:    run.FixAttempts,
		ShrinkAttempts: run.ShrinkAttempts,
		DurationMS:     run.Duration.Milliseconds(),
		DocumentBytes:  run.DocumentBytes,
		Summary:        run.Summary,
	}
}

// FromRuns converts a slice of recorded runs, skipping nil entries.
func FromRuns(runs []*history.Run) []RunView {
	views := make([]RunView, 0, len(runs))
	for _, run := range runs {
		if run == nil {
			continue
		}
		views = append(views, FromRun(*run))
	}
	return views
}

// CountAttempts tallies how many fix and shrink transformations a run made.
// The initial optimization attempt counts as neither.
func CountAttempts(attempts []pipeline.Attempt) (fixes, shrinks int) {
	return countAttempts(attempts)
}

func countAttempts(attempts []pipeline.Attempt) (fixes, shrinks int) {
	for _, attempt := range attempts {
		switch attempt.Phase {
		case pipeline.PhaseFix:
			fixes++
		case pipeline.PhaseShrink:
			shrinks++
		}
	}
	return fixes, shrinks
}
