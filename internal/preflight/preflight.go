package preflight

import (
	"context"

	"tailor/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// The generative API reachability check is excluded; it costs a network
// round trip and only the CLI status path wants it. Use CheckLLM for that.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckCompiler(cfg.LaTeX.Command),
		CheckAPIKey(cfg.LLM.APIKey),
	}

	if cfg.Paths.StaticDir != "" {
		results = append(results, CheckDirectoryAccess("Static assets", cfg.Paths.StaticDir))
	}

	return results
}

// Passed reports whether every result in the set passed.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
