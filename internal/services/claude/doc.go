// Package claude wraps the Anthropic Messages API used as the generative
// transform service.
//
// The client sends the caller-owned conversation history on every call and
// returns a cleaned candidate document (markdown fences stripped). Transient
// failures, rate limits, empty responses, and responses that are not
// recognizable as a LaTeX document are retried with exponential backoff up to
// a configured bound; exhausting the bound surfaces an error the pipeline
// treats as fatal for the run.
package claude
