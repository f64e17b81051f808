package api

// OptimizeRequest carries one optimization job.
type OptimizeRequest struct {
	Latex          string `json:"latex"`
	JobDescription string `json:"job_description"`
}

// OptimizeResponse reports the terminal outcome of a run. Success means the
// returned LaTeX compiles to the target page count; a degraded outcome still
// returns the best candidate and a summary explaining what fell short.
type OptimizeResponse struct {
	OptimizedLatex      string `json:"optimized_latex"`
	OptimizationSummary string `json:"optimization_summary"`
	Success             bool   `json:"success"`
	Compiled            bool   `json:"compiled"`
	PageCount           int    `json:"page_count"`
	FixAttempts         int    `json:"fix_attempts"`
	ShrinkAttempts      int    `json:"shrink_attempts"`
}

// CompileRequest carries a document for standalone verification.
type CompileRequest struct {
	Latex string `json:"latex"`
}

// HealthResponse reports daemon readiness.
type HealthResponse struct {
	Status            string `json:"status"`
	PdflatexAvailable bool   `json:"pdflatex_available"`
	Message           string `json:"message"`
}

// RunView describes a recorded run in a transport-friendly format.
type RunView struct {
	ID             int64  `json:"id"`
	RequestID      string `json:"request_id"`
	CreatedAt      string `json:"created_at"`
	Success        bool   `json:"success"`
	Compiled       bool   `json:"compiled"`
	PageCount      int    `json:"page_count"`
	FixAttempts    int    `json:"fix_attempts"`
	ShrinkAttempts int    `json:"shrink_attempts"`
	DurationMS     int64  `json:"duration_ms"`
	DocumentBytes  int    `json:"document_bytes"`
	Summary        string `json:"summary"`
}

// HistoryResponse wraps a collection of recorded runs.
type HistoryResponse struct {
	Runs []RunView `json:"runs"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
