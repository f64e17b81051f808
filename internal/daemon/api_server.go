package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tailor/internal/api"
	"tailor/internal/config"
	"tailor/internal/history"
	"tailor/internal/logging"
	"tailor/internal/pipeline"
	"tailor/internal/preflight"
	"tailor/internal/services"
)

const defaultHistoryLimit = 50

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logger,
		daemon: d,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/optimize", authMiddleware(token, srv.handleOptimize))
	mux.HandleFunc("/api/compile", authMiddleware(token, srv.handleCompile))
	mux.HandleFunc("/api/history", authMiddleware(token, srv.handleHistory))
	if staticDir := strings.TrimSpace(cfg.Paths.StaticDir); staticDir != "" {
		mux.Handle("/", newStaticHandler(staticDir))
	}

	srv.server = &http.Server{
		Handler:           srv.withRequestLog(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Optimize runs block on the generative service and multiple
		// compiles; give them room.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	compiler := preflight.CheckCompiler(s.daemon.cfg.LaTeX.Command)
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:            "healthy",
		PdflatexAvailable: compiler.Passed,
		Message:           "tailor API is running",
	})
}

func (s *apiServer) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Latex) == "" {
		s.writeError(w, http.StatusBadRequest, "LaTeX content is required")
		return
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		s.writeError(w, http.StatusBadRequest, "Job description is required")
		return
	}

	requestID := uuid.NewString()
	ctx := services.WithRequestID(r.Context(), requestID)
	started := time.Now()
	result := s.daemon.runner.Optimize(ctx, pipeline.Request{
		Document:       req.Latex,
		JobDescription: req.JobDescription,
	})
	duration := time.Since(started)

	fixes, shrinks := api.CountAttempts(result.Attempts)
	if _, err := s.daemon.store.Record(ctx, history.Run{
		RequestID:      requestID,
		Success:        result.Success,
		Compiled:       result.Compiled,
		PageCount:      result.PageCount,
		FixAttempts:    fixes,
		ShrinkAttempts: shrinks,
		Duration:       duration,
		DocumentBytes:  len(result.Document),
		Summary:        result.Summary,
	}); err != nil {
		s.log().Warn("record run failed", slog.String("error", err.Error()))
	}

	s.writeJSON(w, http.StatusOK, api.FromResult(result))
}

func (s *apiServer) handleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.CompileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Latex) == "" {
		s.writeError(w, http.StatusBadRequest, "LaTeX content is required")
		return
	}

	diag, artifact := s.daemon.runner.Compile(r.Context(), req.Latex)
	if !diag.Compiled {
		s.writeError(w, http.StatusBadRequest, diag.ErrorExcerpt)
		return
	}
	if diag.PageCount > 1 {
		s.log().Warn("compiled PDF exceeds one page", slog.Int("pages", diag.PageCount))
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=resume.pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact); err != nil {
		s.log().Error("write pdf response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := s.daemon.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.HistoryResponse{Runs: api.FromRuns(runs)})
}

func (s *apiServer) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.log().Info("request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("elapsed", time.Since(started)))
	})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, api.ErrorResponse{Detail: detail})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.FieldComponent, "api-server")
	}
	return logging.NewNop()
}
