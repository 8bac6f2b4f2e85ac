// Package http exposes an Inquest engine over a small JSON API: submit
// evaluation tasks, inspect stored runs, health and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/inquest"
	"github.com/aretw0/inquest/internal/logging"
	"github.com/aretw0/inquest/pkg/domain"
)

// Server handles the HTTP API around one engine.
type Server struct {
	engine  *inquest.Engine
	runner  *inquest.Runner
	logger  *slog.Logger
	metrics http.Handler
}

// Option defines a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRunner replaces the default runner (e.g. to set concurrency).
func WithRunner(r *inquest.Runner) Option {
	return func(s *Server) {
		s.runner = r
	}
}

// WithMetricsHandler replaces the default /metrics handler, e.g. to serve
// a private prometheus registry.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine *inquest.Engine, opts ...Option) http.Handler {
	server := &Server{
		engine:  engine,
		logger:  logging.NewNop(),
		metrics: promhttp.Handler(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.runner == nil {
		server.runner = inquest.NewRunner(engine)
	}

	r := chi.NewRouter()
	r.Get("/healthz", server.getHealth)
	r.Get("/info", server.getInfo)
	r.Handle("/metrics", server.metrics)
	r.Route("/runs", func(r chi.Router) {
		r.Post("/", server.submitTask)
		r.Get("/", server.listRuns)
		r.Get("/{id}", server.getRun)
		r.Delete("/{id}", server.deleteRun)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// submitTask handles POST /runs. The task body is validated and executed;
// by default execution is asynchronous and the response is 202. Pass
// ?wait=true to block until the report is ready.
func (s *Server) submitTask(w http.ResponseWriter, r *http.Request) {
	var task inquest.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("submit: invalid request body", "err", err)
		return
	}
	if err := task.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Resolve the plan before accepting so unknown solvers fail the
	// request, not the background run.
	plan, err := s.engine.Registry().BuildPlan(task.Plan)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		report, err := s.runner.RunPlan(r.Context(), &task, plan)
		if err != nil {
			http.Error(w, fmt.Sprintf("Run error: %v", err), http.StatusInternalServerError)
			s.logger.Error("run failed", "task", task.Name, "err", err)
			return
		}
		writeJSON(w, http.StatusOK, report, s.logger)
		return
	}

	epochs := task.Epochs
	if epochs < 1 {
		epochs = 1
	}
	go func() {
		// Detached from the request; the run outlives the response.
		if _, err := s.runner.RunPlan(context.WithoutCancel(r.Context()), &task, plan); err != nil {
			s.logger.Error("background run failed", "task", task.Name, "err", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"task":    task.Name,
		"status":  "accepted",
		"samples": len(task.Samples),
		"epochs":  epochs,
	}, s.logger)
}

// listRuns handles GET /runs.
func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Store().List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("list runs failed", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": ids}, s.logger)
}

// getRun handles GET /runs/{id}.
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := s.engine.Store().Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.logger.Error("load run failed", "run_id", id, "err", err)
		return
	}
	writeJSON(w, http.StatusOK, record, s.logger)
}

// deleteRun handles DELETE /runs/{id}.
func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.Store().Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.logger.Error("delete run failed", "run_id", id, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getHealth handles GET /healthz.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// getInfo handles GET /info.
func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "inquest-http",
		"version": strings.TrimSpace(inquest.Version),
		"model":   s.engine.Client().Name(),
	}, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
