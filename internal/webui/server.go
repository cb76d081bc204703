// Package webui exposes algorithm run results over a small HTTP API.
package webui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ucrparlay/pasgal-go/internal/store"
	"github.com/ucrparlay/pasgal-go/pkg/utils"
)

// Server exposes run results over HTTP.
type Server struct {
	port   int
	logger utils.Logger
	stores *store.Stores
	server *http.Server
}

// NewServer creates a new results API server.
func NewServer(stores *store.Stores, port int, logger utils.Logger) *Server {
	return &Server{port: port, logger: logger, stores: stores}
}

// Start starts the web server.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.handleListRuns)
	mux.HandleFunc("/api/runs/", s.handleGetRun)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.logger.Info("Starting results API server at http://localhost:%d", s.port)
	s.logger.Info("Press Ctrl+C to stop")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleListRuns lists recent runs, optionally filtered by ?algorithm=.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	algorithm := store.Algorithm(r.URL.Query().Get("algorithm"))
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.stores.Run.ListRuns(r.Context(), algorithm, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summaries := make([]*store.RunSummary, len(runs))
	for i, run := range runs {
		summaries[i] = run.ToSummary()
	}

	writeJSON(w, summaries)
}

// handleGetRun returns a single run's status and result by UUID, served
// from the path "/api/runs/{uuid}".
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	uuid := r.URL.Path[len("/api/runs/"):]
	if uuid == "" {
		http.Error(w, "run uuid is required", http.StatusBadRequest)
		return
	}

	run, err := s.stores.Run.GetRunByUUID(r.Context(), uuid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, run.ToSummary())
}

// handleHealth reports database connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.stores.HealthCheck(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(v)
}
