// Package ops serves the read-only operational surface: health, Prometheus
// metrics and the latest snapshot with its completeness report.
package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/quantpulse/marketsnap/internal/metrics"
	"github.com/quantpulse/marketsnap/internal/model"
	"github.com/quantpulse/marketsnap/internal/validate"
)

// Store holds the most recent snapshot and its report.
type Store struct {
	mu     sync.RWMutex
	snap   *model.Snapshot
	report *validate.Report
}

// Put replaces the stored snapshot.
func (s *Store) Put(snap *model.Snapshot, report validate.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.report = &report
}

// Latest returns the stored snapshot, or nil before the first cycle.
func (s *Store) Latest() (*model.Snapshot, *validate.Report) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.report
}

// Server is the ops HTTP server.
type Server struct {
	httpServer *http.Server
	store      *Store
}

// NewServer wires the routes.
func NewServer(addr string, store *Store, met *metrics.Set) *Server {
	r := mux.NewRouter()
	s := &Server{store: store}

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(met.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("ops server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap, report := s.store.Latest()
	status := map[string]any{"status": "ok"}
	if snap != nil {
		status["last_snapshot"] = snap.ID
		status["last_finished_at"] = snap.FinishedAt
		status["completeness"] = report.Overall
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, report := s.store.Latest()
	if snap == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshot collected yet"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot": snap,
		"report":   report,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
