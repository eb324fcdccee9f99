// Package api exposes the collector's live state over HTTP: a health check
// and the per-probe ingestion counters.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"NetFlowSond/internal/model"
)

// StatsSource provides the per-probe counters served by the API.
type StatsSource interface {
	Stats() []model.ProbeStats
}

// Server serves the status endpoints.
type Server struct {
	http    *http.Server
	source  StatsSource
	started time.Time
}

// NewServer builds the router and binds it to the given listen address.
func NewServer(addr string, source StatsSource) *Server {
	s := &Server{
		source:  source,
		started: time.Now(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.healthHandler).Methods("GET")
	r.HandleFunc("/api/v1/probes", s.probesHandler).Methods("GET")

	s.http = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Start runs the HTTP server in the background.
func (s *Server) Start() {
	go func() {
		log.Printf("Status API listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Status API server error: %v", err)
		}
	}()
}

// Stop shuts the server down, giving in-flight requests a short grace period.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		log.Printf("Status API shutdown: %v", err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

func (s *Server) probesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.source.Stats())
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
