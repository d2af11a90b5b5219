// Package server exposes the resolution engine over a narrow HTTP API.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/commjoen/whoisintel/internal/cache"
	"github.com/commjoen/whoisintel/internal/lookup"
	"github.com/commjoen/whoisintel/pkg/models"
)

// Resolver answers lookup requests. Both the local orchestrator and the
// dispatch forwarder satisfy it.
type Resolver interface {
	Lookup(ctx context.Context, query string, opts lookup.Options) *models.LookupResult
}

// Server is the HTTP front of the engine.
type Server struct {
	resolver Resolver
	store    cache.Store
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	router   chi.Router
}

// New creates the HTTP server. The gatherer may be nil to omit /metrics.
func New(resolver Resolver, store cache.Store, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		resolver: resolver,
		store:    store,
		logger:   logger,
		gatherer: gatherer,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/lookup", s.handleLookup)
		r.Get("/cache/stats", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheClear)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing query parameter q"})
		return
	}
	opts := lookup.Options{
		Force:    r.URL.Query().Get("force") == "true",
		DNSCheck: r.URL.Query().Get("dnscheck") == "true",
	}

	result := s.resolver.Lookup(r.Context(), query, opts)
	status := http.StatusOK
	if !result.Success && !result.NotFound && len(result.Errors) > 0 && len(result.Providers) == 0 {
		// Rejected before any provider ran: invalid input.
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("cache stats failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache stats unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		s.logger.Error("cache clear failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache clear failed"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
