// Package server exposes nearest-data-center lookups over HTTP, together with
// health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ch00k/cloud-compass/internal/compass"
	"github.com/Ch00k/cloud-compass/internal/distance"
	"github.com/Ch00k/cloud-compass/internal/logging"
	"github.com/Ch00k/cloud-compass/internal/metrics"
	"github.com/Ch00k/cloud-compass/internal/position"
	"github.com/Ch00k/cloud-compass/internal/regions"
)

// Config holds what every lookup session served over HTTP is built from.
// Position is used when a request carries no coordinates.
type Config struct {
	Directory       compass.DirectorySource
	Position        position.Source
	MatchMode       regions.MatchMode
	RankMode        compass.RankMode
	Timeout         time.Duration
	LogLevel        logging.LogLevel
	Metrics         *metrics.Metrics
	MetricsGatherer prometheus.Gatherer
}

// Server serves /nearest, /providers, /healthz and /metrics
type Server struct {
	httpServer *http.Server
	config     Config
}

// NewServer creates an HTTP server listening on addr
func NewServer(addr string, cfg Config) *Server {
	if cfg.Position == nil {
		cfg.Position = position.Unsupported()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MetricsGatherer == nil {
		cfg.MetricsGatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: cfg.Timeout + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		config: cfg,
	}

	mux.HandleFunc("GET /nearest", s.handleNearest)
	mux.HandleFunc("GET /providers", s.handleProviders)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	if s.config.LogLevel <= logging.LogLevelInfo {
		log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// nearestResponse is the body of a /nearest reply
type nearestResponse struct {
	Session string `json:"session"`
	compass.View
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	provider, err := regions.ParseProvider(query.Get("provider"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	src, err := s.positionSource(query.Get("lat"), query.Get("lon"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	session := compass.NewSession(
		s.config.Directory,
		src,
		compass.WithMatchMode(s.config.MatchMode),
		compass.WithRankMode(s.config.RankMode),
		compass.WithPositionTimeout(s.config.Timeout),
		compass.WithLogLevel(s.config.LogLevel),
		compass.WithMetrics(s.config.Metrics),
	)
	defer session.Close()
	session.SetProvider(provider)

	ctx, cancel := context.WithTimeout(r.Context(), s.config.Timeout)
	defer cancel()

	session.Start(ctx)
	if err := session.Wait(ctx); err != nil && s.config.LogLevel <= logging.LogLevelWarning {
		log.Printf("Session %s: returning partial result: %v", session.ID, err)
	}

	view := session.View()
	if s.config.LogLevel <= logging.LogLevelInfo {
		log.Printf("Session %s: %s %q -> %s (%d regions)", session.ID, r.URL.Path, provider.Tag, view.Status, len(view.Regions))
	}

	status := http.StatusOK
	switch view.State {
	case compass.ViewError:
		status = http.StatusBadGateway
	case compass.ViewLoading:
		status = http.StatusGatewayTimeout
	}

	s.writeJSON(w, status, nearestResponse{Session: session.ID.String(), View: view})
}

// positionSource picks the observer for a request: explicit coordinates when both
// are given, the configured source when neither is
func (s *Server) positionSource(lat, lon string) (position.Source, error) {
	if lat == "" && lon == "" {
		return s.config.Position, nil
	}
	if lat == "" || lon == "" {
		return nil, fmt.Errorf("lat and lon must be used together")
	}

	latitude, err := parseCoordinate(lat, 90)
	if err != nil {
		return nil, fmt.Errorf("invalid lat value: %s", lat)
	}
	longitude, err := parseCoordinate(lon, 180)
	if err != nil {
		return nil, fmt.Errorf("invalid lon value: %s", lon)
	}

	return position.Static(distance.Point{Latitude: latitude, Longitude: longitude}), nil
}

// parseCoordinate parses a finite value within [-limit, limit]
func parseCoordinate(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < -limit || v > limit {
		return 0, fmt.Errorf("coordinate out of range: %s", s)
	}
	return v, nil
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]regions.ProviderFilter{"providers": regions.Providers})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeJSON encodes v before writing the status line, so an unencodable value
// becomes a 500 instead of an empty reply
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		if s.config.LogLevel <= logging.LogLevelError {
			log.Printf("Failed to encode JSON response: %v", err)
		}
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil && s.config.LogLevel <= logging.LogLevelError {
		log.Printf("Failed to write JSON response: %v", err)
	}
}
