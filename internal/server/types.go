// Package server exposes the contour tracer over HTTP and WebSocket.
package server

import (
	"net/http"
	"time"

	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/MeKo-Tech/moore/internal/output"
	"github.com/MeKo-Tech/moore/internal/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rate limit bookkeeping for clients idle longer than clientIdleTimeout is
// dropped every clientPruneInterval.
const (
	clientPruneInterval = 10 * time.Minute
	clientIdleTimeout   = 24 * time.Hour
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	tracer         *contour.Tracer
	binarize       utils.BinarizeOptions
	corsOrigin     string
	maxUploadMB    int64
	timeoutSec     int
	overlayEnabled bool
	overlayColor   string
	startColor     string
	rateLimiter    *RateLimiter
	stopPruning    func()
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	Binarize       utils.BinarizeOptions
	MaxSteps       int
	OverlayEnabled bool
	OverlayColor   string
	StartColor     string
	RateLimit      RateLimitConfig
}

// RateLimitConfig holds per-client limits. Zero disables a limit.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxDataPerDay     int64
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// TraceResponse wraps a trace result or an error.
type TraceResponse struct {
	Success   bool           `json:"success"`
	Result    *output.Result `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorType string         `json:"error_type,omitempty"`
}

// GridRequest is the body of POST /trace/grid. Any non-zero cell is
// foreground.
type GridRequest struct {
	Rows [][]int `json:"rows"`
}

// NewServer creates a new tracing server instance.
func NewServer(config Config) (*Server, error) {
	var opts []contour.Option
	if config.MaxSteps > 0 {
		opts = append(opts, contour.WithMaxSteps(config.MaxSteps))
	}

	s := &Server{
		tracer:         contour.NewTracer(opts...),
		binarize:       config.Binarize,
		corsOrigin:     config.CORSOrigin,
		maxUploadMB:    config.MaxUploadMB,
		timeoutSec:     config.TimeoutSec,
		overlayEnabled: config.OverlayEnabled,
		overlayColor:   config.OverlayColor,
		startColor:     config.StartColor,
	}
	if s.maxUploadMB <= 0 {
		s.maxUploadMB = 50
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}

	if config.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(
			config.RateLimit.RequestsPerMinute,
			config.RateLimit.RequestsPerHour,
			config.RateLimit.MaxRequestsPerDay,
			config.RateLimit.MaxDataPerDay,
		)
		s.stopPruning = s.rateLimiter.StartPruning(clientPruneInterval, clientIdleTimeout)
	}

	return s, nil
}

// Close stops background work started by NewServer.
func (s *Server) Close() error {
	if s.stopPruning != nil {
		s.stopPruning()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/trace/image", s.corsMiddleware(s.rateLimitMiddleware(s.traceImageHandler)))
	mux.HandleFunc("/trace/grid", s.corsMiddleware(s.rateLimitMiddleware(s.traceGridHandler)))
	mux.HandleFunc("/ws/trace", s.rateLimitMiddleware(s.traceWebSocketHandler))
}
