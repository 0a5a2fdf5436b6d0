package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/MeKo-Tech/moore/internal/output"
	"github.com/MeKo-Tech/moore/internal/version"
)

const (
	sourceImage     = "image"
	sourceGrid      = "grid"
	sourceWebSocket = "websocket"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// traceGridHandler traces a grid posted as JSON rows.
func (s *Server) traceGridHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	var req GridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Invalid JSON body: %v", err), "invalid_request", http.StatusBadRequest)
		return
	}

	g, err := contour.GridFromRows(req.Rows)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), "invalid_request", http.StatusBadRequest)
		return
	}

	res, err := s.trace(r.Context(), sourceGrid, g, "")
	if err != nil {
		s.writeTraceError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	s.writeResult(w, res, format)
}

// trace runs the tracer under the request timeout and records metrics.
func (s *Server) trace(ctx context.Context, source string, g contour.Grid, file string) (*output.Result, error) {
	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	c, err := s.tracer.Trace(ctx, g)
	elapsed := time.Since(start)
	if err != nil {
		observeTrace(source, output.ErrorType(err), elapsed.Seconds(), 0)
		return nil, err
	}

	observeTrace(source, "success", elapsed.Seconds(), len(c))
	return output.NewResult(file, g.Width, g.Height, c, elapsed), nil
}

// writeResult writes res in the requested format; JSON is the default.
func (s *Server) writeResult(w http.ResponseWriter, res *output.Result, format string) {
	switch format {
	case "", output.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(TraceResponse{Success: true, Result: res}); err != nil {
			slog.Error("Failed to encode trace response", "error", err)
		}
		return
	case output.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	case output.FormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
	case output.FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	default:
		s.writeErrorResponse(w, "Unsupported format: "+format, "invalid_request", http.StatusBadRequest)
		return
	}

	body, err := output.Format(res, format)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("formatting failed: %v", err), "internal_error", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(body))
}

// statusForTraceError maps tracer errors to HTTP status codes.
func statusForTraceError(err error) int {
	switch {
	case errors.Is(err, contour.ErrNoForegroundPixel),
		errors.Is(err, contour.ErrIsolatedPixel),
		errors.Is(err, contour.ErrContourNotClosed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contour.ErrRaggedRows):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeTraceError(w http.ResponseWriter, err error) {
	s.writeErrorResponse(w, err.Error(), output.ErrorType(err), statusForTraceError(err))
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message, errorType string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := TraceResponse{
		Success:   false,
		Error:     message,
		ErrorType: errorType,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
