package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/MeKo-Tech/moore/internal/output"
	"github.com/MeKo-Tech/moore/internal/utils"
	"github.com/gorilla/websocket"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketTraceRequest is a trace request sent over WebSocket. Type is
// "grid" or "image"; when empty it is inferred from the payload. Image is
// base64 encoded in JSON.
type WebSocketTraceRequest struct {
	Type      string  `json:"type,omitempty"`
	Rows      [][]int `json:"rows,omitempty"`
	Image     []byte  `json:"image,omitempty"`
	Threshold *int    `json:"threshold,omitempty"`
	Invert    *bool   `json:"invert,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
}

// WebSocketTraceResponse reports the progress or outcome of a request.
type WebSocketTraceResponse struct {
	Type      string         `json:"type"`
	Status    string         `json:"status"` // "processing", "completed", "error"
	Progress  float64        `json:"progress,omitempty"`
	Result    *output.Result `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorType string         `json:"error_type,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// traceWebSocketHandler upgrades the connection and serves trace requests
// until the client goes away.
func (s *Server) traceWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(r.Context(), conn)
}

func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn) {
	// Oversized frames fail ReadMessage and close the connection.
	conn.SetReadLimit(s.maxUploadMB * 1024 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(ctx, conn, data)
		}
	}
}

// handleWebSocketMessage answers one request with a processing message
// followed by a completed or error message.
func (s *Server) handleWebSocketMessage(ctx context.Context, conn WebSocketConnWriter, data []byte) {
	var req WebSocketTraceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "", "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = strconv.FormatInt(time.Now().UnixNano(), 10)
	}

	s.sendWebSocketResponse(conn, WebSocketTraceResponse{
		Type:      "trace_response",
		Status:    "processing",
		RequestID: requestID,
	})

	g, errType, err := s.webSocketGrid(req)
	if err != nil {
		s.sendWebSocketError(conn, requestID, errType, err.Error())
		return
	}

	res, err := s.trace(ctx, sourceWebSocket, g, "")
	if err != nil {
		s.sendWebSocketError(conn, requestID, output.ErrorType(err), err.Error())
		return
	}

	s.sendWebSocketResponse(conn, WebSocketTraceResponse{
		Type:      "trace_response",
		Status:    "completed",
		Progress:  1.0,
		Result:    res,
		RequestID: requestID,
	})
}

// webSocketGrid builds the grid a request describes. The returned string
// classifies failures.
func (s *Server) webSocketGrid(req WebSocketTraceRequest) (contour.Grid, string, error) {
	kind := req.Type
	if kind == "" {
		switch {
		case len(req.Image) > 0:
			kind = "image"
		case req.Rows != nil:
			kind = "grid"
		}
	}

	switch kind {
	case "grid":
		g, err := contour.GridFromRows(req.Rows)
		if err != nil {
			return contour.Grid{}, "invalid_request", err
		}
		return g, "", nil
	case "image":
		if len(req.Image) == 0 {
			return contour.Grid{}, "invalid_request", fmt.Errorf("no image data provided")
		}
		img, _, err := utils.DecodeImageBytes(req.Image)
		if err != nil {
			return contour.Grid{}, "invalid_image", fmt.Errorf("failed to decode image: %w", err)
		}
		opts := s.binarize
		if req.Threshold != nil {
			if *req.Threshold < 0 || *req.Threshold > 255 {
				return contour.Grid{}, "invalid_request", fmt.Errorf("threshold must be between 0 and 255")
			}
			opts.Threshold = uint8(*req.Threshold) //nolint:gosec // G115: range checked above
		}
		if req.Invert != nil {
			opts.Invert = *req.Invert
		}
		g, err := utils.Binarize(img, opts)
		if err != nil {
			return contour.Grid{}, "invalid_image", err
		}
		return g, "", nil
	default:
		return contour.Grid{}, "invalid_request", fmt.Errorf("unsupported request type: %q", req.Type)
	}
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketTraceResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, requestID, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketTraceResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
		RequestID: requestID,
	})
}
