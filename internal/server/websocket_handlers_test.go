package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConn collects the messages written to it.
type recordingConn struct {
	messages []WebSocketTraceResponse
}

func (c *recordingConn) WriteMessage(_ int, data []byte) error {
	var resp WebSocketTraceResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}
	c.messages = append(c.messages, resp)
	return nil
}

func TestHandleWebSocketMessage_Grid(t *testing.T) {
	s := newTestServer(t, Config{})
	conn := &recordingConn{}

	s.handleWebSocketMessage(context.Background(), conn, []byte(`{"rows":[[1,1],[1,1]],"request_id":"r1"}`))

	require.Len(t, conn.messages, 2)
	assert.Equal(t, "processing", conn.messages[0].Status)
	assert.Equal(t, "r1", conn.messages[0].RequestID)

	done := conn.messages[1]
	assert.Equal(t, "trace_response", done.Type)
	assert.Equal(t, "completed", done.Status)
	assert.InDelta(t, 1.0, done.Progress, 1e-9)
	require.NotNil(t, done.Result)
	assert.Equal(t, 4, done.Result.Distinct)
	assert.Equal(t, "r1", done.RequestID)
}

func TestHandleWebSocketMessage_Image(t *testing.T) {
	s := newTestServer(t, Config{})
	conn := &recordingConn{}

	payload, err := json.Marshal(WebSocketTraceRequest{Image: squarePNG(t)})
	require.NoError(t, err)
	s.handleWebSocketMessage(context.Background(), conn, payload)

	require.Len(t, conn.messages, 2)
	assert.NotEmpty(t, conn.messages[0].RequestID, "request id is generated")
	assert.Equal(t, conn.messages[0].RequestID, conn.messages[1].RequestID)
	require.Equal(t, "completed", conn.messages[1].Status, conn.messages[1].Error)
	assert.Equal(t, 8, conn.messages[1].Result.Distinct)
}

func TestHandleWebSocketMessage_Errors(t *testing.T) {
	s := newTestServer(t, Config{})
	threshold := 999

	tests := []struct {
		name      string
		payload   string
		messages  int
		errorType string
	}{
		{"bad json", `{`, 1, "invalid_request"},
		{"unknown type", `{"type":"pdf"}`, 2, "invalid_request"},
		{"ragged rows", `{"rows":[[1],[1,1]]}`, 2, "invalid_request"},
		{"empty image", `{"type":"image"}`, 2, "invalid_request"},
		{"undecodable image", `{"image":"bm90IGFuIGltYWdl"}`, 2, "invalid_image"},
		{"blank grid", `{"rows":[[0,0],[0,0]]}`, 2, "no_foreground_pixel"},
		{"isolated pixel", `{"rows":[[0,0,0],[0,1,0],[0,0,0]]}`, 2, "isolated_pixel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &recordingConn{}
			s.handleWebSocketMessage(context.Background(), conn, []byte(tt.payload))
			require.Len(t, conn.messages, tt.messages)
			last := conn.messages[len(conn.messages)-1]
			assert.Equal(t, "error", last.Type)
			assert.Equal(t, "error", last.Status)
			assert.Equal(t, tt.errorType, last.ErrorType)
			assert.NotEmpty(t, last.Error)
		})
	}

	t.Run("threshold out of range", func(t *testing.T) {
		payload, err := json.Marshal(WebSocketTraceRequest{Image: squarePNG(t), Threshold: &threshold})
		require.NoError(t, err)
		conn := &recordingConn{}
		s.handleWebSocketMessage(context.Background(), conn, payload)
		require.Len(t, conn.messages, 2)
		assert.Equal(t, "invalid_request", conn.messages[1].ErrorType)
	})
}

func TestTraceWebSocketHandler_RoundTrip(t *testing.T) {
	s := newTestServer(t, Config{})
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/trace"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteJSON(WebSocketTraceRequest{
		Rows:      [][]int{{0, 1, 0}, {1, 1, 1}, {0, 1, 0}},
		RequestID: "plus",
	}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first, second WebSocketTraceResponse
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))

	assert.Equal(t, "processing", first.Status)
	assert.Equal(t, "completed", second.Status)
	assert.Equal(t, "plus", second.RequestID)
	require.NotNil(t, second.Result)
	assert.Equal(t, 4, second.Result.Distinct)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
}

func TestTraceWebSocketHandler_OversizedFrameClosesConnection(t *testing.T) {
	s := newTestServer(t, Config{MaxUploadMB: 1})
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/trace"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	row := strings.Repeat("1,", 700_000) + "1"
	frame := `{"rows":[[` + row + `]]}`
	require.Greater(t, len(frame), 1024*1024)
	// The server may drop the connection while the frame is still being
	// written, so a write error is as good as a close frame.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		return
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected reply: %s", data)
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "server kept the connection open")
	}
}
