package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MeKo-Tech/moore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceImageHandler_JSON(t *testing.T) {
	s := newTestServer(t, Config{})
	req := multipartRequest(t, "/trace/image", "image", "square.png", squarePNG(t), nil)
	w := httptest.NewRecorder()
	s.traceImageHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp TraceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "square.png", resp.Result.File)
	assert.Equal(t, 5, resp.Result.Width)
	assert.Equal(t, 9, resp.Result.Length)
	assert.Equal(t, 8, resp.Result.Distinct)
	require.NotNil(t, resp.Result.Start)
	assert.Equal(t, 1, resp.Result.Start.Row)
	assert.Equal(t, 1, resp.Result.Start.Col)
}

func TestTraceImageHandler_InvertAndThreshold(t *testing.T) {
	s := newTestServer(t, Config{})

	// Inverted, the background frame becomes the object.
	req := multipartRequest(t, "/trace/image", "image", "square.png", squarePNG(t), map[string]string{"invert": "true"})
	w := httptest.NewRecorder()
	s.traceImageHandler(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp TraceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 16, resp.Result.Distinct)

	// A threshold of 255 leaves nothing above it.
	req = multipartRequest(t, "/trace/image", "image", "square.png", squarePNG(t), map[string]string{"threshold": "255"})
	w = httptest.NewRecorder()
	s.traceImageHandler(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	for _, fields := range []map[string]string{{"threshold": "300"}, {"threshold": "abc"}, {"invert": "maybe"}} {
		req = multipartRequest(t, "/trace/image", "image", "square.png", squarePNG(t), fields)
		w = httptest.NewRecorder()
		s.traceImageHandler(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, fields)
	}
}

func TestTraceImageHandler_Errors(t *testing.T) {
	s := newTestServer(t, Config{})

	t.Run("method", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.traceImageHandler(w, httptest.NewRequest(http.MethodGet, "/trace/image", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		req := multipartRequest(t, "/trace/image", "", "", nil, map[string]string{"format": "json"})
		w := httptest.NewRecorder()
		s.traceImageHandler(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No image file provided")
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/trace/image", bytes.NewReader([]byte("x")))
		req.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		s.traceImageHandler(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid image", func(t *testing.T) {
		req := multipartRequest(t, "/trace/image", "image", "junk.png", []byte("not an image"), nil)
		w := httptest.NewRecorder()
		s.traceImageHandler(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_image")
	})

	t.Run("blank image", func(t *testing.T) {
		blank := pngBytes(t, image.NewGray(image.Rect(0, 0, 4, 4)))
		req := multipartRequest(t, "/trace/image", "image", "blank.png", blank, nil)
		w := httptest.NewRecorder()
		s.traceImageHandler(w, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "no_foreground_pixel")
	})

	t.Run("isolated pixel", func(t *testing.T) {
		dot := pngBytes(t, testutil.ImageFromRows("...", ".#.", "..."))
		req := multipartRequest(t, "/trace/image", "image", "dot.png", dot, nil)
		w := httptest.NewRecorder()
		s.traceImageHandler(w, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "isolated_pixel")
	})

	t.Run("too large", func(t *testing.T) {
		big := make([]byte, 2*1024*1024)
		req := multipartRequest(t, "/trace/image", "image", "big.png", big, nil)
		w := httptest.NewRecorder()
		s.traceImageHandler(w, req)
		assert.Contains(t, []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest}, w.Code)
	})
}

func TestTraceImageHandler_CSV(t *testing.T) {
	s := newTestServer(t, Config{})
	req := multipartRequest(t, "/trace/image?format=csv", "image", "square.png", squarePNG(t), nil)
	w := httptest.NewRecorder()
	s.traceImageHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	lines := bytes.Split(bytes.TrimSpace(w.Body.Bytes()), []byte("\n"))
	assert.Len(t, lines, 10)
	assert.Equal(t, "square.png,0,1,1,", string(lines[1]))
}

func TestTraceImageHandler_Overlay(t *testing.T) {
	s := newTestServer(t, Config{OverlayEnabled: true, OverlayColor: "#0000FF"})
	req := multipartRequest(t, "/trace/image", "image", "square.png", squarePNG(t),
		map[string]string{"format": "overlay", "start_color": "#00FF00"})
	w := httptest.NewRecorder()
	s.traceImageHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 5), img.Bounds())

	// (1,2) is on the contour and clear of the start marker.
	r, g, b, _ := img.At(2, 1).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0xffff), b)
}

func TestTraceImageHandler_OverlayDisabled(t *testing.T) {
	s := newTestServer(t, Config{OverlayEnabled: false})
	req := multipartRequest(t, "/trace/image", "image", "square.png", squarePNG(t),
		map[string]string{"format": "overlay"})
	w := httptest.NewRecorder()
	s.traceImageHandler(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
