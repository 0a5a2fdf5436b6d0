package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t, Config{CORSOrigin: "https://example.com"})
	called := false
	handler := s.corsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodOptions, "/trace/grid", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, called)
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")

	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.2.3.4:5", "10.0.0.1"},
		{"forwarded single", map[string]string{"X-Forwarded-For": " 10.0.0.9 "}, "1.2.3.4:5", "10.0.0.9"},
		{"real ip", map[string]string{"X-Real-IP": "192.168.1.1"}, "1.2.3.4:5", "192.168.1.1"},
		{"remote addr", nil, "1.2.3.4:5678", "1.2.3.4"},
		{"remote without port", nil, "1.2.3.4", "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t, Config{RateLimit: RateLimitConfig{Enabled: true, RequestsPerMinute: 2}})
	require.NotNil(t, s.rateLimiter)

	handler := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/trace/grid", strings.NewReader("{}"))
		req.RemoteAddr = "10.1.1.1:1234"
		w := httptest.NewRecorder()
		handler(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)

	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "minute", w.Header().Get("X-RateLimit-Type"))
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	s := newTestServer(t, Config{})
	assert.Nil(t, s.rateLimiter)

	handler := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	for range 5 {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestHandleRateLimitError_Quota(t *testing.T) {
	s := newTestServer(t, Config{})
	w := httptest.NewRecorder()
	s.handleRateLimitError(w, &QuotaExceededError{Type: "data", Limit: 100, Used: 90})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "data", w.Header().Get("X-Quota-Type"))
	assert.Equal(t, "100", w.Header().Get("X-Quota-Limit"))
	assert.Equal(t, "90", w.Header().Get("X-Quota-Used"))
	assert.Contains(t, w.Body.String(), "quota_exceeded")

	w = httptest.NewRecorder()
	s.handleRateLimitError(w, assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
