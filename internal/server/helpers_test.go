package server

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MeKo-Tech/moore/internal/testutil"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.MaxUploadMB == 0 {
		cfg.MaxUploadMB = 1
	}
	if cfg.TimeoutSec == 0 {
		cfg.TimeoutSec = 5
	}
	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// squarePNG is a 5x5 image with a 3x3 white square at (1,1).
func squarePNG(t *testing.T) []byte {
	t.Helper()
	return pngBytes(t, testutil.SquareImage(5, 5, 1, 1, 3))
}

func multipartRequest(t *testing.T, target, field, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
