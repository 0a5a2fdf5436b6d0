package cmd

import (
	"testing"

	"github.com/MeKo-Tech/moore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfigFromFlags_Defaults(t *testing.T) {
	resetFlags(serveCmd)
	cfg := config.DefaultConfig()
	cfg.Binarize.Threshold = 42
	cfg.Server.RateLimit.Enabled = true

	sc, shutdown, err := serverConfigFromFlags(&cfg, serveCmd)
	require.NoError(t, err)
	assert.Equal(t, "localhost", sc.Host)
	assert.Equal(t, 8080, sc.Port)
	assert.Equal(t, int64(50), sc.MaxUploadMB)
	assert.Equal(t, uint8(42), sc.Binarize.Threshold)
	assert.True(t, sc.RateLimit.Enabled)
	assert.Equal(t, 60, sc.RateLimit.RequestsPerMinute)
	assert.Equal(t, 10, shutdown)
}

func TestServerConfigFromFlags_Overrides(t *testing.T) {
	resetFlags(serveCmd)
	t.Cleanup(func() { resetFlags(serveCmd) })
	require.NoError(t, serveCmd.ParseFlags([]string{
		"--host", "0.0.0.0", "--port", "9090", "--max-upload-size", "5",
		"--invert", "--threshold", "100", "--max-steps", "500",
		"--overlay-enable=false", "--shutdown-timeout", "3",
		"--rate-limit-enabled", "--requests-per-minute", "7",
	}))

	cfg := config.DefaultConfig()
	sc, shutdown, err := serverConfigFromFlags(&cfg, serveCmd)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", sc.Host)
	assert.Equal(t, 9090, sc.Port)
	assert.Equal(t, int64(5), sc.MaxUploadMB)
	assert.True(t, sc.Binarize.Invert)
	assert.Equal(t, uint8(100), sc.Binarize.Threshold)
	assert.Equal(t, 500, sc.MaxSteps)
	assert.False(t, sc.OverlayEnabled)
	assert.Equal(t, 3, shutdown)
	assert.True(t, sc.RateLimit.Enabled)
	assert.Equal(t, 7, sc.RateLimit.RequestsPerMinute)
}

func TestServerConfigFromFlags_Invalid(t *testing.T) {
	t.Cleanup(func() { resetFlags(serveCmd) })
	cfg := config.DefaultConfig()

	for _, args := range [][]string{{"--port", "0"}, {"--port", "70000"}, {"--threshold", "300"}} {
		resetFlags(serveCmd)
		require.NoError(t, serveCmd.ParseFlags(args))
		_, _, err := serverConfigFromFlags(&cfg, serveCmd)
		assert.Error(t, err, args)
	}
}
