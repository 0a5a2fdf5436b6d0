package cmd

import (
	"log/slog"
	"testing"

	"github.com/MeKo-Tech/moore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "moore", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.Same(t, rootCmd, GetRootCommand())
}

func TestRootCommandHelp(t *testing.T) {
	out, err := executeCommand(t, nil, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Moore-neighbour")
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "Usage:")
}

func TestRootCommandVersion(t *testing.T) {
	out, err := executeCommand(t, nil, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "moore version")
	assert.Contains(t, out, "Commit:")
}

func TestRootCommandNoArgs(t *testing.T) {
	out, err := executeCommand(t, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestRootCommandSubcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"trace", "grid", "batch", "serve", "config"} {
		assert.Contains(t, names, expected, "Expected subcommand '%s' not found", expected)
	}
}

func TestRootCommandInvalidFlag(t *testing.T) {
	out, err := executeCommand(t, nil, "--invalid-flag")
	require.Error(t, err)
	assert.Contains(t, out, "unknown flag")
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		cfg  config.Config
		want slog.Level
	}{
		{config.Config{LogLevel: "debug"}, slog.LevelDebug},
		{config.Config{LogLevel: "info"}, slog.LevelInfo},
		{config.Config{LogLevel: "warn"}, slog.LevelWarn},
		{config.Config{LogLevel: "error"}, slog.LevelError},
		{config.Config{LogLevel: "bogus"}, slog.LevelInfo},
		{config.Config{LogLevel: "error", Verbose: true}, slog.LevelDebug},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, logLevel(&tt.cfg))
	}
}
