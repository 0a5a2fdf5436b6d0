package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/moore/internal/config"
	"github.com/MeKo-Tech/moore/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the contour tracing API",
	Long: `Start an HTTP server that provides REST and WebSocket endpoints for
contour tracing.

The server provides the following endpoints:
  POST /trace/image - Trace an uploaded image (multipart field "image")
  POST /trace/grid  - Trace a JSON grid {"rows": [[0,1,...],...]}
  GET  /ws/trace    - WebSocket trace requests
  GET  /health      - Health check endpoint
  GET  /metrics     - Prometheus metrics

Examples:
  moore serve
  moore serve --port 8080
  moore serve --host 0.0.0.0 --port 3000 --rate-limit-enabled`,
	SilenceUsage: true,
	RunE:         runServe,
}

// serverConfigFromFlags maps centralized configuration plus CLI overrides
// onto server.Config. It also returns the shutdown timeout in seconds.
func serverConfigFromFlags(cfg *config.Config, cmd *cobra.Command) (server.Config, int, error) {
	sc := server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		CORSOrigin:     cfg.Server.CORSOrigin,
		MaxUploadMB:    int64(cfg.Server.MaxUploadMB),
		TimeoutSec:     cfg.Server.TimeoutSec,
		Binarize:       cfg.BinarizeOptions(),
		MaxSteps:       cfg.Trace.MaxSteps,
		OverlayEnabled: cfg.Server.OverlayEnabled,
		OverlayColor:   cfg.Output.OverlayColor,
		StartColor:     cfg.Output.StartColor,
		RateLimit: server.RateLimitConfig{
			Enabled:           cfg.Server.RateLimit.Enabled,
			RequestsPerMinute: cfg.Server.RateLimit.RequestsPerMinute,
			RequestsPerHour:   cfg.Server.RateLimit.RequestsPerHour,
			MaxRequestsPerDay: cfg.Server.RateLimit.MaxRequestsPerDay,
			MaxDataPerDay:     cfg.Server.RateLimit.MaxDataPerDay,
		},
	}
	shutdownTimeout := cfg.Server.ShutdownTimeout

	flags := cmd.Flags()
	if flags.Changed("host") {
		sc.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		sc.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("cors-origin") {
		sc.CORSOrigin, _ = flags.GetString("cors-origin")
	}
	if flags.Changed("max-upload-size") {
		n, _ := flags.GetInt("max-upload-size")
		sc.MaxUploadMB = int64(n)
	}
	if flags.Changed("timeout") {
		sc.TimeoutSec, _ = flags.GetInt("timeout")
	}
	if flags.Changed("shutdown-timeout") {
		shutdownTimeout, _ = flags.GetInt("shutdown-timeout")
	}
	if flags.Changed("overlay-enable") {
		sc.OverlayEnabled, _ = flags.GetBool("overlay-enable")
	}
	if flags.Changed("overlay-color") {
		sc.OverlayColor, _ = flags.GetString("overlay-color")
	}
	if flags.Changed("start-color") {
		sc.StartColor, _ = flags.GetString("start-color")
	}
	if flags.Changed("threshold") {
		t, _ := flags.GetInt("threshold")
		if t < 0 || t > 255 {
			return sc, 0, fmt.Errorf("invalid threshold: %d (must be between 0 and 255)", t)
		}
		sc.Binarize.Threshold = uint8(t) //nolint:gosec // G115: range checked above
	}
	if flags.Changed("invert") {
		sc.Binarize.Invert, _ = flags.GetBool("invert")
	}
	if flags.Changed("max-steps") {
		sc.MaxSteps, _ = flags.GetInt("max-steps")
	}

	// Rate limiting
	if flags.Changed("rate-limit-enabled") {
		sc.RateLimit.Enabled, _ = flags.GetBool("rate-limit-enabled")
	}
	if flags.Changed("requests-per-minute") {
		sc.RateLimit.RequestsPerMinute, _ = flags.GetInt("requests-per-minute")
	}
	if flags.Changed("requests-per-hour") {
		sc.RateLimit.RequestsPerHour, _ = flags.GetInt("requests-per-hour")
	}
	if flags.Changed("max-requests-per-day") {
		sc.RateLimit.MaxRequestsPerDay, _ = flags.GetInt("max-requests-per-day")
	}
	if flags.Changed("max-data-per-day") {
		sc.RateLimit.MaxDataPerDay, _ = flags.GetInt64("max-data-per-day")
	}

	if sc.Port < 1 || sc.Port > 65535 {
		return sc, 0, fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", sc.Port)
	}
	return sc, shutdownTimeout, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	serverConfig, shutdownTimeout, err := serverConfigFromFlags(GetConfig(), cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	traceServer, err := server.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	mux := http.NewServeMux()
	traceServer.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(serverConfig.TimeoutSec) * time.Second,
	}

	go func() {
		slog.Info("Starting contour server", "host", serverConfig.Host, "port", serverConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled, initiating shutdown")
	}

	slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server shutdown completed")
	}

	if err := traceServer.Close(); err != nil {
		slog.Error("Server cleanup error", "error", err)
	}

	slog.Info("Graceful shutdown completed")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 50, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	// Tracing defaults for requests that do not override them
	serveCmd.Flags().Int("threshold", 0, "default binarization threshold (0-255)")
	serveCmd.Flags().Bool("invert", false, "treat dark pixels as foreground by default")
	serveCmd.Flags().Int("max-steps", 0, "walk step budget (0 derives it from the image size)")
	serveCmd.Flags().Bool("overlay-enable", true, "enable overlay image responses")
	serveCmd.Flags().String("overlay-color", "#FF0000", "overlay contour color (hex)")
	serveCmd.Flags().String("start-color", "#00FF00", "overlay start marker color (hex)")
	// Rate limiting flags
	serveCmd.Flags().Bool("rate-limit-enabled", false, "enable rate limiting")
	serveCmd.Flags().Int("requests-per-minute", 60, "maximum requests per minute per client")
	serveCmd.Flags().Int("requests-per-hour", 1000, "maximum requests per hour per client")
	serveCmd.Flags().Int("max-requests-per-day", 10000, "maximum requests per day per client")
	serveCmd.Flags().Int64("max-data-per-day", 1<<30, "maximum data processed per day per client (bytes)")
}
