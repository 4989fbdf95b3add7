package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/face-recognition/internal/config"
	"github.com/kozaktomas/face-recognition/internal/constants"
	"github.com/kozaktomas/face-recognition/internal/observe"
	"github.com/kozaktomas/face-recognition/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face Recognition HTTP API.

Endpoints:
  GET  /health          liveness
  GET  /ready           extractor reachability
  GET  /metrics         Prometheus metrics
  POST /register-face   image -> embedding
  POST /verify-face     image + stored_embedding -> match decision
  POST /compare-faces   image + stored_embeddings -> best match`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides HOST)")
}

// resolveServeHostPort applies explicitly set --host/--port over the loaded config.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = mustGetInt(cmd, "port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = mustGetString(cmd, "host")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	resolveServeHostPort(cmd, cfg)
	applyExtractorFlags(cmd, cfg)
	newLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    constants.ServiceName,
		ServiceVersion: Version,
	})
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slog.Warn("metrics shutdown failed", "error", err)
		}
	}()

	detector, release, err := openDetector(cfg)
	if err != nil {
		return err
	}
	defer release()

	server := web.NewServer(cfg, detector, observe.DefaultMetrics())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
