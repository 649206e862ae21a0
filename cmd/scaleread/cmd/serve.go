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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scalevision/scaleread/internal/server"
)

// serveCmd runs the HTTP and WebSocket API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scale reader over HTTP",
	Long: `Start an HTTP server exposing the inference pipeline.

Endpoints:
  POST /v1/read    multipart image upload, returns the parsed reading
  GET  /v1/stream  WebSocket transport for live camera frames
  GET  /health     liveness probe
  GET  /metrics    Prometheus metrics

Example:
  scaleread serve --host 0.0.0.0 --port 8080 --det-model det.onnx --rec-model rec.onnx`,
	SilenceUsage: true,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := GetConfig()

		srv, err := server.NewServer(server.Config{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			CORSOrigin:     cfg.Server.CORSOrigin,
			MaxUploadMB:    int64(cfg.Server.MaxUploadMB),
			TimeoutSec:     cfg.Server.TimeoutSec,
			MaxImageSize:   cfg.Pipeline.MaxImageSize,
			PipelineConfig: cfg.ToPipelineConfig(),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}
		defer func() { _ = srv.Close() }()

		mux := http.NewServeMux()
		srv.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(cfg.Server.TimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(cfg.Server.TimeoutSec) * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			slog.Info("received shutdown signal", "signal", sig.String())
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		slog.Info("shutdown completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "interface to bind")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().String("cors-origin", "*", "Access-Control-Allow-Origin header value")
	serveCmd.Flags().Int("max-upload-mb", 20, "maximum upload size in megabytes")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "graceful shutdown timeout in seconds")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.cors_origin", serveCmd.Flags().Lookup("cors-origin"))
	_ = viper.BindPFlag("server.max_upload_mb", serveCmd.Flags().Lookup("max-upload-mb"))
	_ = viper.BindPFlag("server.timeout_sec", serveCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("server.shutdown_timeout", serveCmd.Flags().Lookup("shutdown-timeout"))
}
