/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuonguno98/chunksite/internal/config"
	"github.com/phuonguno98/chunksite/internal/metrics"
	"github.com/phuonguno98/chunksite/internal/ratelimit"
	"github.com/phuonguno98/chunksite/internal/server"
	"github.com/phuonguno98/chunksite/internal/sysinfo"
	"github.com/phuonguno98/chunksite/internal/website"
	"github.com/phuonguno98/chunksite/pkg/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const metricsPath = "/metrics"

var (
	// Serve command specific flags
	serveHost      string
	servePort      int
	serveChunkSize int
	serveMaxRoutes int
	serveIndex     string
	serveRPS       float64
	serveBurst     int
	serveMetrics   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Register the embedded website and start the HTTP server",
	Long: `Register every embedded file as a route and start serving.

The index document is served at its own path and at "/". Responses are
streamed in chunks of --chunk-size bytes.

Examples:
  # Serve on port 80 with 256-byte chunks
  chunksite serve

  # Serve locally with larger chunks and metrics
  chunksite serve --host 127.0.0.1 --port 8080 --chunk-size 1024 --metrics`,

	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", config.DefaultHost, "HTTP server listen address")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", config.DefaultPort, "HTTP server port")
	addSiteFlags(serveCmd)
	serveCmd.Flags().IntVar(&serveMaxRoutes, "max-routes", server.DefaultMaxRoutes, "Maximum number of registered handlers")
	serveCmd.Flags().Float64Var(&serveRPS, "rate-limit", 0, "Requests per second per client (0 = unlimited)")
	serveCmd.Flags().IntVar(&serveBurst, "rate-burst", config.DefaultRateLimitBurst, "Request burst allowed by the rate limiter")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", false, "Expose Prometheus metrics at "+metricsPath)
}

// addSiteFlags registers the flags shared by serve and inspect.
func addSiteFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&serveChunkSize, "chunk-size", 0, "Bytes per chunk (default 256)")
	cmd.Flags().StringVar(&serveIndex, "index", "", "File also served at / (default index.html)")
}

// applySiteFlags overlays explicitly set site flags on cfg.
func applySiteFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = serveChunkSize
	}
	if flags.Changed("index") {
		cfg.IndexName = serveIndex
	}
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	applySiteFlags(cmd, cfg)

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = serveHost
	}
	if flags.Changed("port") {
		cfg.Port = servePort
	}
	if flags.Changed("max-routes") {
		cfg.MaxRoutes = serveMaxRoutes
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimitRPS = serveRPS
	}
	if flags.Changed("rate-burst") {
		cfg.RateLimitBurst = serveBurst
	}
	if flags.Changed("metrics") {
		cfg.MetricsEnabled = serveMetrics
	}
}

// buildServer creates the HTTP server and registers the website on it.
func buildServer(cfg *config.Config, logger *slog.Logger) (*server.Server, error) {
	var (
		m        *metrics.Metrics
		registry *prometheus.Registry
		limiter  *ratelimit.Limiter
	)

	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		m = metrics.New(registry)
	}
	if cfg.RateLimitRPS > 0 {
		limiter = ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	srv := server.NewServer(logger, server.Options{
		MaxRoutes: cfg.MaxRoutes,
		Metrics:   m,
		Limiter:   limiter,
	})

	opts := website.Options{
		IndexName: cfg.IndexName,
		ChunkSize: cfg.ChunkSize,
		Logger:    logger,
	}
	if m != nil {
		opts.Observer = m
	}

	table, err := website.RegisterWebsite(srv, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to register website: %w", err)
	}

	if registry != nil {
		if err := srv.Handle(metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})); err != nil {
			return nil, fmt.Errorf("failed to register metrics endpoint: %w", err)
		}
	}

	if memory, err := sysinfo.ReadMemory(); err != nil {
		logger.Warn("Failed to read host memory", "error", err)
	} else {
		fp := sysinfo.ComputeFootprint(table, cfg.ChunkSize, memory)
		logger.Info("Memory footprint",
			"embedded_bytes", fp.EmbeddedBytes,
			"per_request_peak", fp.PerRequestPeak,
			"available_bytes", memory.Available,
		)
	}

	return srv, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := InitLogger(cfg.LogLevel, cfg.LogFile)
	logger.Info("Starting chunksite",
		"version", version.Info(),
		"config", cfg.String(),
	)

	srv, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("Received signal, initiating shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logReachableURLs(logger, cfg)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-ctx.Done()
	logger.Info("Server stopped")
	return nil
}

func logReachableURLs(logger *slog.Logger, cfg *config.Config) {
	if cfg.Host != config.DefaultHost {
		logger.Info("Serving", "url", fmt.Sprintf("http://%s/", cfg.Addr()))
		return
	}

	addresses, err := sysinfo.ListAddresses()
	if err != nil {
		logger.Warn("Failed to list network addresses", "error", err)
	}
	if len(addresses) == 0 {
		addresses = []string{"localhost"}
	}
	for _, addr := range addresses {
		logger.Info("Serving", "url", fmt.Sprintf("http://%s:%d/", addr, cfg.Port))
	}
}
