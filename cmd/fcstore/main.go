package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fcstore/internal/core"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

func Run(ctx context.Context) error {

	configPath := flag.String("config", "", "optional YAML configuration file")
	port := flag.String("listen", "", "HTTP listen port (overrides PORT)")
	dataDir := flag.String("data-dir", "", "directory to store buckets in (overrides FCSTORE_DATA_DIR)")
	metricsListen := flag.String("metrics-listen", "", "Prometheus metrics listen address, disabled when empty")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")

	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if *port != "" {
		cfg.Port = *port
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *metricsListen != "" {
		cfg.MetricsListen = *metricsListen
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	handler := log.NewWithOptions(os.Stdout, log.Options{
		Level:           level,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
		TimeFunction:    log.NowUTC,
		ReportCaller:    true,
	})

	slog.SetDefault(slog.New(handler))

	server, err := core.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create fcstore server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 20 * time.Second,
	}

	metricsServer := &http.Server{
		Addr:              cfg.MetricsListen,
		Handler:           server.Metrics.Handler(),
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Join(httpServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	eg.Go(func() error {
		if cfg.MetricsListen == "" {
			slog.Debug("Skipping metrics listener because no address was provided")
			return nil
		}

		slog.Info("Starting metrics server", "addr", cfg.MetricsListen)
		err := metricsServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	eg.Go(func() error {
		slog.Info("Server is running", "port", cfg.Port, "data_dir", cfg.DataDir)
		err := httpServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	return eg.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Run(ctx)
	stop()

	if err != nil {
		slog.Error("fcstore exited with error", "error", err)
		os.Exit(1)
	}
}
