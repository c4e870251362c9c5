// Package cli implements the command entrypoints shared by the binaries.
package cli

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"txrecon/internal/adapters/sources"
	"txrecon/internal/adapters/sources/fieldservice"
	"txrecon/internal/api"
	"txrecon/internal/application/recon"
	"txrecon/internal/infrastructure/config"
	"txrecon/internal/infrastructure/logging"
	"txrecon/internal/infrastructure/storage"
)

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port    int
	Verbose bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (0 = from config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// RunServe runs the API server.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	clients, err := buildSourceClients(cfg, logger)
	if err != nil {
		return err
	}
	service := recon.NewService(store, logger, clients...)

	port := flags.Port
	if port == 0 {
		port = cfg.API.Port
	}
	apiCfg := api.DefaultConfig()
	apiCfg.Port = port
	apiCfg.AuthSecret = cfg.API.AuthSecret
	if len(cfg.API.AllowedOrigins) > 0 {
		apiCfg.AllowedOrigins = cfg.API.AllowedOrigins
	}

	server := api.NewServer(apiCfg, store, service, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}

// buildSourceClients constructs clients for every enabled source.
func buildSourceClients(cfg *config.Config, logger *slog.Logger) ([]sources.Client, error) {
	var clients []sources.Client

	if cfg.Sources.FieldService.Enabled {
		client, err := fieldservice.New(fieldservice.Config{
			BaseURL: cfg.Sources.FieldService.BaseURL,
			APIKey:  cfg.Sources.FieldService.APIKey,
		}, logger)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}

	return clients, nil
}
