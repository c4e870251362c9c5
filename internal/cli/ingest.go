package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"txrecon/internal/application/recon"
	"txrecon/internal/domain/transaction"
	"txrecon/internal/infrastructure/config"
	"txrecon/internal/infrastructure/logging"
	"txrecon/internal/infrastructure/storage"
)

// IngestFlags holds the CLI flags for the ingest command.
type IngestFlags struct {
	Source   string
	PageSize int
	Verbose  bool
}

// ParseIngestFlags parses command line flags for the ingest command.
func ParseIngestFlags() *IngestFlags {
	flags := &IngestFlags{}
	flag.StringVar(&flags.Source, "source", string(transaction.SourceFieldService), "Source to ingest from")
	flag.IntVar(&flags.PageSize, "page-size", 0, "Payloads per page (0 = from config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// RunIngest fetches and ingests one batch of payloads from a source API.
func RunIngest(cfg *config.Config, flags *IngestFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "ingest")

	source := transaction.Source(flags.Source)
	if !source.Valid() {
		return fmt.Errorf("unknown source %q", flags.Source)
	}

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

	pageSize := flags.PageSize
	if pageSize == 0 {
		pageSize = cfg.Sources.FieldService.PageSize
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := service.Sync(ctx, source, pageSize)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d: found %d, processed %d, skipped %d, errors %d\n",
		result.RunID, result.Found, result.Processed, result.Skipped, result.Errors)

	return nil
}
