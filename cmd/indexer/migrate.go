package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"governorIndexer/internal/config"
	"governorIndexer/internal/storage/postgres"
	"governorIndexer/internal/storage/sqlite"
)

func runMigrate(cmd *cobra.Command, _ []string) (err error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadMigrate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()

	switch cfg.Sink {
	case config.SinkPostgres:
		if cfg.PGDSN == "" {
			return fmt.Errorf("pg dsn is required")
		}
		store, openErr := postgres.NewStore(ctx, cfg.PGDSN)
		if openErr != nil {
			return openErr
		}
		defer func() { err = multierr.Append(err, store.Close()) }()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	case config.SinkSQLite:
		if err := ensureDir(cfg.SQLitePath); err != nil {
			return err
		}
		// Open applies the schema.
		store, openErr := sqlite.Open(ctx, cfg.SQLitePath)
		if openErr != nil {
			return openErr
		}
		defer func() { err = multierr.Append(err, store.Close()) }()
	default:
		return fmt.Errorf("migrate supports postgres and sqlite, got %q", cfg.Sink)
	}

	logger.Info("migration complete", zap.String("sink", cfg.Sink))
	return nil
}
