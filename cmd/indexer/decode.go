package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"governorIndexer/internal/config"
	"governorIndexer/internal/indexer"
	"governorIndexer/internal/ledger"
	"governorIndexer/internal/storage"
)

func runDecode(cmd *cobra.Command, _ []string) (err error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := ledger.OpenFile(cfg.In)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, source.Close()) }()

	journal, err := storage.NewJSONLStore(cfg.Out)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, journal.Close()) }()

	failures, err := storage.NewJSONLWriter(cfg.Failures, true)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, failures.Close()) }()

	idx := indexer.NewIndexer(journal, indexer.Options{Failures: failures}, logger)
	runner := indexer.NewRunner(indexer.RunConfig{NetworkPassphrase: cfg.NetworkPassphrase}, source, idx, nil, logger)

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("failures", cfg.Failures),
	)

	return runner.Run(ctx)
}
