package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"governorIndexer/internal/config"
	"governorIndexer/internal/indexer"
	"governorIndexer/internal/ledger"
	"governorIndexer/internal/metrics"
	"governorIndexer/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Soroban governor event indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Index governor events from closed ledgers",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("in", "", "input file of base64 LedgerCloseMeta, one per line")
	runCmd.Flags().String("network-passphrase", "", "network passphrase (defaults to pubnet)")
	runCmd.Flags().String("sink", config.SinkPostgres, "state store (postgres, sqlite, jsonl, memory)")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	runCmd.Flags().String("sqlite-path", "./data/governor.db", "SQLite database path")
	runCmd.Flags().String("jsonl-out", "./data/governor.jsonl", "JSONL journal path")
	runCmd.Flags().String("failures", "./data/store_failures.jsonl", "store failures JSONL")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Uint32("from-ledger", 0, "first ledger to index (inclusive)")
	runCmd.Flags().Uint32("to-ledger", 0, "last ledger to index (inclusive), 0 means end of input")
	runCmd.Flags().Int("max-retries", 5, "maximum store acquire attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("metrics-addr", "", "address for the prometheus endpoint, empty disables it")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode governor events into a JSONL journal",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "", "input file of base64 LedgerCloseMeta, one per line")
	decodeCmd.Flags().String("network-passphrase", "", "network passphrase (defaults to pubnet)")
	decodeCmd.Flags().String("out", "./data/decoded.jsonl", "output journal JSONL")
	decodeCmd.Flags().String("failures", "./data/store_failures.jsonl", "store failures JSONL")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE:  runMigrate,
	}

	migrateCmd.Flags().String("sink", config.SinkPostgres, "database (postgres, sqlite)")
	migrateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	migrateCmd.Flags().String("sqlite-path", "./data/governor.db", "SQLite database path")
	migrateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(migrateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndexer(cmd *cobra.Command, _ []string) (err error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target, err := openSink(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, target.backend.Close()) }()

	source, err := ledger.OpenFile(cfg.In)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, source.Close()) }()

	failures, err := storage.NewJSONLWriter(cfg.Failures, true)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, failures.Close()) }()

	var recorder *metrics.Recorder
	if cfg.MetricsAddr != "" {
		recorder = metrics.NewRecorder()
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	idx := indexer.NewIndexer(target.backend, indexer.Options{
		Failures:     failures,
		Metrics:      recorder,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)

	var checkpoint indexer.Checkpoint
	if cfg.CheckpointEnabled {
		checkpoint = target.checkpoint(cfg.Checkpoint)
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		NetworkPassphrase: cfg.NetworkPassphrase,
		FromLedger:        cfg.FromLedger,
		ToLedger:          cfg.ToLedger,
	}, source, idx, checkpoint, logger)

	logger.Info("indexer start",
		zap.String("in", cfg.In),
		zap.String("sink", cfg.Sink),
		zap.Uint32("from", cfg.FromLedger),
		zap.Uint32("to", cfg.ToLedger),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("failures", cfg.Failures),
	)

	return runner.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
