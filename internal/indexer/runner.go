package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"governorIndexer/internal/ledger"
)

// RunConfig holds runtime settings for the runner.
type RunConfig struct {
	NetworkPassphrase string
	FromLedger        uint32
	ToLedger          uint32
}

// Runner feeds closed ledgers from a source to the indexer, one at a time and in order.
type Runner struct {
	cfg        RunConfig
	source     ledger.Source
	indexer    *Indexer
	checkpoint Checkpoint
	logger     *zap.Logger
}

// NewRunner builds a Runner. checkpoint may be nil.
func NewRunner(cfg RunConfig, source ledger.Source, indexer *Indexer, checkpoint Checkpoint, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		source:     source,
		indexer:    indexer,
		checkpoint: checkpoint,
		logger:     logger,
	}
}

// Run processes ledgers until the source is exhausted, ToLedger is passed, or ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("ledger source is nil")
	}
	if r.indexer == nil {
		return fmt.Errorf("indexer is nil")
	}
	if r.cfg.ToLedger != 0 && r.cfg.ToLedger < r.cfg.FromLedger {
		return fmt.Errorf("to ledger must be >= from ledger")
	}

	from := r.cfg.FromLedger
	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint32("last_processed", last), zap.Uint32("from", from))
		}
	}

	var processed int
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lcm, err := r.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		sequence := lcm.LedgerSequence()
		if sequence < from {
			continue
		}
		if r.cfg.ToLedger != 0 && sequence > r.cfg.ToLedger {
			break
		}

		l, err := ledger.FromCloseMeta(r.cfg.NetworkPassphrase, lcm)
		if err != nil {
			return fmt.Errorf("ledger %d: %w", sequence, err)
		}
		if err := r.indexer.OnClose(ctx, l); err != nil {
			return err
		}
		processed++

		// The ledger is fully written at this point, so record it even if ctx was
		// canceled while it ran.
		if r.checkpoint != nil {
			if err := r.checkpoint.Save(context.WithoutCancel(ctx), sequence); err != nil {
				return fmt.Errorf("save checkpoint: %w", err)
			}
		}
	}

	r.logger.Info("run complete", zap.Int("ledgers", processed))
	return nil
}
