package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"governorIndexer/internal/governor"
	"governorIndexer/internal/ledger"
	"governorIndexer/internal/metrics"
	"governorIndexer/internal/storage"
)

// FailureLog receives store failures for later inspection.
type FailureLog interface {
	Write(value interface{}) error
}

// Options configures an Indexer. Zero values disable the optional parts.
type Options struct {
	Failures     FailureLog
	Metrics      *metrics.Recorder
	MaxRetries   int
	RetryBackoff time.Duration
}

// Indexer is the per-ledger entry point.
type Indexer struct {
	backend    storage.Backend
	dispatcher *Dispatcher
	retry      retryPolicy
	opts       Options
	logger     *zap.Logger
}

func NewIndexer(backend storage.Backend, opts Options, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		backend:    backend,
		dispatcher: NewDispatcher(),
		retry:      newRetryPolicy(opts.MaxRetries, opts.RetryBackoff),
		opts:       opts,
		logger:     logger,
	}
}

// OnClose processes one closed ledger. It acquires a single store session for the
// whole ledger and releases it before returning. Per-event failures are reported and
// never returned; the only error is failing to acquire the session, in which case
// nothing was written and the ledger can be retried.
//
// Cancellation of ctx is honoured only until the session is granted. Once dispatch
// starts, every event of the ledger is handed to the store.
func (i *Indexer) OnClose(ctx context.Context, l ledger.Ledger) error {
	session, err := i.retry.acquire(ctx, i.backend, func(attempt int, err error) {
		i.logger.Warn("acquire store failed",
			zap.Uint32("ledger", l.Sequence),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	})
	if err != nil {
		return fmt.Errorf("acquire store for ledger %d: %w", l.Sequence, err)
	}

	start := time.Now()
	report := i.dispatcher.Process(context.WithoutCancel(ctx), session, l)
	session.Release()

	i.record(report, time.Since(start))
	return nil
}

func (i *Indexer) record(report Report, took time.Duration) {
	for _, failure := range report.Failures {
		i.logger.Warn("store write failed",
			zap.Uint32("ledger", failure.Ledger),
			zap.Int("tx_index", failure.TxIndex),
			zap.Int("event_index", failure.EventIndex),
			zap.String("kind", failure.Kind),
			zap.String("contract", failure.Contract),
			zap.String("error", failure.Error),
		)
		if i.opts.Failures != nil {
			if err := i.opts.Failures.Write(failure); err != nil {
				i.logger.Error("write failure log", zap.Error(err))
			}
		}
		i.opts.Metrics.StoreFailed(failure.Kind)
	}

	for _, kind := range governor.Kinds {
		i.opts.Metrics.EventsRouted(kind.String(), report.Routed[kind])
		i.opts.Metrics.RecordsWritten(kind.String(), report.Written[kind])
	}
	i.opts.Metrics.LedgerProcessed(report.Sequence, took)

	i.logger.Info("ledger complete",
		zap.Uint32("ledger", report.Sequence),
		zap.Int("transactions", report.Transactions),
		zap.Int("events", report.Events),
		zap.Int("votes", report.Written[governor.KindVoteCast]),
		zap.Int("proposals_created", report.Written[governor.KindProposalCreated]),
		zap.Int("proposals_updated", report.Written[governor.KindProposalUpdated]),
		zap.Int("failures", len(report.Failures)),
	)
}
