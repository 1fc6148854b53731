package indexer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stellar/go/xdr"
	"go.uber.org/zap"

	"governorIndexer/internal/ledger"
	"governorIndexer/internal/metrics"
	"governorIndexer/internal/model"
	"governorIndexer/internal/storage"
)

type failureCollector struct {
	items []model.StoreFailure
}

func (f *failureCollector) Write(value interface{}) error {
	f.items = append(f.items, value.(model.StoreFailure))
	return nil
}

func TestOnCloseScopesSession(t *testing.T) {
	store := &recordingStore{failOn: map[string]error{storage.OpUpdateProposalStatus: storage.ErrProposalNotFound}}
	failures := &failureCollector{}
	idx := NewIndexer(store, Options{Failures: failures, Metrics: metrics.NewRecorder()}, zap.NewNop())

	err := idx.OnClose(context.Background(), ledger.Ledger{
		Sequence: 12,
		TxProcessing: []xdr.TransactionMeta{
			sorobanMeta(proposalUpdated(contractA, 1, 2), voteCast(contractA, 1, 1, 100)),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.acquired != 1 || store.released != 1 {
		t.Fatalf("session should be acquired and released once: %d/%d", store.acquired, store.released)
	}
	if len(store.calls) != 2 {
		t.Fatalf("both events should reach the store: %+v", store.calls)
	}
	if len(failures.items) != 1 || failures.items[0].Kind != "proposal_updated" {
		t.Fatalf("failure should be logged: %+v", failures.items)
	}
}

func TestOnCloseAcquireFailure(t *testing.T) {
	store := &recordingStore{failOn: map[string]error{"acquire": errBoom}}
	idx := NewIndexer(store, Options{MaxRetries: 2, RetryBackoff: time.Millisecond}, nil)

	err := idx.OnClose(context.Background(), ledger.Ledger{
		Sequence:     12,
		TxProcessing: []xdr.TransactionMeta{sorobanMeta(voteCast(contractA, 1, 1, 100))},
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected acquire error, got %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("nothing should be written without a session")
	}
}

func TestOnCloseFinishesLedgerAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &cancelingStore{recordingStore: &recordingStore{}, cancel: cancel}
	failures := &failureCollector{}
	idx := NewIndexer(store, Options{Failures: failures}, nil)

	err := idx.OnClose(ctx, ledger.Ledger{
		Sequence: 12,
		TxProcessing: []xdr.TransactionMeta{
			sorobanMeta(voteCast(contractA, 1, 1, 100), voteCast(contractA, 1, 0, 200), voteCast(contractA, 1, 1, 300)),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Err() == nil {
		t.Fatalf("context should have been canceled by the first write")
	}
	if len(store.calls) != 3 || len(failures.items) != 0 {
		t.Fatalf("every vote of the ledger should be written: calls=%d failures=%+v", len(store.calls), failures.items)
	}
	if store.released != 1 {
		t.Fatalf("session should be released once: %d", store.released)
	}
}
