package indexer

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/stellar/go/xdr"

	"governorIndexer/internal/governor"
	"governorIndexer/internal/ledger"
	"governorIndexer/internal/model"
	"governorIndexer/internal/scval"
	"governorIndexer/internal/storage"
)

// sorobanMetaVersion is the only TransactionMeta version that carries contract events.
const sorobanMetaVersion = 3

// Report summarizes one dispatched ledger.
type Report struct {
	Sequence     uint32
	Transactions int
	Events       int
	Routed       map[governor.Kind]int
	Written      map[governor.Kind]int
	Failures     []model.StoreFailure
}

type handleFunc func(ctx context.Context, store storage.StateStore, kind governor.Kind, ev governor.Event) (bool, error)

// Dispatcher walks a ledger's contract events and routes recognized ones to their decoder.
type Dispatcher struct {
	handle handleFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handle: governor.Handle}
}

// Process dispatches every event of l in order. A failing event is recorded in the
// report and never stops the rest of the ledger.
func (d *Dispatcher) Process(ctx context.Context, store storage.StateStore, l ledger.Ledger) Report {
	report := Report{
		Sequence: l.Sequence,
		Routed:   make(map[governor.Kind]int),
		Written:  make(map[governor.Kind]int),
	}

	for txIndex, meta := range l.TxProcessing {
		report.Transactions++
		for eventIndex, event := range contractEvents(meta) {
			report.Events++
			ev, kind, ok := route(event, l.Sequence)
			if !ok {
				continue
			}
			report.Routed[kind]++

			written, err := d.handleEvent(ctx, store, kind, ev)
			if err != nil {
				report.Failures = append(report.Failures, model.StoreFailure{
					Ledger:     l.Sequence,
					TxIndex:    txIndex,
					EventIndex: eventIndex,
					Kind:       kind.String(),
					Contract:   contractString(ev.Contract),
					Error:      err.Error(),
				})
				continue
			}
			if written {
				report.Written[kind]++
			}
		}
	}

	return report
}

func (d *Dispatcher) handleEvent(ctx context.Context, store storage.StateStore, kind governor.Kind, ev governor.Event) (written bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			written = false
			err = fmt.Errorf("panic handling %s: %v", kind, r)
		}
	}()
	return d.handle(ctx, store, kind, ev)
}

func contractEvents(meta xdr.TransactionMeta) []xdr.ContractEvent {
	if meta.V != sorobanMetaVersion || meta.V3 == nil {
		return nil
	}
	soroban := meta.V3.SorobanMeta
	if soroban == nil {
		return nil
	}
	return soroban.Events
}

func route(event xdr.ContractEvent, sequence uint32) (governor.Event, governor.Kind, bool) {
	// Events without a contract id cannot be attributed yet: the address cannot be
	// resolved from the hash upstream, so they are dropped.
	if event.ContractId == nil {
		return governor.Event{}, governor.KindUnrecognized, false
	}
	if event.Body.V != 0 || event.Body.V0 == nil {
		return governor.Event{}, governor.KindUnrecognized, false
	}
	body := event.Body.V0
	if len(body.Topics) == 0 {
		return governor.Event{}, governor.KindUnrecognized, false
	}

	kind := governor.Classify(body.Topics[0])
	if kind == governor.KindUnrecognized {
		return governor.Event{}, kind, false
	}

	return governor.Event{
		Contract: *event.ContractId,
		Topics:   body.Topics,
		Data:     body.Data,
		Ledger:   sequence,
	}, kind, true
}

func contractString(h xdr.Hash) string {
	if id, err := scval.ContractID(h); err == nil {
		return id
	}
	return hex.EncodeToString(h[:])
}
