package ledger

import (
	"errors"
	"fmt"
	"io"

	"github.com/stellar/go/ingest"
	"github.com/stellar/go/xdr"
)

// Ledger is one closed ledger as handed to the indexer: its sequence and the
// apply-processing meta of every transaction, in application order.
type Ledger struct {
	Sequence     uint32
	TxProcessing []xdr.TransactionMeta
}

// FromCloseMeta reads the transactions of a closed ledger in application order.
func FromCloseMeta(networkPassphrase string, lcm xdr.LedgerCloseMeta) (Ledger, error) {
	reader, err := ingest.NewLedgerTransactionReaderFromLedgerCloseMeta(networkPassphrase, lcm)
	if err != nil {
		return Ledger{}, fmt.Errorf("open transaction reader: %w", err)
	}
	defer reader.Close()

	out := Ledger{Sequence: lcm.LedgerSequence()}
	for {
		tx, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Ledger{}, fmt.Errorf("read transaction: %w", err)
		}
		out.TxProcessing = append(out.TxProcessing, tx.UnsafeMeta)
	}
	return out, nil
}
