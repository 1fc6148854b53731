package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/stellar/go/network"
	"github.com/stellar/go/xdr"

	"governorIndexer/internal/model"
	"governorIndexer/internal/scval"
	"governorIndexer/internal/storage"
)

var (
	contractA = xdr.Hash{0x0a}
	contractB = xdr.Hash{0x0b}
	voterX    = scval.AccountAddress([32]byte{0x42})
)

func contractEvent(contract *xdr.Hash, data xdr.ScVal, topics ...xdr.ScVal) xdr.ContractEvent {
	return xdr.ContractEvent{
		ContractId: contract,
		Type:       xdr.ContractEventTypeContract,
		Body: xdr.ContractEventBody{
			V:  0,
			V0: &xdr.ContractEventV0{Topics: topics, Data: data},
		},
	}
}

func sorobanMeta(events ...xdr.ContractEvent) xdr.TransactionMeta {
	return xdr.TransactionMeta{
		V: 3,
		V3: &xdr.TransactionMetaV3{
			SorobanMeta: &xdr.SorobanTransactionMeta{Events: events},
		},
	}
}

func voteCast(contract xdr.Hash, number uint32, support uint32, amount uint64) xdr.ContractEvent {
	return contractEvent(&contract,
		scval.Vec(scval.U32(support), scval.I128(0, amount)),
		scval.Symbol("vote_cast"), scval.U32(number), voterX,
	)
}

func proposalCreated(contract xdr.Hash, number uint32) xdr.ContractEvent {
	return contractEvent(&contract,
		scval.Vec(scval.Str("Raise quorum"), scval.Str("Raise quorum to 5%"), scval.Vec(scval.Symbol("settings"))),
		scval.Symbol("proposal_created"), scval.U32(number), voterX,
	)
}

func proposalUpdated(contract xdr.Hash, number uint32, status uint32) xdr.ContractEvent {
	return contractEvent(&contract, scval.Vec(),
		scval.Symbol("proposal_updated"), scval.U32(number), scval.U32(status),
	)
}

type call struct {
	op       string
	vote     model.Vote
	proposal model.Proposal
	status   xdr.ScVal
	number   xdr.ScVal
	contract xdr.Hash
}

// recordingStore records every call in order and fails the ops listed in failOn.
type recordingStore struct {
	calls    []call
	failOn   map[string]error
	acquired int
	released int
}

func (s *recordingStore) fail(op string) error {
	if err, ok := s.failOn[op]; ok {
		return err
	}
	return nil
}

func (s *recordingStore) WriteVote(ctx context.Context, vote model.Vote) error {
	s.calls = append(s.calls, call{op: storage.OpWriteVote, vote: vote})
	return s.fail(storage.OpWriteVote)
}

func (s *recordingStore) CreateProposal(ctx context.Context, proposal model.Proposal) error {
	s.calls = append(s.calls, call{op: storage.OpCreateProposal, proposal: proposal})
	return s.fail(storage.OpCreateProposal)
}

func (s *recordingStore) UpdateProposalStatus(ctx context.Context, status xdr.ScVal, contract xdr.Hash, number xdr.ScVal) error {
	s.calls = append(s.calls, call{op: storage.OpUpdateProposalStatus, status: status, contract: contract, number: number})
	return s.fail(storage.OpUpdateProposalStatus)
}

func (s *recordingStore) Acquire(ctx context.Context) (storage.Session, error) {
	if err := s.fail("acquire"); err != nil {
		return nil, err
	}
	s.acquired++
	return recordingSession{s}, nil
}

func (s *recordingStore) Close() error { return nil }

type recordingSession struct {
	*recordingStore
}

func (s recordingSession) Release() { s.released++ }

var errBoom = errors.New("boom")

func mustU32(v xdr.ScVal) uint32 {
	n, err := scval.Uint32(v)
	if err != nil {
		panic(err)
	}
	return n
}

// cancelingStore cancels the run context as soon as the first vote is written and
// rejects any call made with a canceled context.
type cancelingStore struct {
	*recordingStore
	cancel context.CancelFunc
}

func (s *cancelingStore) Acquire(ctx context.Context) (storage.Session, error) {
	s.acquired++
	return s, nil
}

func (s *cancelingStore) Release() { s.released++ }

func (s *cancelingStore) WriteVote(ctx context.Context, vote model.Vote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.recordingStore.WriteVote(ctx, vote)
	s.cancel()
	return err
}

type appliedTx struct {
	envelope xdr.TransactionEnvelope
	meta     xdr.TransactionMeta
}

func testEnvelope(seq int64) xdr.TransactionEnvelope {
	source := xdr.Uint256{0x01}
	return xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeEnvelopeTypeTx,
		V1: &xdr.TransactionV1Envelope{
			Tx: xdr.Transaction{
				SourceAccount: xdr.MuxedAccount{Type: xdr.CryptoKeyTypeKeyTypeEd25519, Ed25519: &source},
				Fee:           100,
				SeqNum:        xdr.SequenceNumber(seq),
			},
		},
	}
}

// closedLedger builds a V1 close meta on the test network with txs applied in the given order.
func closedLedger(t *testing.T, sequence uint32, applied ...appliedTx) xdr.LedgerCloseMeta {
	t.Helper()

	var envelopes []xdr.TransactionEnvelope
	var processing []xdr.TransactionResultMeta
	for _, tx := range applied {
		hash, err := network.HashTransactionInEnvelope(tx.envelope, network.TestNetworkPassphrase)
		if err != nil {
			t.Fatalf("hash envelope: %v", err)
		}
		envelopes = append(envelopes, tx.envelope)
		processing = append(processing, xdr.TransactionResultMeta{
			Result:            xdr.TransactionResultPair{TransactionHash: xdr.Hash(hash)},
			TxApplyProcessing: tx.meta,
		})
	}

	components := []xdr.TxSetComponent{{
		Type:                  xdr.TxSetComponentTypeTxsetCompTxsMaybeDiscountedFee,
		TxsMaybeDiscountedFee: &xdr.TxSetComponentTxsMaybeDiscountedFee{Txs: envelopes},
	}}
	return xdr.LedgerCloseMeta{
		V: 1,
		V1: &xdr.LedgerCloseMetaV1{
			LedgerHeader: xdr.LedgerHeaderHistoryEntry{
				Header: xdr.LedgerHeader{LedgerSeq: xdr.Uint32(sequence), LedgerVersion: 20},
			},
			TxSet: xdr.GeneralizedTransactionSet{
				V: 1,
				V1TxSet: &xdr.TransactionSetV1{
					Phases: []xdr.TransactionPhase{{V: 0, V0Components: &components}},
				},
			},
			TxProcessing: processing,
		},
	}
}
