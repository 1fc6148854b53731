package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stellar/go/xdr"

	"governorIndexer/internal/model"
	"governorIndexer/internal/scval"
	"governorIndexer/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	dsn := os.Getenv("GOVERNOR_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("GOVERNOR_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestStoreProposalLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Contract id varies by process so reruns start from an empty key.
	var contract xdr.Hash
	copy(contract[:], []byte(t.Name()))
	contract[31] = byte(os.Getpid())

	session, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer session.Release()

	err = session.UpdateProposalStatus(ctx, scval.U32(2), contract, scval.U32(1))
	if !errors.Is(err, storage.ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound, got %v", err)
	}

	proposal := model.Proposal{
		Contract:       contract,
		ProposalNumber: scval.U32(1),
		Title:          scval.Str("title"),
		Description:    scval.Str("description"),
		Action:         scval.Vec(),
		Creator:        scval.ContractAddress(contract),
		Status:         model.InitialStatus(),
		Ledger:         10,
	}
	if err := session.CreateProposal(ctx, proposal); err != nil && !errors.Is(err, storage.ErrProposalExists) {
		t.Fatalf("create proposal: %v", err)
	}
	if err := session.UpdateProposalStatus(ctx, scval.U32(2), contract, scval.U32(1)); err != nil {
		t.Fatalf("update status: %v", err)
	}

	vote := model.Vote{
		Contract:       contract,
		ProposalNumber: scval.U32(1),
		Voter:          scval.AccountAddress([32]byte{1}),
		Support:        scval.U32(1),
		Amount:         scval.I128(0, 1000000000000),
		Ledger:         11,
	}
	if err := session.WriteVote(ctx, vote); err != nil {
		t.Fatalf("write vote: %v", err)
	}
}

func TestStoreState(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveState(ctx, "test:"+t.Name(), 123); err != nil {
		t.Fatalf("save state: %v", err)
	}
	ledger, ok, err := store.LoadState(ctx, "test:"+t.Name())
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if !ok || ledger != 123 {
		t.Fatalf("state mismatch: %d %v", ledger, ok)
	}
}
