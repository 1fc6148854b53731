package storage

import (
	"context"
	"errors"

	"github.com/stellar/go/xdr"

	"governorIndexer/internal/model"
)

var (
	// ErrProposalNotFound is returned by UpdateProposalStatus when no proposal matches the key.
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrProposalExists is returned by CreateProposal when the key is already taken.
	ErrProposalExists = errors.New("proposal already exists")
)

// StateStore persists governance records.
type StateStore interface {
	WriteVote(ctx context.Context, vote model.Vote) error
	CreateProposal(ctx context.Context, proposal model.Proposal) error
	UpdateProposalStatus(ctx context.Context, status xdr.ScVal, contract xdr.Hash, proposalNumber xdr.ScVal) error
}

// Session is a StateStore handle scoped to one ledger.
type Session interface {
	StateStore
	Release()
}

// Backend hands out sessions.
type Backend interface {
	Acquire(ctx context.Context) (Session, error)
	Close() error
}
