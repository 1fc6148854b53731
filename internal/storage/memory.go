package storage

import (
	"context"
	"sync"

	"github.com/stellar/go/xdr"

	"governorIndexer/internal/model"
)

type proposalKey struct {
	contract string
	number   uint32
}

// MemoryStore keeps rows in memory. Rows are converted exactly as the SQL backends
// convert them, so type errors surface the same way.
type MemoryStore struct {
	mu        sync.RWMutex
	votes     []model.VoteRow
	proposals map[proposalKey]model.ProposalRow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{proposals: make(map[proposalKey]model.ProposalRow)}
}

// Acquire returns a session backed by the store.
func (s *MemoryStore) Acquire(ctx context.Context) (Session, error) {
	return memorySession{s}, nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) WriteVote(ctx context.Context, vote model.Vote) error {
	row, err := VoteRow(vote)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = append(s.votes, row)
	return nil
}

func (s *MemoryStore) CreateProposal(ctx context.Context, proposal model.Proposal) error {
	row, err := ProposalRow(proposal)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := proposalKey{row.Contract, row.ProposalNumber}
	if _, exists := s.proposals[key]; exists {
		return ErrProposalExists
	}
	s.proposals[key] = row
	return nil
}

func (s *MemoryStore) UpdateProposalStatus(ctx context.Context, status xdr.ScVal, contract xdr.Hash, proposalNumber xdr.ScVal) error {
	update, err := StatusUpdateRow(status, contract, proposalNumber)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := proposalKey{update.Contract, update.ProposalNumber}
	row, exists := s.proposals[key]
	if !exists {
		return ErrProposalNotFound
	}
	row.Status = update.Status
	s.proposals[key] = row
	return nil
}

// Votes returns a copy of all vote rows in insertion order.
func (s *MemoryStore) Votes() []model.VoteRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.VoteRow, len(s.votes))
	copy(out, s.votes)
	return out
}

// Proposal returns the proposal row for a key.
func (s *MemoryStore) Proposal(contract string, number uint32) (model.ProposalRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.proposals[proposalKey{contract, number}]
	return row, ok
}

type memorySession struct {
	*MemoryStore
}

func (memorySession) Release() {}
