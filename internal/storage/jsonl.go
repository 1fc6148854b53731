package storage

import (
	"context"

	"github.com/stellar/go/xdr"

	"governorIndexer/internal/model"
)

// Operation names written by JSONLStore.
const (
	OpWriteVote            = "write_vote"
	OpCreateProposal       = "create_proposal"
	OpUpdateProposalStatus = "update_proposal_status"
)

// JournalEntry is one line of a JSONL journal.
type JournalEntry struct {
	Op       string              `json:"op"`
	Vote     *model.VoteRow      `json:"vote,omitempty"`
	Proposal *model.ProposalRow  `json:"proposal,omitempty"`
	Status   *model.StatusUpdate `json:"status,omitempty"`
}

// JSONLStore journals store calls to a JSONL file instead of a database.
// It does not track proposals, so status updates are never rejected.
type JSONLStore struct {
	out *JSONLWriter
}

func NewJSONLStore(path string) (*JSONLStore, error) {
	out, err := NewJSONLWriter(path, true)
	if err != nil {
		return nil, err
	}
	return &JSONLStore{out: out}, nil
}

func (s *JSONLStore) Acquire(ctx context.Context) (Session, error) {
	return jsonlSession{s}, nil
}

func (s *JSONLStore) Close() error {
	return s.out.Close()
}

func (s *JSONLStore) WriteVote(ctx context.Context, vote model.Vote) error {
	row, err := VoteRow(vote)
	if err != nil {
		return err
	}
	return s.out.Write(JournalEntry{Op: OpWriteVote, Vote: &row})
}

func (s *JSONLStore) CreateProposal(ctx context.Context, proposal model.Proposal) error {
	row, err := ProposalRow(proposal)
	if err != nil {
		return err
	}
	return s.out.Write(JournalEntry{Op: OpCreateProposal, Proposal: &row})
}

func (s *JSONLStore) UpdateProposalStatus(ctx context.Context, status xdr.ScVal, contract xdr.Hash, proposalNumber xdr.ScVal) error {
	update, err := StatusUpdateRow(status, contract, proposalNumber)
	if err != nil {
		return err
	}
	return s.out.Write(JournalEntry{Op: OpUpdateProposalStatus, Status: &update})
}

type jsonlSession struct {
	*JSONLStore
}

// Release flushes the journal so each ledger's entries land on disk together.
func (s jsonlSession) Release() {
	_ = s.out.Flush()
}
