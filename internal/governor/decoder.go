package governor

import (
	"context"
	"fmt"

	"github.com/stellar/go/xdr"

	"governorIndexer/internal/model"
	"governorIndexer/internal/storage"
)

// Event is a contract event that already passed dispatch filtering.
type Event struct {
	Contract xdr.Hash
	Topics   []xdr.ScVal
	Data     xdr.ScVal
	Ledger   uint32
}

// Handle decodes ev according to kind and issues exactly one store call on success.
// A declined decode returns (false, nil).
func Handle(ctx context.Context, store storage.StateStore, kind Kind, ev Event) (bool, error) {
	switch kind {
	case KindVoteCast:
		vote, ok := DecodeVoteCast(ev)
		if !ok {
			return false, nil
		}
		if err := store.WriteVote(ctx, vote); err != nil {
			return false, fmt.Errorf("write vote: %w", err)
		}
		return true, nil
	case KindProposalCreated:
		proposal, ok := DecodeProposalCreated(ev)
		if !ok {
			return false, nil
		}
		if err := store.CreateProposal(ctx, proposal); err != nil {
			return false, fmt.Errorf("create proposal: %w", err)
		}
		return true, nil
	case KindProposalUpdated:
		status, number, ok := DecodeProposalUpdated(ev)
		if !ok {
			return false, nil
		}
		if err := store.UpdateProposalStatus(ctx, status, ev.Contract, number); err != nil {
			return false, fmt.Errorf("update proposal status: %w", err)
		}
		return true, nil
	default:
		return false, nil
	}
}

// DecodeVoteCast extracts a vote.
//
//	topics: ["vote_cast", proposal_number: u32, voter: address]
//	data:   [support: u32, amount: i128]
func DecodeVoteCast(ev Event) (model.Vote, bool) {
	number, ok := topicAt(ev, 1)
	if !ok {
		return model.Vote{}, false
	}
	voter, ok := topicAt(ev, 2)
	if !ok {
		return model.Vote{}, false
	}
	data, ok := dataVec(ev)
	if !ok {
		return model.Vote{}, false
	}
	support, ok := at(data, 0)
	if !ok {
		return model.Vote{}, false
	}
	amount, ok := at(data, 1)
	if !ok {
		return model.Vote{}, false
	}

	return model.Vote{
		Contract:       ev.Contract,
		ProposalNumber: number,
		Voter:          voter,
		Support:        support,
		Amount:         amount,
		Ledger:         ev.Ledger,
	}, true
}

// DecodeProposalCreated extracts a new proposal. Status is always the initial status.
//
//	topics: ["proposal_created", proposal_number: u32, proposer: address]
//	data:   [title: string, description: string, action: any]
func DecodeProposalCreated(ev Event) (model.Proposal, bool) {
	number, ok := topicAt(ev, 1)
	if !ok {
		return model.Proposal{}, false
	}
	proposer, ok := topicAt(ev, 2)
	if !ok {
		return model.Proposal{}, false
	}
	data, ok := dataVec(ev)
	if !ok {
		return model.Proposal{}, false
	}
	title, ok := at(data, 0)
	if !ok {
		return model.Proposal{}, false
	}
	desc, ok := at(data, 1)
	if !ok {
		return model.Proposal{}, false
	}
	action, ok := at(data, 2)
	if !ok {
		return model.Proposal{}, false
	}

	return model.Proposal{
		Contract:       ev.Contract,
		ProposalNumber: number,
		Title:          title,
		Description:    desc,
		Action:         action,
		Creator:        proposer,
		Status:         model.InitialStatus(),
		Ledger:         ev.Ledger,
	}, true
}

// DecodeProposalUpdated extracts a status change. The data payload is ignored.
//
//	topics: ["proposal_updated", proposal_number: u32, status: u32]
func DecodeProposalUpdated(ev Event) (status xdr.ScVal, number xdr.ScVal, ok bool) {
	number, ok = topicAt(ev, 1)
	if !ok {
		return xdr.ScVal{}, xdr.ScVal{}, false
	}
	status, ok = topicAt(ev, 2)
	if !ok {
		return xdr.ScVal{}, xdr.ScVal{}, false
	}
	return status, number, true
}

func topicAt(ev Event, i int) (xdr.ScVal, bool) {
	return at(ev.Topics, i)
}

func dataVec(ev Event) ([]xdr.ScVal, bool) {
	if ev.Data.Type != xdr.ScValTypeScvVec || ev.Data.Vec == nil || *ev.Data.Vec == nil {
		return nil, false
	}
	return **ev.Data.Vec, true
}

func at(values []xdr.ScVal, i int) (xdr.ScVal, bool) {
	if i < 0 || i >= len(values) {
		return xdr.ScVal{}, false
	}
	return values[i], true
}
