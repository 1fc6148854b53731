package storage

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stellar/go/xdr"

	"governorIndexer/internal/model"
	"governorIndexer/internal/scval"
)

// VoteRow converts a vote to its column form and assigns it a fresh row id.
func VoteRow(vote model.Vote) (model.VoteRow, error) {
	contract, err := scval.ContractID(vote.Contract)
	if err != nil {
		return model.VoteRow{}, fmt.Errorf("contract: %w", err)
	}
	number, err := scval.Uint32(vote.ProposalNumber)
	if err != nil {
		return model.VoteRow{}, fmt.Errorf("proposal number: %w", err)
	}
	voter, err := scval.Address(vote.Voter)
	if err != nil {
		return model.VoteRow{}, fmt.Errorf("voter: %w", err)
	}
	support, err := scval.Uint32(vote.Support)
	if err != nil {
		return model.VoteRow{}, fmt.Errorf("support: %w", err)
	}
	amount, err := scval.Int128(vote.Amount)
	if err != nil {
		return model.VoteRow{}, fmt.Errorf("amount: %w", err)
	}

	return model.VoteRow{
		ID:             uuid.NewString(),
		Contract:       contract,
		ProposalNumber: number,
		Voter:          voter,
		Support:        support,
		Amount:         amount.String(),
		Ledger:         vote.Ledger,
	}, nil
}

// ProposalRow converts a proposal to its column form. The status is always written as 0.
func ProposalRow(proposal model.Proposal) (model.ProposalRow, error) {
	contract, err := scval.ContractID(proposal.Contract)
	if err != nil {
		return model.ProposalRow{}, fmt.Errorf("contract: %w", err)
	}
	number, err := scval.Uint32(proposal.ProposalNumber)
	if err != nil {
		return model.ProposalRow{}, fmt.Errorf("proposal number: %w", err)
	}
	title, err := scval.String(proposal.Title)
	if err != nil {
		return model.ProposalRow{}, fmt.Errorf("title: %w", err)
	}
	desc, err := scval.String(proposal.Description)
	if err != nil {
		return model.ProposalRow{}, fmt.Errorf("description: %w", err)
	}
	action, err := scval.Raw(proposal.Action)
	if err != nil {
		return model.ProposalRow{}, fmt.Errorf("action: %w", err)
	}
	creator, err := scval.Address(proposal.Creator)
	if err != nil {
		return model.ProposalRow{}, fmt.Errorf("creator: %w", err)
	}

	return model.ProposalRow{
		Contract:       contract,
		ProposalNumber: number,
		Title:          title,
		Description:    desc,
		Action:         action,
		Creator:        creator,
		Status:         0,
		Ledger:         proposal.Ledger,
	}, nil
}

// StatusUpdateRow converts a status change to its column form.
func StatusUpdateRow(status xdr.ScVal, contract xdr.Hash, proposalNumber xdr.ScVal) (model.StatusUpdate, error) {
	id, err := scval.ContractID(contract)
	if err != nil {
		return model.StatusUpdate{}, fmt.Errorf("contract: %w", err)
	}
	number, err := scval.Uint32(proposalNumber)
	if err != nil {
		return model.StatusUpdate{}, fmt.Errorf("proposal number: %w", err)
	}
	value, err := scval.Uint32(status)
	if err != nil {
		return model.StatusUpdate{}, fmt.Errorf("status: %w", err)
	}
	return model.StatusUpdate{Contract: id, ProposalNumber: number, Status: value}, nil
}
