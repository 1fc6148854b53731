package model

import "github.com/stellar/go/xdr"

// Vote is one cast vote as observed on-chain. Values are kept in their wire form;
// the store converts them to column types.
type Vote struct {
	Contract       xdr.Hash
	ProposalNumber xdr.ScVal
	Voter          xdr.ScVal
	Support        xdr.ScVal
	Amount         xdr.ScVal
	Ledger         uint32
}
