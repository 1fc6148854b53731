package model

import "github.com/stellar/go/xdr"

// Proposal is a governance proposal keyed by (Contract, ProposalNumber).
type Proposal struct {
	Contract       xdr.Hash
	ProposalNumber xdr.ScVal
	Title          xdr.ScVal
	Description    xdr.ScVal
	Action         xdr.ScVal
	Creator        xdr.ScVal
	Status         xdr.ScVal
	Ledger         uint32
}

// InitialStatus returns the status every proposal is created with.
func InitialStatus() xdr.ScVal {
	zero := xdr.Uint32(0)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &zero}
}
