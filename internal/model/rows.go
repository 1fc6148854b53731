package model

// VoteRow is the persisted form of a Vote.
type VoteRow struct {
	ID             string `json:"id"`
	Contract       string `json:"contract"`
	ProposalNumber uint32 `json:"proposal_number"`
	Voter          string `json:"voter"`
	Support        uint32 `json:"support"`
	Amount         string `json:"amount"`
	Ledger         uint32 `json:"ledger"`
}

// ProposalRow is the persisted form of a Proposal. Action is base64 XDR.
type ProposalRow struct {
	Contract       string `json:"contract"`
	ProposalNumber uint32 `json:"proposal_number"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Action         string `json:"action"`
	Creator        string `json:"creator"`
	Status         uint32 `json:"status"`
	Ledger         uint32 `json:"ledger"`
}

// StatusUpdate is the persisted form of a proposal status change.
type StatusUpdate struct {
	Contract       string `json:"contract"`
	ProposalNumber uint32 `json:"proposal_number"`
	Status         uint32 `json:"status"`
}
