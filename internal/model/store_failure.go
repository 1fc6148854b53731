package model

// StoreFailure records an event whose store call failed.
type StoreFailure struct {
	Ledger     uint32 `json:"ledger"`
	TxIndex    int    `json:"tx_index"`
	EventIndex int    `json:"event_index"`
	Kind       string `json:"kind"`
	Contract   string `json:"contract"`
	Error      string `json:"error"`
}
