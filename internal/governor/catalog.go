package governor

import (
	"github.com/stellar/go/xdr"

	"governorIndexer/internal/scval"
)

// Kind identifies a recognized governor event.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindVoteCast
	KindProposalCreated
	KindProposalUpdated

	numKinds
)

// Kinds lists the recognized kinds in catalog order.
var Kinds = []Kind{KindVoteCast, KindProposalCreated, KindProposalUpdated}

var kindSymbols = map[Kind]string{
	KindVoteCast:        "vote_cast",
	KindProposalCreated: "proposal_created",
	KindProposalUpdated: "proposal_updated",
}

func (k Kind) String() string {
	if sym, ok := kindSymbols[k]; ok {
		return sym
	}
	return "unrecognized"
}

// catalog maps the XDR encoding of each discriminator symbol to its kind.
// Lookups compare encoded bytes so topics never need to be decoded to strings.
// identifiers holds the same encodings indexed by kind.
var catalog, identifiers = buildCatalog()

func buildCatalog() (map[string]Kind, [numKinds][]byte) {
	var ids [numKinds][]byte
	out := make(map[string]Kind, len(kindSymbols))
	for kind, sym := range kindSymbols {
		encoded, err := scval.Symbol(sym).MarshalBinary()
		if err != nil {
			panic("encode catalog symbol " + sym + ": " + err.Error())
		}
		out[string(encoded)] = kind
		ids[kind] = encoded
	}
	return out, ids
}

// identifier returns the encoded discriminator for a kind, or nil for KindUnrecognized.
func identifier(kind Kind) []byte {
	if kind <= KindUnrecognized || kind >= numKinds {
		return nil
	}
	return identifiers[kind]
}

// Classify encodes topic0 once and matches it against the catalog. A value that
// cannot be encoded is KindUnrecognized.
func Classify(topic0 xdr.ScVal) (kind Kind) {
	defer func() {
		if recover() != nil {
			kind = KindUnrecognized
		}
	}()

	encoded, err := topic0.MarshalBinary()
	if err != nil {
		return KindUnrecognized
	}
	if kind, ok := catalog[string(encoded)]; ok {
		return kind
	}
	return KindUnrecognized
}
