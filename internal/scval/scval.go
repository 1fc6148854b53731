package scval

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// ErrTypeMismatch is returned when a value does not carry the expected type.
var ErrTypeMismatch = errors.New("scval type mismatch")

// Uint32 extracts a u32 value.
func Uint32(v xdr.ScVal) (uint32, error) {
	if v.Type != xdr.ScValTypeScvU32 || v.U32 == nil {
		return 0, mismatch("u32", v)
	}
	return uint32(*v.U32), nil
}

// String extracts a string value.
func String(v xdr.ScVal) (string, error) {
	if v.Type != xdr.ScValTypeScvString || v.Str == nil {
		return "", mismatch("string", v)
	}
	return string(*v.Str), nil
}

// Int128 extracts a signed 128-bit value as a big.Int.
func Int128(v xdr.ScVal) (*big.Int, error) {
	if v.Type != xdr.ScValTypeScvI128 || v.I128 == nil {
		return nil, mismatch("i128", v)
	}
	out := new(big.Int).Lsh(big.NewInt(int64(v.I128.Hi)), 64)
	return out.Add(out, new(big.Int).SetUint64(uint64(v.I128.Lo))), nil
}

// Address extracts an address value in strkey form (G... for accounts, C... for contracts).
func Address(v xdr.ScVal) (string, error) {
	if v.Type != xdr.ScValTypeScvAddress || v.Address == nil {
		return "", mismatch("address", v)
	}
	addr := v.Address
	switch addr.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		if addr.AccountId == nil || addr.AccountId.Ed25519 == nil {
			return "", fmt.Errorf("account address: %w", ErrTypeMismatch)
		}
		raw := *addr.AccountId.Ed25519
		return strkey.Encode(strkey.VersionByteAccountID, raw[:])
	case xdr.ScAddressTypeScAddressTypeContract:
		if addr.ContractId == nil {
			return "", fmt.Errorf("contract address: %w", ErrTypeMismatch)
		}
		return ContractID(*addr.ContractId)
	default:
		return "", fmt.Errorf("address type %d: %w", addr.Type, ErrTypeMismatch)
	}
}

// ContractID encodes a contract hash in strkey form.
func ContractID(h xdr.Hash) (string, error) {
	return strkey.Encode(strkey.VersionByteContract, h[:])
}

// Raw encodes any value as base64 XDR. Used for payloads that are stored opaquely.
func Raw(v xdr.ScVal) (string, error) {
	return xdr.MarshalBase64(v)
}

func mismatch(want string, v xdr.ScVal) error {
	return fmt.Errorf("want %s, got %s: %w", want, v.Type.String(), ErrTypeMismatch)
}
