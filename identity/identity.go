// Package identity defines the caller identities used by the access ledger.
//
// An identity is the HASH160 of a compressed secp256k1 public key, the same
// 20 bytes that appear in a P2PKH address. Payers, name owners, the
// maintainer and the administrator are all identities.
package identity

import (
	"encoding/hex"
	"fmt"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"
)

// Size is the byte length of an identity.
const Size = 20

// ID is a public key hash identifying a ledger participant.
type ID [Size]byte

// Zero is the unset identity.
var Zero ID

// FromPublicKey returns the identity of a public key.
func FromPublicKey(pub *ec.PublicKey) (ID, error) {
	if pub == nil {
		return Zero, fmt.Errorf("%w: nil public key", ErrInvalidPubKey)
	}
	var id ID
	copy(id[:], bsvhash.Hash160(pub.Compressed()))
	return id, nil
}

// FromPubKeyHex parses a hex-encoded compressed public key and returns its identity.
func FromPubKeyHex(s string) (ID, *ec.PublicKey, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return Zero, nil, fmt.Errorf("%w: %w", ErrInvalidPubKey, err)
	}
	if len(b) != 33 {
		return Zero, nil, fmt.Errorf("%w: expected 33 bytes, got %d", ErrInvalidPubKey, len(b))
	}
	pub, err := ec.PublicKeyFromBytes(b)
	if err != nil {
		return Zero, nil, fmt.Errorf("%w: %w", ErrInvalidPubKey, err)
	}
	id, err := FromPublicKey(pub)
	if err != nil {
		return Zero, nil, err
	}
	return id, pub, nil
}

// ParseHex decodes a 40-character hex identity.
func ParseHex(s string) (ID, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	if len(b) != Size {
		return Zero, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidID, Size, len(b))
	}
	var id ID
	copy(id[:], b)
	return id, nil
}

// ParseAddress decodes a base58 P2PKH address into its identity.
func ParseAddress(addr string) (ID, error) {
	a, err := script.NewAddressFromString(strings.TrimSpace(addr))
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	pkh := []byte(a.PublicKeyHash)
	if len(pkh) != Size {
		return Zero, fmt.Errorf("%w: public key hash must be %d bytes", ErrInvalidAddress, Size)
	}
	var id ID
	copy(id[:], pkh)
	return id, nil
}

// Parse accepts either a hex identity or a P2PKH address.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if len(s) == 2*Size {
		if id, err := ParseHex(s); err == nil {
			return id, nil
		}
	}
	return ParseAddress(s)
}

// Address renders the identity as a P2PKH address for the given network.
func (id ID) Address(mainnet bool) (string, error) {
	a, err := script.NewAddressFromPublicKeyHash(id[:], mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return a.AddressString, nil
}

// IsZero reports whether the identity is unset.
func (id ID) IsZero() bool { return id == Zero }

// String returns the hex encoding of the identity.
func (id ID) String() string { return hex.EncodeToString(id[:]) }

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Both hex identities
// and addresses are accepted.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
