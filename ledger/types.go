// Package ledger holds the access ledger state: one access record per
// (payer, name, alias), the settings record (administrator, maintainer,
// owner revenue percent, registry reference, locked balance) and the set of
// consumed payment references.
//
// All reads and writes go through a Store transaction. A failed Update
// leaves no trace.
package ledger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/bitfsorg/vanitypay-go/identity"
)

// AccessKey identifies one access grant.
type AccessKey struct {
	Payer identity.ID
	Name  string
	Alias string
}

// Encode returns the storage key: payer(20) || uvarint(len(name)) || name || alias.
func (k AccessKey) Encode() []byte {
	buf := make([]byte, 0, identity.Size+binary.MaxVarintLen64+len(k.Name)+len(k.Alias))
	buf = append(buf, k.Payer[:]...)
	buf = binary.AppendUvarint(buf, uint64(len(k.Name)))
	buf = append(buf, k.Name...)
	buf = append(buf, k.Alias...)
	return buf
}

// String renders the key for logs.
func (k AccessKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Payer, k.Name, k.Alias)
}

// DecodeKey reverses AccessKey.Encode.
func DecodeKey(b []byte) (AccessKey, error) {
	if len(b) < identity.Size+1 {
		return AccessKey{}, fmt.Errorf("%w: %d bytes", ErrInvalidKey, len(b))
	}
	var k AccessKey
	copy(k.Payer[:], b[:identity.Size])
	rest := b[identity.Size:]
	n, sz := binary.Uvarint(rest)
	if sz <= 0 || uint64(len(rest)-sz) < n {
		return AccessKey{}, fmt.Errorf("%w: bad name length", ErrInvalidKey)
	}
	rest = rest[sz:]
	k.Name = string(rest[:n])
	k.Alias = string(rest[n:])
	return k, nil
}

// AccessRecord is the proof that a key has been paid for. Its presence is
// the paid state; it is never modified or removed once written.
type AccessRecord struct {
	PaidAt    time.Time
	Amount    uint64
	Delegated bool
	// Reference identifies the payment that settled the record (e.g. a txid).
	Reference string
}

// Settings is the single configuration record of the ledger.
type Settings struct {
	Admin              identity.ID
	Maintainer         identity.ID
	OwnerRevDisPercent uint16
	Registry           string
	Locked             uint64
	Initialized        bool
}

// Tx is a ledger transaction. Write methods fail with ErrReadOnly inside View.
type Tx interface {
	// Settings returns the settings record, or the zero value if none was written.
	Settings() (Settings, error)

	// PutSettings replaces the settings record.
	PutSettings(s Settings) error

	// Record returns the access record for key or ErrRecordNotFound.
	Record(key AccessKey) (AccessRecord, error)

	// PutRecord writes a new access record. ErrRecordExists if one is present.
	PutRecord(key AccessKey, rec AccessRecord) error

	// ForEachRecord calls fn for every stored record in key order.
	ForEachRecord(fn func(AccessKey, AccessRecord) error) error

	// ReferenceOwner returns the key a payment reference settled and whether it is used.
	ReferenceOwner(ref string) (AccessKey, bool, error)

	// UseReference marks ref as consumed by key. ErrReferenceUsed if already consumed.
	UseReference(ref string, key AccessKey) error
}

// Store runs ledger transactions.
type Store interface {
	// View runs fn in a read-only transaction.
	View(fn func(Tx) error) error

	// Update runs fn in a read-write transaction. All writes are discarded
	// if fn returns an error.
	Update(fn func(Tx) error) error

	// Close releases the store.
	Close() error
}
