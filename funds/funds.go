// Package funds moves value out of the ledger: forwarded donations and
// withdrawals of the locked balance.
package funds

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/bitfsorg/vanitypay-go/identity"
)

// SatoshisPerBSV is the number of minor units in one BSV.
const SatoshisPerBSV = 100_000_000

// Transferer sends amount minor units to a recipient and returns a
// reference for the transfer (a txid for on-chain transfers).
type Transferer interface {
	Transfer(ctx context.Context, to identity.ID, amount uint64) (string, error)
}

// TransfererFunc adapts a function to Transferer.
type TransfererFunc func(ctx context.Context, to identity.ID, amount uint64) (string, error)

// Transfer calls f(ctx, to, amount).
func (f TransfererFunc) Transfer(ctx context.Context, to identity.ID, amount uint64) (string, error) {
	return f(ctx, to, amount)
}

// FormatBSV renders satoshis as a fixed 8-decimal BSV amount.
func FormatBSV(sat uint64) string {
	return strconv.FormatUint(sat/SatoshisPerBSV, 10) + "." + fmt.Sprintf("%08d", sat%SatoshisPerBSV)
}

func checkTransfer(to identity.ID, amount uint64) error {
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MemBank is an in-memory Transferer that credits balances per identity.
// Recipients can be marked as rejecting to exercise failure paths.
type MemBank struct {
	mu        sync.Mutex
	balances  map[identity.ID]uint64
	rejecting map[identity.ID]bool
	seq       uint64
}

var _ Transferer = (*MemBank)(nil)

// NewMemBank creates an empty bank.
func NewMemBank() *MemBank {
	return &MemBank{
		balances:  make(map[identity.ID]uint64),
		rejecting: make(map[identity.ID]bool),
	}
}

// Reject makes every future transfer to id fail (or succeed again if reject is false).
func (b *MemBank) Reject(id identity.ID, reject bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejecting[id] = reject
}

// Balance returns the total credited to id.
func (b *MemBank) Balance(id identity.ID) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[id]
}

// Transfer implements Transferer.
func (b *MemBank) Transfer(ctx context.Context, to identity.ID, amount uint64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkTransfer(to, amount); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rejecting[to] {
		return "", fmt.Errorf("%w: %s", ErrRecipientRejected, to)
	}
	if b.balances[to]+amount < amount {
		return "", fmt.Errorf("%w: balance overflow", ErrRecipientRejected)
	}
	b.balances[to] += amount
	b.seq++
	return fmt.Sprintf("mem-%d", b.seq), nil
}
