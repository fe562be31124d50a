// Package paywall puts alias content behind HTTP 402 Payment Required.
//
// Unpaid requests receive an invoice in response headers. Callers pay with
// a BSV transaction that commits to their identity and the invoice ID in an
// OP_RETURN output, posted in a signed request to the payment endpoint. The
// gate broadcasts the transaction through its node and records the payment
// in the access ledger only once the node accepts it. Signed requests from
// the payer then pass through to the content handler.
package paywall

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// MaxOpenInvoices bounds how many unpaid invoices a gate remembers.
const MaxOpenInvoices = 10_000

// Invoice is a payment request for one alias.
type Invoice struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Alias  string `json:"alias"`
	Price  uint64 `json:"price"`  // satoshis
	PayTo  string `json:"pay_to"` // BSV address for payment
	Expiry int64  `json:"expiry"` // unix seconds
}

// NewInvoice creates an invoice for name/alias at price, payable to payTo
// and valid for ttl from now.
func NewInvoice(name, alias string, price uint64, payTo string, ttl time.Duration, now time.Time) *Invoice {
	return &Invoice{
		ID:     generateInvoiceID(now),
		Name:   name,
		Alias:  alias,
		Price:  price,
		PayTo:  payTo,
		Expiry: now.Add(ttl).Unix(),
	}
}

// IsExpired reports whether the invoice has passed its expiry time at now.
func (inv *Invoice) IsExpired(now time.Time) bool {
	return now.Unix() > inv.Expiry
}

// generateInvoiceID creates a random 16-byte hex-encoded invoice ID.
func generateInvoiceID(now time.Time) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("inv-%d", now.UnixNano())
	}
	return hex.EncodeToString(b)
}

// invoiceBook holds the invoices a gate has issued until they are paid.
type invoiceBook struct {
	mu    sync.Mutex
	open  map[string]*Invoice
	limit int
}

func newInvoiceBook(limit int) *invoiceBook {
	return &invoiceBook{open: make(map[string]*Invoice), limit: limit}
}

// issue remembers inv. Expired invoices are dropped only when the book is full.
func (b *invoiceBook) issue(inv *Invoice, now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.open) >= b.limit {
		for id, old := range b.open {
			if old.IsExpired(now) {
				delete(b.open, id)
			}
		}
		if len(b.open) >= b.limit {
			return ErrTooManyInvoices
		}
	}
	b.open[inv.ID] = inv
	return nil
}

// lookup returns the open invoice id, or ErrUnknownInvoice / ErrInvoiceExpired.
func (b *invoiceBook) lookup(id string, now time.Time) (*Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	inv, ok := b.open[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInvoice, id)
	}
	if inv.IsExpired(now) {
		delete(b.open, id)
		return nil, fmt.Errorf("%w: %s", ErrInvoiceExpired, id)
	}
	return inv, nil
}

// settle forgets a paid invoice.
func (b *invoiceBook) settle(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.open, id)
}
