// Package registry is the client side of the external naming and pricing
// registry. The access ledger never owns registry data; it only asks for
// prices, owners and the two last-update timestamps that decide whether an
// alias is still authoritative.
package registry

import (
	"context"
	"time"

	"github.com/bitfsorg/vanitypay-go/identity"
)

// Client answers the four registry queries the access ledger depends on.
type Client interface {
	// PriceOf returns the current access price of name/alias in minor units.
	PriceOf(ctx context.Context, name, alias string) (uint64, error)

	// OwnerOf returns the current owner of name.
	OwnerOf(ctx context.Context, name string) (identity.ID, error)

	// NameOwnerUpdatedAt returns when the current ownership of name took effect.
	NameOwnerUpdatedAt(ctx context.Context, name string) (time.Time, error)

	// AliasUpdatedAt returns when the name/alias mapping was last set.
	AliasUpdatedAt(ctx context.Context, name, alias string) (time.Time, error)
}

// Dialer resolves a registry reference (as stored in the ledger settings)
// to a Client.
type Dialer interface {
	Dial(ref string) (Client, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ref string) (Client, error)

// Dial calls f(ref).
func (f DialerFunc) Dial(ref string) (Client, error) { return f(ref) }

// Static is a Dialer over a fixed set of named clients.
type Static map[string]Client

// Dial returns the client registered under ref.
func (s Static) Dial(ref string) (Client, error) {
	c, ok := s[ref]
	if !ok || c == nil {
		return nil, ErrUnknownRegistry
	}
	return c, nil
}
