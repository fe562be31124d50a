// Package gateway implements the payment operations of the access ledger:
// self-paid and maintainer-delegated access purchases, donations forwarded
// to name owners, and the administrator's configuration and withdrawal.
//
// Every operation is serialized and commits through a single ledger
// transaction, so it either takes full effect or none.
package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bitfsorg/vanitypay-go/funds"
	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/ledger"
	"github.com/bitfsorg/vanitypay-go/registry"
)

// Call carries the caller of an operation and the value attached to it.
type Call struct {
	Caller identity.ID
	// Value is the attached amount in minor units.
	Value uint64
	// Reference identifies the payment carrying Value (e.g. a txid). A
	// non-empty reference can settle at most one access record.
	Reference string
}

// Receipt describes value moved out of the gateway.
type Receipt struct {
	To        identity.ID
	Amount    uint64
	Reference string
}

// Gateway executes ledger operations.
type Gateway struct {
	mu       sync.Mutex
	store    ledger.Store
	dialer   registry.Dialer
	transfer funds.Transferer
	clock    func() time.Time
	logger   *slog.Logger
}

// OptionFunc configures a Gateway.
type OptionFunc func(*Gateway)

// WithClock sets the ledger clock. Defaults to time.Now.
func WithClock(clock func() time.Time) OptionFunc {
	return func(g *Gateway) { g.clock = clock }
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) OptionFunc {
	return func(g *Gateway) { g.logger = logger }
}

// New creates a Gateway over store, resolving registry references with
// dialer and moving value with transfer.
func New(store ledger.Store, dialer registry.Dialer, transfer funds.Transferer, opts ...OptionFunc) (*Gateway, error) {
	if store == nil || dialer == nil || transfer == nil {
		return nil, fmt.Errorf("%w: store, dialer and transferer are required", ErrInvalidParams)
	}
	g := &Gateway{
		store:    store,
		dialer:   dialer,
		transfer: transfer,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.clock == nil {
		g.clock = time.Now
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g, nil
}

// Now returns the current ledger time.
func (g *Gateway) Now() time.Time { return g.clock() }

// ---------------------------------------------------------------------------
// Shared checks
// ---------------------------------------------------------------------------

func loadSettings(tx ledger.Tx) (ledger.Settings, error) {
	st, err := tx.Settings()
	if err != nil {
		return ledger.Settings{}, err
	}
	if !st.Initialized {
		return ledger.Settings{}, ErrNotInitialized
	}
	return st, nil
}

func requireAdmin(st ledger.Settings, caller identity.ID) error {
	if caller.IsZero() || caller != st.Admin {
		return ErrNotAdmin
	}
	return nil
}

func requireMaintainer(st ledger.Settings, caller identity.ID) error {
	if caller.IsZero() || caller != st.Maintainer {
		return ErrNotMaintainer
	}
	return nil
}

func checkNameAlias(name, alias string) error {
	if name == "" || alias == "" {
		return fmt.Errorf("%w: name and alias must be non-empty", ErrInvalidParams)
	}
	return nil
}

func (g *Gateway) registryFor(st ledger.Settings) (registry.Client, error) {
	c, err := g.dialer.Dial(st.Registry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistry, err)
	}
	return c, nil
}

// checkAlias reports whether the alias was set strictly after the current
// ownership of the name took effect.
func checkAlias(ctx context.Context, reg registry.Client, name, alias string) error {
	ownerAt, err := reg.NameOwnerUpdatedAt(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegistry, err)
	}
	aliasAt, err := reg.AliasUpdatedAt(ctx, name, alias)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegistry, err)
	}
	if !ownerAt.Before(aliasAt) {
		return fmt.Errorf("%w: %s/%s set %s, owner since %s", ErrInvalidAlias, name, alias,
			aliasAt.Format(time.RFC3339), ownerAt.Format(time.RFC3339))
	}
	return nil
}

func (g *Gateway) rejected(op string, err error, attrs ...any) {
	g.logger.Debug("rejected", append([]any{"op", op, "err", err}, attrs...)...)
}
