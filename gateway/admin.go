package gateway

import (
	"context"
	"fmt"

	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/ledger"
	"github.com/bitfsorg/vanitypay-go/revshare"
)

// Init writes the initial settings: admin, registry reference and
// maintainer. It succeeds once per ledger.
func (g *Gateway) Init(ctx context.Context, admin identity.ID, registryRef string, maintainer identity.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if admin.IsZero() {
		return fmt.Errorf("%w: zero admin", ErrInvalidParams)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.store.Update(func(tx ledger.Tx) error {
		st, err := tx.Settings()
		if err != nil {
			return err
		}
		if st.Initialized {
			return ErrAlreadyInitialized
		}
		return tx.PutSettings(ledger.Settings{
			Admin:       admin,
			Maintainer:  maintainer,
			Registry:    registryRef,
			Initialized: true,
		})
	})
	if err != nil {
		g.rejected("init", err)
		return err
	}
	g.logger.Info("ledger initialized", "admin", admin, "maintainer", maintainer, "registry", registryRef)
	return nil
}

// updateSettings applies fn to the settings record after checking that
// call.Caller is the admin.
func (g *Gateway) updateSettings(ctx context.Context, op string, call Call, fn func(*ledger.Settings) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	var before, after ledger.Settings
	err := g.store.Update(func(tx ledger.Tx) error {
		st, err := loadSettings(tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(st, call.Caller); err != nil {
			return err
		}
		before = st
		if err := fn(&st); err != nil {
			return err
		}
		after = st
		return tx.PutSettings(st)
	})
	if err != nil {
		g.rejected(op, err, "caller", call.Caller)
		return err
	}
	g.logger.Info("settings updated", "op", op,
		"admin", after.Admin, "maintainer", after.Maintainer,
		"registry", after.Registry, "ownerRevDisPercent", after.OwnerRevDisPercent,
		"changed", before != after)
	return nil
}

// UpdateRegistryAddress replaces the registry reference. Admin only.
func (g *Gateway) UpdateRegistryAddress(ctx context.Context, call Call, ref string) error {
	return g.updateSettings(ctx, "updateRegistryAddress", call, func(st *ledger.Settings) error {
		st.Registry = ref
		return nil
	})
}

// UpdateMaintainer replaces the maintainer. Admin only.
func (g *Gateway) UpdateMaintainer(ctx context.Context, call Call, maintainer identity.ID) error {
	return g.updateSettings(ctx, "updateMaintainer", call, func(st *ledger.Settings) error {
		st.Maintainer = maintainer
		return nil
	})
}

// UpdateOwnerRevDisPercent sets the owner revenue percent in basis points.
// Admin only; p must not exceed 10000.
func (g *Gateway) UpdateOwnerRevDisPercent(ctx context.Context, call Call, p uint64) error {
	return g.updateSettings(ctx, "updateOwnerRevDisPercent", call, func(st *ledger.Settings) error {
		if err := revshare.ValidatePercent(p); err != nil {
			return fmt.Errorf("%w: %d", ErrPercentExceeded, p)
		}
		st.OwnerRevDisPercent = uint16(p)
		return nil
	})
}

// TransferAdmin hands the admin role to newAdmin. Admin only.
func (g *Gateway) TransferAdmin(ctx context.Context, call Call, newAdmin identity.ID) error {
	if newAdmin.IsZero() {
		return fmt.Errorf("%w: zero admin", ErrInvalidParams)
	}
	return g.updateSettings(ctx, "transferAdmin", call, func(st *ledger.Settings) error {
		st.Admin = newAdmin
		return nil
	})
}

// Withdraw transfers the whole locked balance to the admin and zeroes it.
// The transfer is the last step of the transaction: if it fails the
// balance is kept. A zero balance withdraws nothing.
func (g *Gateway) Withdraw(ctx context.Context, call Call) (Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var r Receipt
	err := g.store.Update(func(tx ledger.Tx) error {
		st, err := loadSettings(tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(st, call.Caller); err != nil {
			return err
		}
		r = Receipt{To: st.Admin}
		if st.Locked == 0 {
			return nil
		}

		amount := st.Locked
		st.Locked = 0
		if err := tx.PutSettings(st); err != nil {
			return err
		}
		ref, err := g.transfer.Transfer(ctx, st.Admin, amount)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
		r.Amount = amount
		r.Reference = ref
		return nil
	})
	if err != nil {
		g.rejected("withdraw", err, "caller", call.Caller)
		return Receipt{}, err
	}
	g.logger.Info("withdrawn", "admin", r.To, "amount", r.Amount, "reference", r.Reference)
	return r, nil
}

// Settings returns the current settings record.
func (g *Gateway) Settings(ctx context.Context) (ledger.Settings, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Settings{}, err
	}
	var st ledger.Settings
	err := g.store.View(func(tx ledger.Tx) error {
		var err error
		st, err = loadSettings(tx)
		return err
	})
	return st, err
}

// LockedBalance returns the value held for withdrawal.
func (g *Gateway) LockedBalance(ctx context.Context) (uint64, error) {
	st, err := g.Settings(ctx)
	if err != nil {
		return 0, err
	}
	return st.Locked, nil
}

// OwnerShareQuote reports how amount would divide under the configured
// owner revenue percent. It moves no value; no operation applies the split.
func (g *Gateway) OwnerShareQuote(ctx context.Context, amount uint64) (owner, rest uint64, err error) {
	st, err := g.Settings(ctx)
	if err != nil {
		return 0, 0, err
	}
	return revshare.Split(amount, st.OwnerRevDisPercent)
}
