package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/ledger"
)

// PayForAccess records that call.Caller paid for name/alias. call.Value
// must equal the registry price exactly and is added to the locked balance.
func (g *Gateway) PayForAccess(ctx context.Context, call Call, name, alias string) (ledger.AccessRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, err := g.pay(ctx, call, call.Caller, name, alias, g.clock(), false)
	if err != nil {
		g.rejected("payForAccess", err, "payer", call.Caller, "name", name, "alias", alias, "value", call.Value)
		return ledger.AccessRecord{}, err
	}
	g.logger.Info("access paid",
		"payer", call.Caller, "name", name, "alias", alias,
		"amount", rec.Amount, "reference", rec.Reference)
	return rec, nil
}

// PayForAccessFor records a payment on behalf of payer. Only the maintainer
// may call it, and paidAt must not be later than the ledger clock.
func (g *Gateway) PayForAccessFor(ctx context.Context, call Call, payer identity.ID, name, alias string, paidAt time.Time) (ledger.AccessRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, err := g.pay(ctx, call, payer, name, alias, paidAt, true)
	if err != nil {
		g.rejected("payForAccessFor", err, "maintainer", call.Caller, "payer", payer,
			"name", name, "alias", alias, "value", call.Value, "paidAt", paidAt)
		return ledger.AccessRecord{}, err
	}
	g.logger.Info("delegated access paid",
		"maintainer", call.Caller, "payer", payer, "name", name, "alias", alias,
		"amount", rec.Amount, "paidAt", rec.PaidAt, "reference", rec.Reference)
	return rec, nil
}

func (g *Gateway) pay(ctx context.Context, call Call, payer identity.ID, name, alias string, paidAt time.Time, delegated bool) (ledger.AccessRecord, error) {
	key := ledger.AccessKey{Payer: payer, Name: name, Alias: alias}
	rec := ledger.AccessRecord{
		PaidAt:    paidAt,
		Amount:    call.Value,
		Delegated: delegated,
		Reference: call.Reference,
	}

	err := g.store.Update(func(tx ledger.Tx) error {
		st, err := loadSettings(tx)
		if err != nil {
			return err
		}
		if delegated {
			if err := requireMaintainer(st, call.Caller); err != nil {
				return err
			}
		}
		if err := checkNameAlias(name, alias); err != nil {
			return err
		}
		if payer.IsZero() {
			return fmt.Errorf("%w: zero payer", ErrInvalidParams)
		}

		_, err = tx.Record(key)
		switch {
		case err == nil:
			return ErrAlreadyPaid
		case !errors.Is(err, ledger.ErrRecordNotFound):
			return err
		}

		reg, err := g.registryFor(st)
		if err != nil {
			return err
		}
		if err := checkAlias(ctx, reg, name, alias); err != nil {
			return err
		}
		price, err := reg.PriceOf(ctx, name, alias)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRegistry, err)
		}
		if call.Value != price {
			return fmt.Errorf("%w: got %d, price %d", ErrWrongAmount, call.Value, price)
		}
		if delegated && paidAt.After(g.clock()) {
			return fmt.Errorf("%w: %s is in the future", ErrInvalidTime, paidAt.Format(time.RFC3339))
		}

		if call.Reference != "" {
			if _, used, err := tx.ReferenceOwner(call.Reference); err != nil {
				return err
			} else if used {
				return fmt.Errorf("%w: %s", ErrPaymentReused, call.Reference)
			}
			if err := tx.UseReference(call.Reference, key); err != nil {
				return err
			}
		}

		if st.Locked+call.Value < st.Locked {
			return fmt.Errorf("%w: locked balance overflow", ErrInvalidAmount)
		}
		st.Locked += call.Value

		if err := tx.PutRecord(key, rec); err != nil {
			if errors.Is(err, ledger.ErrRecordExists) {
				return ErrAlreadyPaid
			}
			return err
		}
		return tx.PutSettings(st)
	})
	if err != nil {
		return ledger.AccessRecord{}, err
	}
	return rec, nil
}

// CheckAccess reports whether payer has paid for name/alias. It does not
// re-check alias validity.
func (g *Gateway) CheckAccess(ctx context.Context, payer identity.ID, name, alias string) (bool, error) {
	_, err := g.AccessRecord(ctx, payer, name, alias)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotPaid):
		return false, nil
	default:
		return false, err
	}
}

// AccessRecord returns the access record of payer for name/alias, or ErrNotPaid.
func (g *Gateway) AccessRecord(ctx context.Context, payer identity.ID, name, alias string) (ledger.AccessRecord, error) {
	if err := ctx.Err(); err != nil {
		return ledger.AccessRecord{}, err
	}
	var rec ledger.AccessRecord
	err := g.store.View(func(tx ledger.Tx) error {
		var err error
		rec, err = tx.Record(ledger.AccessKey{Payer: payer, Name: name, Alias: alias})
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return ErrNotPaid
		}
		return err
	})
	if err != nil {
		return ledger.AccessRecord{}, err
	}
	return rec, nil
}

// Records calls fn for every access record in the ledger.
func (g *Gateway) Records(ctx context.Context, fn func(ledger.AccessKey, ledger.AccessRecord) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.store.View(func(tx ledger.Tx) error {
		return tx.ForEachRecord(fn)
	})
}

// Quote returns the current price of name/alias. Stale aliases fail with
// ErrInvalidAlias, as a payment would.
func (g *Gateway) Quote(ctx context.Context, name, alias string) (uint64, error) {
	if err := checkNameAlias(name, alias); err != nil {
		return 0, err
	}
	st, err := g.Settings(ctx)
	if err != nil {
		return 0, err
	}
	reg, err := g.registryFor(st)
	if err != nil {
		return 0, err
	}
	if err := checkAlias(ctx, reg, name, alias); err != nil {
		return 0, err
	}
	price, err := reg.PriceOf(ctx, name, alias)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRegistry, err)
	}
	return price, nil
}
