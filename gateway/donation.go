package gateway

import (
	"context"
	"fmt"

	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/ledger"
)

// SendDonation forwards call.Value in full to the current owner of name.
// The locked balance is not touched.
func (g *Gateway) SendDonation(ctx context.Context, call Call, name, alias string) (Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, err := g.donate(ctx, call, call.Caller, name, alias, false)
	if err != nil {
		g.rejected("sendDonation", err, "donor", call.Caller, "name", name, "alias", alias, "value", call.Value)
		return Receipt{}, err
	}
	g.logger.Info("donation forwarded",
		"donor", call.Caller, "name", name, "alias", alias,
		"owner", r.To, "amount", r.Amount, "reference", r.Reference)
	return r, nil
}

// SendDonationFor is the maintainer-submitted form of SendDonation on
// behalf of payer.
func (g *Gateway) SendDonationFor(ctx context.Context, call Call, payer identity.ID, name, alias string) (Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, err := g.donate(ctx, call, payer, name, alias, true)
	if err != nil {
		g.rejected("sendDonationFor", err, "maintainer", call.Caller, "donor", payer,
			"name", name, "alias", alias, "value", call.Value)
		return Receipt{}, err
	}
	g.logger.Info("delegated donation forwarded",
		"maintainer", call.Caller, "donor", payer, "name", name, "alias", alias,
		"owner", r.To, "amount", r.Amount, "reference", r.Reference)
	return r, nil
}

func (g *Gateway) donate(ctx context.Context, call Call, payer identity.ID, name, alias string, delegated bool) (Receipt, error) {
	var st ledger.Settings
	err := g.store.View(func(tx ledger.Tx) error {
		var err error
		st, err = loadSettings(tx)
		return err
	})
	if err != nil {
		return Receipt{}, err
	}
	if delegated {
		if err := requireMaintainer(st, call.Caller); err != nil {
			return Receipt{}, err
		}
		if payer.IsZero() {
			return Receipt{}, fmt.Errorf("%w: zero payer", ErrInvalidParams)
		}
	}
	if err := checkNameAlias(name, alias); err != nil {
		return Receipt{}, err
	}

	reg, err := g.registryFor(st)
	if err != nil {
		return Receipt{}, err
	}
	if err := checkAlias(ctx, reg, name, alias); err != nil {
		return Receipt{}, err
	}
	if call.Value == 0 {
		return Receipt{}, fmt.Errorf("%w: donation must be positive", ErrInvalidAmount)
	}

	owner, err := reg.OwnerOf(ctx, name)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrRegistry, err)
	}
	if owner.IsZero() {
		return Receipt{}, fmt.Errorf("%w: %s has no owner", ErrTransferFailed, name)
	}

	ref, err := g.transfer.Transfer(ctx, owner, call.Value)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return Receipt{To: owner, Amount: call.Value, Reference: ref}, nil
}
