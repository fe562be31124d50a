package paywall

import (
	"fmt"
	"net/http"
	"strconv"
)

// Payment header names.
const (
	HeaderPrice     = "X-Price"
	HeaderInvoiceID = "X-Invoice-Id"
	HeaderExpiry    = "X-Expiry"
	HeaderPayTo     = "X-Pay-To"
	HeaderName      = "X-Name"
	HeaderAlias     = "X-Alias"
)

// SetPaymentHeaders writes the invoice as headers and sets the status code
// to 402 Payment Required.
func SetPaymentHeaders(w http.ResponseWriter, inv *Invoice) {
	h := w.Header()
	h.Set(HeaderPrice, strconv.FormatUint(inv.Price, 10))
	h.Set(HeaderInvoiceID, inv.ID)
	h.Set(HeaderExpiry, strconv.FormatInt(inv.Expiry, 10))
	h.Set(HeaderPayTo, inv.PayTo)
	h.Set(HeaderName, inv.Name)
	h.Set(HeaderAlias, inv.Alias)
	w.WriteHeader(http.StatusPaymentRequired)
}

// ParsePaymentHeaders extracts the invoice from a 402 response.
func ParsePaymentHeaders(resp *http.Response) (*Invoice, error) {
	get := func(name string) (string, error) {
		v := resp.Header.Get(name)
		if v == "" {
			return "", fmt.Errorf("%w: %s header missing", ErrMissingHeaders, name)
		}
		return v, nil
	}

	priceStr, err := get(HeaderPrice)
	if err != nil {
		return nil, err
	}
	price, err := strconv.ParseUint(priceStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s value: %w", ErrMissingHeaders, HeaderPrice, err)
	}

	expiryStr, err := get(HeaderExpiry)
	if err != nil {
		return nil, err
	}
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s value: %w", ErrMissingHeaders, HeaderExpiry, err)
	}

	inv := &Invoice{Price: price, Expiry: expiry}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{HeaderInvoiceID, &inv.ID},
		{HeaderPayTo, &inv.PayTo},
		{HeaderName, &inv.Name},
		{HeaderAlias, &inv.Alias},
	} {
		if *f.dst, err = get(f.name); err != nil {
			return nil, err
		}
	}
	return inv, nil
}
