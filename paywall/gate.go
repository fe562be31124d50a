package paywall

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bitfsorg/vanitypay-go/gateway"
	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/ledger"
	"github.com/bitfsorg/vanitypay-go/network"
)

// PaymentPath is where payment requests are posted.
const PaymentPath = "/_pay"

// DefaultInvoiceTTL is how long an issued invoice stays valid.
const DefaultInvoiceTTL = 15 * time.Minute

const maxPaymentBody = 1 << 20

// PaymentRequest is the body of a POST to PaymentPath. The request must be
// signed by the payer named in the transaction's commitment output.
type PaymentRequest struct {
	Name  string `json:"name"`
	Alias string `json:"alias"`
	// RawTx is the hex-encoded BSV transaction paying the gate address and
	// carrying the commitment built by AddCommitment.
	RawTx string `json:"raw_tx"`
}

// PaymentResponse is returned after a payment is recorded.
type PaymentResponse struct {
	TxID   string `json:"txid"`
	Amount uint64 `json:"amount"`
	PaidAt int64  `json:"paid_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Gate serves alias content to callers who have paid for it.
type Gate struct {
	gw       *gateway.Gateway
	payTo    identity.ID
	node     network.Caller
	invoices *invoiceBook
	mainnet  bool
	ttl      time.Duration
	logger   *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithNode sets the node that payment transactions are broadcast to.
// A gate without one cannot be created.
func WithNode(node network.Caller) GateOption {
	return func(g *Gate) { g.node = node }
}

// WithMainnet renders pay-to addresses for mainnet.
func WithMainnet(mainnet bool) GateOption {
	return func(g *Gate) { g.mainnet = mainnet }
}

// WithInvoiceTTL sets the invoice lifetime.
func WithInvoiceTTL(ttl time.Duration) GateOption {
	return func(g *Gate) { g.ttl = ttl }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) { g.logger = logger }
}

// NewGate creates a Gate recording payments in gw. Payments must be made
// to payTo and are broadcast through the node set by WithNode.
func NewGate(gw *gateway.Gateway, payTo identity.ID, opts ...GateOption) (*Gate, error) {
	if gw == nil || payTo.IsZero() {
		return nil, fmt.Errorf("%w: gateway and pay-to identity are required", ErrInvalidParams)
	}
	g := &Gate{gw: gw, payTo: payTo, ttl: DefaultInvoiceTTL, invoices: newInvoiceBook(MaxOpenInvoices)}
	for _, opt := range opts {
		opt(g)
	}
	if g.node == nil {
		return nil, fmt.Errorf("%w: a node to broadcast payments is required", ErrInvalidParams)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g, nil
}

type payerKey struct{}

// PayerFromContext returns the authenticated payer of a request passed to
// the content handler.
func PayerFromContext(ctx context.Context) (identity.ID, bool) {
	id, ok := ctx.Value(payerKey{}).(identity.ID)
	return id, ok
}

// Handler routes payment posts to the gate and alias requests at
// /{name}/{alias...} through the access check to content.
func (g *Gate) Handler(content http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+PaymentPath, g.handlePayment)
	mux.Handle("GET /{name}/{alias...}", g.Require(content))
	return mux
}

// Require wraps content so that only payers of the requested alias reach it.
// The name and alias come from the {name} and {alias...} path values.
func (g *Gate) Require(content http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, alias := r.PathValue("name"), r.PathValue("alias")
		if name == "" || alias == "" {
			writeError(w, http.StatusNotFound, "unknown alias")
			return
		}

		payer, err := identity.VerifyRequest(r, g.gw.Now())
		switch {
		case errors.Is(err, identity.ErrMissingCredentials):
			g.requirePayment(w, r, name, alias)
			return
		case err != nil:
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		ok, err := g.gw.CheckAccess(r.Context(), payer, name, alias)
		if err != nil {
			g.writeGatewayError(w, err)
			return
		}
		if !ok {
			g.requirePayment(w, r, name, alias)
			return
		}
		content.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), payerKey{}, payer)))
	})
}

func (g *Gate) requirePayment(w http.ResponseWriter, r *http.Request, name, alias string) {
	price, err := g.gw.Quote(r.Context(), name, alias)
	if err != nil {
		g.writeGatewayError(w, err)
		return
	}
	addr, err := g.payTo.Address(g.mainnet)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	now := g.gw.Now()
	inv := NewInvoice(name, alias, price, addr, g.ttl, now)
	if err := g.invoices.issue(inv, now); err != nil {
		g.logger.Warn("invoice not issued", "err", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	g.logger.Debug("payment required", "name", name, "alias", alias, "price", price, "invoice", inv.ID)
	SetPaymentHeaders(w, inv)
}

// handlePayment records a payment once the transaction is bound to the
// signer and an open invoice, and the node has accepted it.
func (g *Gate) handlePayment(w http.ResponseWriter, r *http.Request) {
	now := g.gw.Now()
	payer, err := identity.VerifyRequest(r, now)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req PaymentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPaymentBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	rawTx, err := hex.DecodeString(req.RawTx)
	if err != nil {
		writeError(w, http.StatusBadRequest, "raw_tx must be hex")
		return
	}

	p, err := VerifyPayment(rawTx, g.payTo)
	if err == nil && p.Payer != payer {
		err = fmt.Errorf("%w: committed %s", ErrPayerMismatch, p.Payer)
	}
	var inv *Invoice
	if err == nil {
		inv, err = g.invoices.lookup(p.InvoiceID, now)
	}
	if err == nil && (inv.Name != req.Name || inv.Alias != req.Alias) {
		err = fmt.Errorf("%w: invoice is for %s/%s", ErrInvoiceMismatch, inv.Name, inv.Alias)
	}
	if err != nil {
		g.logger.Debug("payment rejected", "payer", payer, "err", err)
		writeError(w, paymentStatus(err), err.Error())
		return
	}

	// Reject what the ledger would reject before any value is broadcast.
	if err := g.precheck(r.Context(), payer, req.Name, req.Alias, p.Amount); err != nil {
		g.writeGatewayError(w, err)
		return
	}

	txid, err := network.BroadcastTx(r.Context(), g.node, rawTx)
	if err == nil && txid != p.TxID {
		err = fmt.Errorf("%w: node reported txid %s, expected %s", network.ErrInvalidResponse, txid, p.TxID)
	}
	if err != nil {
		g.logger.Info("payment broadcast failed", "payer", payer, "txid", p.TxID, "err", err)
		writeError(w, paymentStatus(err), err.Error())
		return
	}

	rec, err := g.gw.PayForAccess(r.Context(), gateway.Call{
		Caller:    payer,
		Value:     p.Amount,
		Reference: p.TxID,
	}, req.Name, req.Alias)
	if err != nil {
		g.logger.Error("broadcast payment not recorded", "payer", payer, "txid", p.TxID,
			"amount", p.Amount, "err", err)
		g.writeGatewayError(w, err)
		return
	}
	g.invoices.settle(inv.ID)
	writeJSON(w, http.StatusOK, paymentResponse(p.TxID, rec))
}

// precheck runs the ledger's payment checks that depend only on current
// state: alias validity, exact price and an existing record.
func (g *Gate) precheck(ctx context.Context, payer identity.ID, name, alias string, amount uint64) error {
	price, err := g.gw.Quote(ctx, name, alias)
	if err != nil {
		return err
	}
	if amount != price {
		return fmt.Errorf("%w: got %d, price %d", gateway.ErrWrongAmount, amount, price)
	}
	paid, err := g.gw.CheckAccess(ctx, payer, name, alias)
	if err != nil {
		return err
	}
	if paid {
		return gateway.ErrAlreadyPaid
	}
	return nil
}

// paymentStatus maps payment proof and broadcast errors to an HTTP status.
func paymentStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoMatchingOutput), errors.Is(err, ErrMissingCommitment),
		errors.Is(err, ErrUnknownInvoice), errors.Is(err, ErrInvoiceExpired),
		errors.Is(err, network.ErrBroadcastRejected):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrPayerMismatch):
		return http.StatusForbidden
	case errors.Is(err, network.ErrConnectionFailed), errors.Is(err, network.ErrInvalidResponse):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func paymentResponse(txid string, rec ledger.AccessRecord) PaymentResponse {
	return PaymentResponse{TxID: txid, Amount: rec.Amount, PaidAt: rec.PaidAt.Unix()}
}

// StatusFor maps a gateway error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, gateway.ErrInvalidParams), errors.Is(err, gateway.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, gateway.ErrWrongAmount), errors.Is(err, gateway.ErrNotPaid):
		return http.StatusPaymentRequired
	case errors.Is(err, gateway.ErrNotAdmin), errors.Is(err, gateway.ErrNotMaintainer):
		return http.StatusForbidden
	case errors.Is(err, gateway.ErrAlreadyPaid), errors.Is(err, gateway.ErrPaymentReused):
		return http.StatusConflict
	case errors.Is(err, gateway.ErrInvalidAlias):
		return http.StatusGone
	case errors.Is(err, gateway.ErrRegistry), errors.Is(err, gateway.ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, gateway.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (g *Gate) writeGatewayError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		g.logger.Error("gateway failure", "err", err)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
