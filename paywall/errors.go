package paywall

import "errors"

var (
	// ErrInvoiceExpired indicates the invoice has passed its expiry time.
	ErrInvoiceExpired = errors.New("paywall: invoice expired")

	// ErrInvalidTx indicates the raw transaction cannot be deserialized.
	ErrInvalidTx = errors.New("paywall: invalid transaction")

	// ErrNoMatchingOutput indicates no transaction output pays the gate address.
	ErrNoMatchingOutput = errors.New("paywall: no matching output found")

	// ErrMissingCommitment indicates the transaction has no output naming its payer and invoice.
	ErrMissingCommitment = errors.New("paywall: missing payment commitment")

	// ErrPayerMismatch indicates the committed payer is not the signer of the payment request.
	ErrPayerMismatch = errors.New("paywall: payment committed to another payer")

	// ErrUnknownInvoice indicates the committed invoice was not issued by this gate.
	ErrUnknownInvoice = errors.New("paywall: unknown invoice")

	// ErrInvoiceMismatch indicates the invoice was issued for a different name or alias.
	ErrInvoiceMismatch = errors.New("paywall: invoice does not match name and alias")

	// ErrTooManyInvoices indicates the gate holds its maximum number of open invoices.
	ErrTooManyInvoices = errors.New("paywall: too many open invoices")

	// ErrInvalidParams indicates one or more parameters are invalid.
	ErrInvalidParams = errors.New("paywall: invalid parameters")

	// ErrMissingHeaders indicates required payment headers are missing.
	ErrMissingHeaders = errors.New("paywall: missing payment headers")
)
