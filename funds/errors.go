package funds

import "errors"

var (
	// ErrInvalidRecipient indicates a zero or malformed recipient identity.
	ErrInvalidRecipient = errors.New("funds: invalid recipient")

	// ErrInvalidAmount indicates a zero transfer amount.
	ErrInvalidAmount = errors.New("funds: invalid amount")

	// ErrRecipientRejected indicates the recipient refused the transfer.
	ErrRecipientRejected = errors.New("funds: recipient rejected transfer")

	// ErrInsufficientFunds indicates the source cannot cover the transfer.
	ErrInsufficientFunds = errors.New("funds: insufficient funds")

	// ErrTransferFailed indicates the wallet backend did not complete the transfer.
	ErrTransferFailed = errors.New("funds: transfer failed")
)
