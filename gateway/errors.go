package gateway

import "errors"

var (
	// ErrInvalidAlias indicates the alias was set before the current name
	// ownership took effect, or was never set.
	ErrInvalidAlias = errors.New("gateway: invalid URL")

	// ErrAlreadyPaid indicates an access record already exists for the payer, name and alias.
	ErrAlreadyPaid = errors.New("gateway: already paid")

	// ErrWrongAmount indicates the attached value differs from the registry price.
	ErrWrongAmount = errors.New("gateway: wrong payment amount")

	// ErrInvalidTime indicates a delegated payment timestamp lies in the future.
	ErrInvalidTime = errors.New("gateway: invalid time")

	// ErrNotMaintainer indicates a maintainer-only operation was called by someone else.
	ErrNotMaintainer = errors.New("gateway: only maintainer")

	// ErrNotAdmin indicates an admin-only operation was called by someone else.
	ErrNotAdmin = errors.New("gateway: only admin")

	// ErrPercentExceeded indicates an owner revenue percent above 10000 basis points.
	ErrPercentExceeded = errors.New("gateway: percent exceeds 10000")

	// ErrTransferFailed indicates value could not be forwarded; nothing was moved.
	ErrTransferFailed = errors.New("gateway: transfer failed")

	// ErrInvalidParams indicates an empty name or alias, or a zero identity.
	ErrInvalidParams = errors.New("gateway: invalid parameters")

	// ErrInvalidAmount indicates a zero donation or a locked balance overflow.
	ErrInvalidAmount = errors.New("gateway: invalid amount")

	// ErrPaymentReused indicates the payment reference already settled another access.
	ErrPaymentReused = errors.New("gateway: payment reference already used")

	// ErrNotPaid indicates no access record exists for the payer, name and alias.
	ErrNotPaid = errors.New("gateway: not paid")

	// ErrRegistry indicates the registry could not be reached or answered with an error.
	ErrRegistry = errors.New("gateway: registry error")

	// ErrNotInitialized indicates the ledger settings have not been initialized.
	ErrNotInitialized = errors.New("gateway: not initialized")

	// ErrAlreadyInitialized indicates Init was called on an initialized ledger.
	ErrAlreadyInitialized = errors.New("gateway: already initialized")
)
