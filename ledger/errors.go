package ledger

import "errors"

var (
	// ErrRecordExists indicates an access record is already present for the key.
	ErrRecordExists = errors.New("ledger: access record already exists")

	// ErrRecordNotFound indicates no access record exists for the key.
	ErrRecordNotFound = errors.New("ledger: access record not found")

	// ErrReferenceUsed indicates a payment reference has already been consumed.
	ErrReferenceUsed = errors.New("ledger: payment reference already used")

	// ErrInvalidKey indicates an access key is malformed or cannot be decoded.
	ErrInvalidKey = errors.New("ledger: invalid access key")

	// ErrReadOnly indicates a write was attempted inside a read-only transaction.
	ErrReadOnly = errors.New("ledger: read-only transaction")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("ledger: required parameter is nil")

	// ErrInUse indicates another process holds the database lock.
	ErrInUse = errors.New("ledger: database in use by another process")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("ledger: store closed")
)
