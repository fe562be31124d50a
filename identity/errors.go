package identity

import "errors"

var (
	// ErrInvalidID indicates an identity is not a 20-byte public key hash.
	ErrInvalidID = errors.New("identity: invalid identity")

	// ErrInvalidPubKey indicates a public key is not a valid compressed secp256k1 key.
	ErrInvalidPubKey = errors.New("identity: invalid public key")

	// ErrInvalidAddress indicates an address string cannot be decoded.
	ErrInvalidAddress = errors.New("identity: invalid address")

	// ErrInvalidSignature indicates a request signature is malformed or does not verify.
	ErrInvalidSignature = errors.New("identity: invalid signature")

	// ErrStaleRequest indicates the request timestamp is outside the accepted window.
	ErrStaleRequest = errors.New("identity: request timestamp outside accepted window")

	// ErrMissingCredentials indicates a request carries no signature headers.
	ErrMissingCredentials = errors.New("identity: missing request credentials")

	// ErrDecryptionFailed indicates wrong password or corrupted key file data.
	ErrDecryptionFailed = errors.New("identity: key decryption failed (wrong password or corrupted data)")

	// ErrEmptyPassword indicates an empty password was supplied for key encryption.
	ErrEmptyPassword = errors.New("identity: password must not be empty")
)
