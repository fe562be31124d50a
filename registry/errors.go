package registry

import "errors"

var (
	// ErrNameNotFound indicates the registry has no record of the name.
	ErrNameNotFound = errors.New("registry: name not found")

	// ErrAliasNotFound indicates the registry has no record of the alias under the name.
	ErrAliasNotFound = errors.New("registry: alias not found")

	// ErrInvalidResponse indicates the registry returned data that cannot be interpreted.
	ErrInvalidResponse = errors.New("registry: invalid response")

	// ErrUnknownRegistry indicates a registry reference cannot be dialed.
	ErrUnknownRegistry = errors.New("registry: unknown registry reference")

	// ErrDNSLookupFailed indicates a DNS SRV lookup failed.
	ErrDNSLookupFailed = errors.New("registry: DNS lookup failed")

	// ErrDNSSECValidationFailed indicates the DNS response was not DNSSEC-authenticated.
	ErrDNSSECValidationFailed = errors.New("registry: DNSSEC validation failed")

	// ErrNoEndpoints indicates no SRV records were found for the domain.
	ErrNoEndpoints = errors.New("registry: no endpoints found")
)
