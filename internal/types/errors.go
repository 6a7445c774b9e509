package types

import "errors"

// Domain specific errors for the store layer.
var (
	ErrNotFound   = errors.New("requested item not found")
	ErrConflict   = errors.New("item already exists or conflict")
	ErrBadRequest = errors.New("bad request")
)

// Failure classes for external data access. The resilience layer retries
// ErrTransient only; the other two surface immediately and are never cached.
var (
	// ErrTransient covers network timeouts, connection resets, rate limits
	// and upstream 5xx responses. Retryable up to the policy limit.
	ErrTransient = errors.New("transient fetch failure")

	// ErrConfiguration covers missing or rejected credentials and other
	// setup problems. Retrying cannot help.
	ErrConfiguration = errors.New("missing or invalid configuration")

	// ErrValidation covers malformed caller input such as out-of-range
	// coordinates or an empty required argument.
	ErrValidation = errors.New("invalid input")
)
