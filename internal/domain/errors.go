package domain

import "errors"

// Error taxonomy shared by tools, orchestration and surfaces.
var (
	// ErrNetwork covers timeouts, connection failures and non-2xx responses.
	ErrNetwork = errors.New("network error")

	// ErrNotFound is returned when a valid call has no matching record.
	ErrNotFound = errors.New("not found")

	// ErrMalformedResponse is returned when an upstream payload has an unexpected shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrConfiguration is returned for missing or invalid startup configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedOperation is returned for operations the agent rejects, such as cancel.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrInsufficientData is returned when every tool call of a run failed.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidAddress is returned when a token address is not a 32-byte base58 key.
	ErrInvalidAddress = errors.New("invalid token address")
)
