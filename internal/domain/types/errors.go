package types

import "errors"

// Sentinel kinds shared by the API and the application service.
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrDuplicateRequest = errors.New("duplicate request")
	ErrUnavailable      = errors.New("unavailable")
)
