package loadtest

import "errors"

var (
	// ErrInvalidConfig is returned when a Config cannot drive a run.
	ErrInvalidConfig = errors.New("invalid load test config")
	// ErrUnhealthy is returned when the service does not answer its health check.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrVerification is returned when responses break a booking invariant.
	ErrVerification = errors.New("verification failed")
)
