package config

import "errors"

// Load wraps ErrLoadConfig when a source cannot be read or decoded.
// Validate and Location wrap ErrInvalidConfig for values that cannot be used.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
