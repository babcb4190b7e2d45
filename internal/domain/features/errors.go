package features

import "errors"

// Sentinel kinds for feature engineering errors. A missing column is a caller
// bug: callers are expected to build complete frames.
var (
	ErrMissingColumn   = errors.New("missing required column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrShapeMismatch   = errors.New("column length does not match frame")
	ErrEmptyFrame      = errors.New("frame has no rows")
	ErrInvalidScaler   = errors.New("invalid scaler")
	ErrMalformedCSV    = errors.New("malformed training csv")
)
