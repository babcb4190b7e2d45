package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidArtifact  = errors.New("invalid scoring artifact")
	ErrUnknownModelKind = errors.New("unknown model kind")
	ErrArity            = errors.New("feature row has wrong length")
	ErrInsufficientData = errors.New("not enough training rows")
)
