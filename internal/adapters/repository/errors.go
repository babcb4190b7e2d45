package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrInvalidPlayer = errors.New("invalid player")
	ErrInvalidRound  = errors.New("invalid round")
)
