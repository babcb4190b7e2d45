package model

import "errors"

// Sentinel kinds for domain model errors.
var (
	ErrInvalidFeatures = errors.New("invalid feature vector")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrWeatherNotFound = errors.New("no weather recorded for date")
	ErrPlayerExists    = errors.New("player already exists")
)
