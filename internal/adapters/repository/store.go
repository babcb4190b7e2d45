// Package repository defines the persistence surface used by the booking
// service and an in-memory implementation of it.
package repository

import (
	"context"
	"time"

	"github.com/okian/fairway/internal/domain/booking"
	"github.com/okian/fairway/internal/domain/model"
)

// Counts summarizes how many rows each table holds.
type Counts struct {
	Players  int `json:"players"`
	Rounds   int `json:"rounds"`
	Weather  int `json:"weather_days"`
	Bookings int `json:"bookings"`
}

// Store provides read/write access to players, rounds, weather and bookings.
type Store interface {
	booking.Store
	booking.FeatureSource

	// CreatePlayer registers a new player and returns it with its assigned id.
	// Returns model.ErrPlayerExists when the name is taken.
	CreatePlayer(ctx context.Context, name string, handicap float64) (model.Player, error)

	// PlayerRounds returns the player's rounds ordered by date, each joined
	// with the weather recorded for its date when there is one.
	PlayerRounds(ctx context.Context, playerID int64) ([]model.Round, error)

	// Counts returns table sizes.
	Counts(ctx context.Context) (Counts, error)

	Close() error
}

// dateKey normalizes a date to its calendar day.
func dateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
