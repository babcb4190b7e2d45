package loadtest

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/fairway/pkg/logger"
)

// randomIndex returns a uniform index in [0, n) using crypto/rand.
func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generateAttempts builds the booking attempts for a run. Every
// DuplicateEvery-th attempt replays its predecessor with the same key.
func generateAttempts(ctx context.Context, config *Config, stats *Stats) []Attempt {
	logger.Get().Info(ctx, "generating booking attempts",
		logger.Int("attempts", config.NumBookings),
		logger.Int("duplicateEvery", config.DuplicateEvery))

	attempts := make([]Attempt, config.NumBookings)
	for i := range attempts {
		if config.DuplicateEvery > 0 && i > 0 && (i+1)%config.DuplicateEvery == 0 {
			attempts[i] = attempts[i-1]
			attempts[i].Index = i
			continue
		}
		attempts[i] = generateSingleAttempt(i, config)
	}

	stats.AttemptsGenerated = len(attempts)
	return attempts
}

// generateSingleAttempt creates a fresh attempt with a new idempotency key.
func generateSingleAttempt(index int, config *Config) Attempt {
	hour := firstTeeHour + randomIndex(lastTeeHour-firstTeeHour+1)
	a := Attempt{
		Index:          index,
		IdempotencyKey: uuid.NewString(),
	}
	a.Request.PlayerName = config.Players[randomIndex(len(config.Players))]
	a.Request.Date = config.Dates[randomIndex(len(config.Dates))]
	a.Request.TeeTimeHour = &hour
	a.Request.Cart = randomIndex(2) == 1
	return a
}
