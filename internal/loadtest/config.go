package loadtest

import (
	"fmt"
	"time"

	"github.com/okian/fairway/internal/domain/types"
	"github.com/shopspring/decimal"
)

// Config holds configuration for a booking load test.
type Config struct {
	BaseURL        string          // Base URL of the service
	NumBookings    int             // Number of booking attempts to generate
	DuplicateEvery int             // Every Nth attempt reuses the previous idempotency key; 0 disables
	Players        []string        // Player names to book for
	Dates          []string        // Round dates to book, YYYY-MM-DD
	Workers        int             // Number of concurrent workers
	Timeout        time.Duration   // HTTP request timeout
	BasePrice      decimal.Decimal // Base price the service was started with
	OutputFile     string          // Output file for results
	LogFile        string          // Log file for test output
	Verbose        bool            // Enable verbose logging
}

// Attempt is one POST /bookings call.
type Attempt struct {
	Index          int                  `json:"index"`
	IdempotencyKey string               `json:"idempotency_key"`
	Request        types.BookingRequest `json:"request"`
}

// Result is the service's answer to an Attempt.
type Result struct {
	Attempt Attempt                `json:"attempt"`
	Status  int                    `json:"status"`
	Booking *types.BookingResponse `json:"booking,omitempty"`
	Error   *types.ErrorResponse   `json:"error,omitempty"`
	Latency time.Duration          `json:"latency_ns"`
}

// Stats holds test statistics.
type Stats struct {
	AttemptsGenerated int
	AttemptsSubmitted int
	Created           int
	Duplicate         int
	Rejected          int
	Failed            int
	PriceMismatches   int
	KeyViolations     int
	BookingsBefore    int
	BookingsAfter     int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// Validate reports whether c can drive a run.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.NumBookings <= 0:
		return fmt.Errorf("%w: bookings must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.DuplicateEvery < 0:
		return fmt.Errorf("%w: duplicate interval must not be negative", ErrInvalidConfig)
	case len(c.Players) == 0:
		return fmt.Errorf("%w: at least one player is required", ErrInvalidConfig)
	case len(c.Dates) == 0:
		return fmt.Errorf("%w: at least one date is required", ErrInvalidConfig)
	}
	for _, d := range c.Dates {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return fmt.Errorf("%w: date %q: %w", ErrInvalidConfig, d, err)
		}
	}
	return nil
}
