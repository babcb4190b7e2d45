package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/okian/fairway/internal/domain/pricing"
	"github.com/okian/fairway/pkg/logger"
	"gonum.org/v1/gonum/stat"
)

// verifyResults checks the responses against the booking invariants:
// a created booking's price must match a local pricing of its features,
// and an idempotency key may create at most one booking.
func verifyResults(ctx context.Context, config *Config, results []Result, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results", logger.Int("results", len(results)))

	var opts []pricing.Option
	if !config.BasePrice.IsZero() {
		opts = append(opts, pricing.WithBasePrice(config.BasePrice))
	}
	pricer := pricing.New(opts...)

	createdByKey := make(map[string]int)
	for i := range results {
		r := &results[i]
		if r.Status != http.StatusCreated || r.Booking == nil {
			continue
		}
		if r.Attempt.IdempotencyKey != "" {
			createdByKey[r.Attempt.IdempotencyKey]++
		}
		if err := verifyBooking(pricer, r); err != nil {
			stats.PriceMismatches++
			logger.Get().Warn(ctx, "booking mismatch",
				logger.Int("index", r.Attempt.Index),
				logger.Error(err))
		}
	}
	for key, n := range createdByKey {
		if n > 1 {
			stats.KeyViolations++
			logger.Get().Warn(ctx, "idempotency key created more than one booking",
				logger.String("key", key),
				logger.Int("bookings", n))
		}
	}

	var problems []string
	if stats.PriceMismatches > 0 {
		problems = append(problems, fmt.Sprintf("%d bookings disagree with local pricing", stats.PriceMismatches))
	}
	if stats.KeyViolations > 0 {
		problems = append(problems, fmt.Sprintf("%d idempotency keys created more than one booking", stats.KeyViolations))
	}
	if stats.BookingsAfter >= 0 && stats.BookingsAfter-stats.BookingsBefore < stats.Created {
		problems = append(problems, fmt.Sprintf("store gained %d bookings but %d were created",
			stats.BookingsAfter-stats.BookingsBefore, stats.Created))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrVerification, problems)
	}

	logger.Get().Info(ctx, "result verification completed")
	return nil
}

// verifyBooking compares one created booking with its request.
func verifyBooking(pricer *pricing.Engine, r *Result) error {
	req := r.Attempt.Request
	b := r.Booking
	if req.TeeTimeHour == nil {
		return fmt.Errorf("attempt %d has no tee time hour", r.Attempt.Index)
	}
	if b.TeeTime.Hour() != *req.TeeTimeHour {
		return fmt.Errorf("tee time hour %d, requested %d", b.TeeTime.Hour(), *req.TeeTimeHour)
	}
	if got := b.TeeTime.Format(time.DateOnly); got != req.Date {
		return fmt.Errorf("tee time date %s, requested %s", got, req.Date)
	}
	want := pricer.Price(*req.TeeTimeHour, req.Cart, b.Features)
	if !want.Equal(b.Price) {
		return fmt.Errorf("price %s, expected %s", b.Price, want)
	}
	return nil
}

// latencyQuantiles returns the p50, p95 and p99 latency of the results in milliseconds.
func latencyQuantiles(results []Result) (p50, p95, p99 float64) {
	if len(results) == 0 {
		return 0, 0, 0
	}
	ms := make([]float64, len(results))
	for i := range results {
		ms[i] = float64(results[i].Latency.Microseconds()) / 1000
	}
	sort.Float64s(ms)
	return stat.Quantile(0.5, stat.Empirical, ms, nil),
		stat.Quantile(0.95, stat.Empirical, ms, nil),
		stat.Quantile(0.99, stat.Empirical, ms, nil)
}
