package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/fairway/pkg/logger"
)

// File permission constants.
const (
	directoryPermission  = 0750
	resultFilePermission = 0600
)

// Run executes the complete booking load test.
func Run(ctx context.Context, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting fairway booking load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("bookings", config.NumBookings),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("players", config.Players),
		logger.Any("dates", config.Dates))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Snapshot the booking count
	before, err := fetchStats(ctx, client, config.BaseURL)
	if err != nil {
		return fmt.Errorf("stats snapshot failed: %w", err)
	}
	stats.BookingsBefore = before.Bookings

	// Step 3: Generate and submit attempts
	attempts := generateAttempts(ctx, config, stats)
	results := submitAttempts(ctx, config, attempts, stats)

	// Step 4: Snapshot again; a missing snapshot skips the count check
	stats.BookingsAfter = -1
	if after, err := fetchStats(ctx, client, config.BaseURL); err != nil {
		logger.Get().Warn(ctx, "failed to read stats after run", logger.Error(err))
	} else {
		stats.BookingsAfter = after.Bookings
	}

	// Step 5: Save results before verifying so failures can be inspected
	if err := saveResultsToFile(ctx, config, results); err != nil {
		logger.Get().Warn(ctx, "failed to save results to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	verifyErr := verifyResults(ctx, config, results, stats)
	displayFinalStats(stats, results)
	if verifyErr != nil {
		return verifyErr
	}

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveResultsToFile writes every result as a JSON array.
func saveResultsToFile(ctx context.Context, config *Config, results []Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to save")
	}

	filename := config.OutputFile
	if filename == "" {
		filename = "booking_results_" + time.Now().Format("20060102_150405") + ".json"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filename, data, resultFilePermission); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	logger.Get().Info(ctx, "results saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(stats *Stats, results []Result) {
	var successRate, bookingsPerSecond float64

	if stats.AttemptsSubmitted > 0 {
		successRate = float64(stats.Created) / float64(stats.AttemptsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		bookingsPerSecond = float64(stats.AttemptsSubmitted) / stats.Duration.Seconds()
	}
	p50, p95, p99 := latencyQuantiles(results)

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("attemptsGenerated", stats.AttemptsGenerated),
		logger.Int("attemptsSubmitted", stats.AttemptsSubmitted),
		logger.Int("created", stats.Created),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("priceMismatches", stats.PriceMismatches),
		logger.Int("keyViolations", stats.KeyViolations),
		logger.Int("bookingsBefore", stats.BookingsBefore),
		logger.Int("bookingsAfter", stats.BookingsAfter),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("attemptsPerSecond", bookingsPerSecond),
		logger.Float64("latencyP50Ms", p50),
		logger.Float64("latencyP95Ms", p95),
		logger.Float64("latencyP99Ms", p99))
}
