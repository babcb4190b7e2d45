package loadtest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/fairway/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends log output to both stdout and a file.
// If logFile is empty, a timestamped filename is generated.
// The returned closer releases the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "load_log_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(
		logger.WithWriter(io.MultiWriter(os.Stdout, file)),
		logger.WithLevel(level),
	); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Fairway Booking Load Tool
=========================

Books tee times concurrently against a running Fairway service and
verifies every answer: created bookings must match local pricing and
an idempotency key may create at most one booking.

Usage:
  go run ./cmd/load-bookings [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -bookings int
        Number of booking attempts (default 1000)
  -duplicate-every int
        Replay every Nth attempt with the previous idempotency key, 0 disables (default 10)
  -players string
        Comma separated player names (default "Alice Smith,Bob Jones")
  -dates string
        Comma separated round dates, YYYY-MM-DD (default "2024-06-01,2024-06-03")
  -base-price string
        Base price the service runs with (default "75")
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for results (default: booking_results_TIMESTAMP.json)
  -log string
        Log file for test output (default: load_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Against a service seeded from testdata/fixtures.yaml
  go run ./cmd/load-bookings

  # Heavier run with no duplicates
  go run ./cmd/load-bookings -bookings 20000 -workers 32 -duplicate-every 0
`)
}
