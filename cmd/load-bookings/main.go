package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/fairway/internal/loadtest"
	"github.com/shopspring/decimal"
)

// Default configuration constants.
const (
	defaultBookings       = 1000
	defaultDuplicateEvery = 10
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultTestTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL        = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numBookings    = flag.Int("bookings", defaultBookings, "Number of booking attempts")
		duplicateEvery = flag.Int("duplicate-every", defaultDuplicateEvery, "Replay every Nth attempt with the previous idempotency key, 0 disables")
		players        = flag.String("players", "Alice Smith,Bob Jones", "Comma separated player names")
		dates          = flag.String("dates", "2024-06-01,2024-06-03", "Comma separated round dates, YYYY-MM-DD")
		basePrice      = flag.String("base-price", "75", "Base price the service runs with")
		workers        = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout        = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile     = flag.String("output", "", "Output file for results (default: booking_results_TIMESTAMP.json)")
		logFile        = flag.String("log", "", "Log file for test output (default: load_log_TIMESTAMP.log)")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	base, err := decimal.NewFromString(*basePrice)
	if err != nil {
		_, _ = os.Stderr.WriteString("Invalid base price: " + err.Error() + "\n")
		os.Exit(2)
	}

	closer, err := loadtest.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &loadtest.Config{
		BaseURL:        strings.TrimRight(*baseURL, "/"),
		NumBookings:    *numBookings,
		DuplicateEvery: *duplicateEvery,
		Players:        splitList(*players),
		Dates:          splitList(*dates),
		Workers:        *workers,
		Timeout:        *timeout,
		BasePrice:      base,
		OutputFile:     *outputFile,
		LogFile:        *logFile,
		Verbose:        *verbose,
	}

	if err := loadtest.Run(ctx, config); err != nil {
		_, _ = os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		cancel()
		_ = closer.Close()
		os.Exit(1)
	}
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
