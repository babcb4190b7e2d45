package loadtest

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Generation ranges.
const (
	firstTeeHour = 6
	lastTeeHour  = 18
)

// Runner configuration constants.
const (
	ProgressInterval     = time.Second
	PercentageMultiplier = 100
	maxResponseBytes     = 1 << 20
)
