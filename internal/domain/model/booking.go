package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state recorded on a booking row.
type BookingStatus string

// BookingConfirmed is the only status the booking path writes.
const BookingConfirmed BookingStatus = "confirmed"

// Booking is a reserved tee time with its predicted score and price.
type Booking struct {
	ID             int64
	PlayerID       int64
	RoundDate      time.Time // calendar date of the round
	TeeTime        time.Time // RoundDate plus the tee time hour
	Cart           bool
	PredictedScore int
	Price          decimal.Decimal
	Status         BookingStatus
	CreatedAt      time.Time
}

// Player is a registered golfer.
type Player struct {
	ID       int64   `json:"player_id"`
	Name     string  `json:"player_name"`
	Handicap float64 `json:"handicap"`
}

// Weather holds the daily conditions used as model features.
type Weather struct {
	Date          time.Time `json:"date"`
	AvgTemp       float64   `json:"avg_temp"`
	Precipitation float64   `json:"precipitation"`
	WindSpeed     float64   `json:"wind_speed"`
}

// Round is a played round. Weather is nil when no conditions were recorded for the date.
type Round struct {
	PlayerID int64     `json:"player_id"`
	Date     time.Time `json:"round_date"`
	Score    int       `json:"score"`
	Weather  *Weather  `json:"weather,omitempty"`
}
