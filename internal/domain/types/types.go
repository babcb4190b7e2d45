// Package types contains the request and response shapes of the HTTP API.
package types

import (
	"time"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// BookingRequest is the body of POST /bookings.
type BookingRequest struct {
	PlayerName  string `json:"player_name" validate:"required,max=100"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	TeeTimeHour *int   `json:"tee_time_hour" validate:"required,gte=0,lte=23"`
	Cart        bool   `json:"cart"`

	// NewPlayer registers PlayerName with Handicap before booking.
	NewPlayer bool     `json:"new_player"`
	Handicap  *float64 `json:"handicap" validate:"required_if=NewPlayer true,omitempty,gte=-10,lte=54"`
}

// Quote returns the request without its registration fields.
func (r BookingRequest) Quote() QuoteRequest {
	return QuoteRequest{
		PlayerName:  r.PlayerName,
		Date:        r.Date,
		TeeTimeHour: r.TeeTimeHour,
		Cart:        r.Cart,
	}
}

// QuoteRequest is the body of POST /quotes.
type QuoteRequest struct {
	PlayerName  string `json:"player_name" validate:"required,max=100"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	TeeTimeHour *int   `json:"tee_time_hour" validate:"required,gte=0,lte=23"`
	Cart        bool   `json:"cart"`
}

// BookingResponse is returned for a created booking.
type BookingResponse struct {
	BookingID      int64               `json:"booking_id"`
	PlayerName     string              `json:"player_name"`
	TeeTime        time.Time           `json:"tee_time"`
	PredictedScore int                 `json:"predicted_score"`
	Price          decimal.Decimal     `json:"price"`
	Features       model.FeatureVector `json:"features"`
}

// QuoteResponse is a priced tee time that was not booked.
type QuoteResponse struct {
	PlayerName     string               `json:"player_name"`
	PredictedScore int                  `json:"predicted_score"`
	Base           decimal.Decimal      `json:"base_price"`
	Price          decimal.Decimal      `json:"price"`
	Adjustments    []pricing.Adjustment `json:"adjustments"`
	Features       model.FeatureVector  `json:"features"`
}

// PlayerProfile is a player with their round history.
type PlayerProfile struct {
	Player       model.Player  `json:"player"`
	RoundsPlayed int           `json:"rounds_played"`
	AverageScore float64       `json:"average_score"`
	Rounds       []model.Round `json:"rounds"`
}

// Stats describes the running service.
type Stats struct {
	Started         bool   `json:"started"`
	Store           string `json:"store"`
	WeatherCache    bool   `json:"weather_cache"`
	ModelKind       string `json:"model_kind"`
	ModelFeatures   int    `json:"model_features"`
	IdempotencyKeys int64  `json:"idempotency_keys"`
	Players         int    `json:"players"`
	Rounds          int    `json:"rounds"`
	WeatherDays     int    `json:"weather_days"`
	Bookings        int    `json:"bookings"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
