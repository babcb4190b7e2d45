package api

import (
	"errors"
	"net/http"

	"github.com/okian/fairway/internal/domain/booking"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// classify maps an error to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate_request"
	case errors.Is(err, model.ErrPlayerExists):
		return http.StatusConflict, "player_exists"
	case errors.Is(err, model.ErrPlayerNotFound):
		return http.StatusNotFound, "player_not_found"
	case errors.Is(err, model.ErrWeatherNotFound):
		return http.StatusNotFound, "weather_not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, types.ErrInvalidRequest),
		errors.Is(err, model.ErrInvalidFeatures),
		errors.Is(err, booking.ErrInvalidTeeTime):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, types.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
