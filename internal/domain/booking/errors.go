package booking

import (
	"errors"
	"fmt"

	"github.com/okian/fairway/internal/domain/model"
)

// Sentinel kinds for booking errors.
var (
	ErrBookingFailed  = errors.New("booking creation failed")
	ErrPlayerNotFound = model.ErrPlayerNotFound
	ErrNoWeather      = model.ErrWeatherNotFound
	ErrInvalidTeeTime = errors.New("tee time hour must be within 0..23")
)

// Stage names the step of booking creation that failed.
type Stage string

// Booking creation stages, in execution order.
const (
	StagePredict  Stage = "predict"
	StageLookup   Stage = "lookup_player"
	StageTeeTime  Stage = "tee_time"
	StageInsert   Stage = "insert"
	StageRetrieve Stage = "retrieve_id"
)

// Error reports a failed booking. It matches ErrBookingFailed with errors.Is
// and unwraps to the underlying cause.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrBookingFailed.Error(), e.Stage, e.Err)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrBookingFailed.
func (e *Error) Is(target error) bool { return target == ErrBookingFailed }

func failed(stage Stage, err error) error {
	return &Error{Stage: stage, Err: err}
}
