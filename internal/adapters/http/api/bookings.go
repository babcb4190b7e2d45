package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/fairway/internal/domain/types"
)

// HeaderIdempotencyKey names the header that makes POST /bookings idempotent.
const HeaderIdempotencyKey = "Idempotency-Key"

// BookingDependencies defines the interface for booking creation.
type BookingDependencies interface {
	Book(ctx context.Context, idempotencyKey string, req types.BookingRequest) (types.BookingResponse, error)
}

// BookingsHandler handles booking requests.
type BookingsHandler struct {
	deps     BookingDependencies
	validate *validator.Validate
}

// NewBookingsHandler creates a new bookings handler.
func NewBookingsHandler(deps BookingDependencies, v *validator.Validate) *BookingsHandler {
	if v == nil {
		v = newValidator()
	}
	return &BookingsHandler{deps: deps, validate: v}
}

// HandleCreateBooking handles POST /bookings requests.
func (h *BookingsHandler) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req types.BookingRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	resp, err := h.deps.Book(r.Context(), key, req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}
