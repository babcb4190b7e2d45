package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/okian/fairway/internal/domain/types"
)

// QuoteDependencies defines the interface for price quotes.
type QuoteDependencies interface {
	Quote(ctx context.Context, req types.QuoteRequest) (types.QuoteResponse, error)
}

// QuotesHandler handles quote requests.
type QuotesHandler struct {
	deps     QuoteDependencies
	validate *validator.Validate
}

// NewQuotesHandler creates a new quotes handler.
func NewQuotesHandler(deps QuoteDependencies, v *validator.Validate) *QuotesHandler {
	if v == nil {
		v = newValidator()
	}
	return &QuotesHandler{deps: deps, validate: v}
}

// HandleCreateQuote handles POST /quotes requests.
func (h *QuotesHandler) HandleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req types.QuoteRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	resp, err := h.deps.Quote(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
