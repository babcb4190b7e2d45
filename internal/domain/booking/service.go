// Package booking orchestrates tee-time booking: it predicts the player's
// score, prices the tee time and records the booking through a Store.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/pricing"
	"github.com/okian/fairway/internal/domain/scoring"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Store is the persistence the orchestrator needs.
type Store interface {
	// LookupPlayerID resolves a player name. found is false when no player has the name.
	LookupPlayerID(ctx context.Context, name string) (id int64, found bool, err error)
	// InsertBooking persists a new booking row.
	InsertBooking(ctx context.Context, b model.Booking) error
	// LastInsertedBookingID returns the highest booking id recorded for the player.
	LastInsertedBookingID(ctx context.Context, playerID int64) (int64, error)
}

// Request is a booking to create.
type Request struct {
	PlayerName  string
	Date        time.Time
	TeeTimeHour int
	Cart        bool
	Features    model.FeatureVector
}

// Result is a created booking.
type Result struct {
	BookingID      int64
	PredictedScore int
	Price          decimal.Decimal
	Booking        model.Booking
}

// Service creates bookings. Dependencies are fixed at construction.
type Service struct {
	scorer scoring.Scorer
	pricer pricing.Pricer
	store  Store

	now    func() time.Time
	loc    *time.Location
	logger logger.Logger
}

// NewService creates a booking service.
func NewService(scorer scoring.Scorer, pricer pricing.Pricer, store Store, opts ...Option) *Service {
	s := &Service{
		scorer: scorer,
		pricer: pricer,
		store:  store,
		now:    time.Now,
		loc:    time.Local,
		logger: logger.Get().Named("booking"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create predicts, prices and persists a booking. The insert and the id
// lookup are not transactional: a failure between them leaves a row whose
// id was never reported.
func (s *Service) Create(ctx context.Context, req Request) (Result, error) {
	prediction, err := s.scorer.Score(ctx, scoring.Input{Features: req.Features})
	if err != nil {
		return Result{}, s.fail(ctx, req, StagePredict, err)
	}

	price := s.pricer.Price(req.TeeTimeHour, req.Cart, req.Features)

	playerID, found, err := s.store.LookupPlayerID(ctx, req.PlayerName)
	if err != nil {
		return Result{}, s.fail(ctx, req, StageLookup, err)
	}
	if !found {
		return Result{}, s.fail(ctx, req, StageLookup, fmt.Errorf("%w: %q", ErrPlayerNotFound, req.PlayerName))
	}

	roundDate, teeTime, err := ComposeTeeTime(req.Date, req.TeeTimeHour, s.loc)
	if err != nil {
		return Result{}, s.fail(ctx, req, StageTeeTime, err)
	}

	b := model.Booking{
		PlayerID:       playerID,
		RoundDate:      roundDate,
		TeeTime:        teeTime,
		Cart:           req.Cart,
		PredictedScore: prediction.Score,
		Price:          price,
		Status:         model.BookingConfirmed,
		CreatedAt:      s.now(),
	}
	if err := s.store.InsertBooking(ctx, b); err != nil {
		return Result{}, s.fail(ctx, req, StageInsert, err)
	}

	id, err := s.store.LastInsertedBookingID(ctx, playerID)
	if err != nil {
		return Result{}, s.fail(ctx, req, StageRetrieve, err)
	}
	b.ID = id

	metrics.RecordBookingCreated()
	metrics.RecordPrice(price.InexactFloat64())
	s.logger.Info(ctx, "booking created",
		logger.Any("booking_id", id),
		logger.Any("player_id", playerID),
		logger.Int("predicted_score", prediction.Score),
		logger.String("price", price.String()),
		logger.String("tee_time", teeTime.Format(time.RFC3339)),
		logger.Bool("cart", req.Cart),
	)

	return Result{
		BookingID:      id,
		PredictedScore: prediction.Score,
		Price:          price,
		Booking:        b,
	}, nil
}

func (s *Service) fail(ctx context.Context, req Request, stage Stage, err error) error {
	metrics.RecordBookingFailure(string(stage))
	s.logger.Error(ctx, "booking creation failed",
		logger.String("stage", string(stage)),
		logger.String("player", req.PlayerName),
		logger.Error(err),
	)
	return failed(stage, err)
}

// ComposeTeeTime returns the calendar date of d and the tee time at hour on
// that date, both in loc.
func ComposeTeeTime(d time.Time, hour int, loc *time.Location) (time.Time, time.Time, error) {
	if hour < 0 || hour > 23 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: got %d", ErrInvalidTeeTime, hour)
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc), time.Date(y, m, day, hour, 0, 0, 0, loc), nil
}
