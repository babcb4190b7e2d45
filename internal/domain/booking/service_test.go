package booking_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/fairway/internal/domain/booking"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/pricing"
	"github.com/okian/fairway/internal/domain/scoring"
	"github.com/okian/fairway/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type fakeScorer struct {
	score int
	err   error
	calls int
}

func (f *fakeScorer) Score(_ context.Context, _ scoring.Input) (scoring.Result, error) {
	f.calls++
	if f.err != nil {
		return scoring.Result{}, f.err
	}
	return scoring.Result{Score: f.score, Raw: float64(f.score)}, nil
}

type fakeStore struct {
	players   map[string]int64
	bookings  []model.Booking
	lookupErr error
	insertErr error
	lastErr   error
}

func (f *fakeStore) LookupPlayerID(_ context.Context, name string) (int64, bool, error) {
	if f.lookupErr != nil {
		return 0, false, f.lookupErr
	}
	id, ok := f.players[name]
	return id, ok, nil
}

func (f *fakeStore) InsertBooking(_ context.Context, b model.Booking) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	b.ID = int64(len(f.bookings) + 1)
	f.bookings = append(f.bookings, b)
	return nil
}

func (f *fakeStore) LastInsertedBookingID(_ context.Context, playerID int64) (int64, error) {
	if f.lastErr != nil {
		return 0, f.lastErr
	}
	var last int64
	for _, b := range f.bookings {
		if b.PlayerID == playerID && b.ID > last {
			last = b.ID
		}
	}
	return last, nil
}

func TestService_Create(t *testing.T) {
	Convey("Given a booking service with one known player", t, func() {
		now := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
		scorer := &fakeScorer{score: 88}
		store := &fakeStore{players: map[string]int64{"Ada Lovelace": 7}}
		svc := booking.NewService(scorer, pricing.New(), store,
			booking.WithClock(func() time.Time { return now }),
			booking.WithLocation(time.UTC),
		)

		req := booking.Request{
			PlayerName:  "Ada Lovelace",
			Date:        time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC),
			TeeTimeHour: 9,
			Cart:        true,
			Features:    model.FeatureVector{RoundNumber: 20, Handicap: 2, AvgTemp: 10, WindSpeed: 5, DayOfWeek: 6},
		}

		Convey("When the booking succeeds", func() {
			result, err := svc.Create(context.Background(), req)

			Convey("Then the id, score and price are returned", func() {
				So(err, ShouldBeNil)
				So(result.BookingID, ShouldEqual, 1)
				So(result.PredictedScore, ShouldEqual, 88)
				So(result.Price.String(), ShouldEqual, "100")
			})

			Convey("Then the stored row is confirmed with a composed tee time", func() {
				So(len(store.bookings), ShouldEqual, 1)
				b := store.bookings[0]
				So(b.PlayerID, ShouldEqual, 7)
				So(b.Status, ShouldEqual, model.BookingConfirmed)
				So(b.TeeTime, ShouldEqual, time.Date(2024, 5, 4, 9, 0, 0, 0, time.UTC))
				So(b.RoundDate, ShouldEqual, time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC))
				So(b.CreatedAt, ShouldEqual, now)
				So(b.Cart, ShouldBeTrue)
			})
		})

		Convey("When the player is unknown", func() {
			req.PlayerName = "Nobody"
			_, err := svc.Create(context.Background(), req)

			Convey("Then a booking error wraps player not found and nothing is stored", func() {
				So(err, ShouldNotBeNil)
				So(strings.HasPrefix(err.Error(), "booking creation failed"), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "player not found")
				So(errors.Is(err, booking.ErrBookingFailed), ShouldBeTrue)
				So(errors.Is(err, booking.ErrPlayerNotFound), ShouldBeTrue)
				So(store.bookings, ShouldBeEmpty)

				var berr *booking.Error
				So(errors.As(err, &berr), ShouldBeTrue)
				So(berr.Stage, ShouldEqual, booking.StageLookup)
			})
		})

		Convey("When prediction fails", func() {
			scorer.err = model.ErrInvalidFeatures
			_, err := svc.Create(context.Background(), req)

			Convey("Then the predict stage is reported", func() {
				var berr *booking.Error
				So(errors.As(err, &berr), ShouldBeTrue)
				So(berr.Stage, ShouldEqual, booking.StagePredict)
				So(errors.Is(err, model.ErrInvalidFeatures), ShouldBeTrue)
				So(store.bookings, ShouldBeEmpty)
			})
		})

		Convey("When the tee time hour is out of range", func() {
			req.TeeTimeHour = 24
			_, err := svc.Create(context.Background(), req)

			Convey("Then it fails before inserting", func() {
				So(errors.Is(err, booking.ErrInvalidTeeTime), ShouldBeTrue)
				So(errors.Is(err, booking.ErrBookingFailed), ShouldBeTrue)
				So(store.bookings, ShouldBeEmpty)
			})
		})

		Convey("When the store is unavailable during lookup", func() {
			store.lookupErr = errors.New("connection refused")
			_, err := svc.Create(context.Background(), req)

			Convey("Then the cause is wrapped", func() {
				So(errors.Is(err, booking.ErrBookingFailed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "connection refused")
			})
		})

		Convey("When the insert fails", func() {
			store.insertErr = errors.New("disk full")
			_, err := svc.Create(context.Background(), req)

			Convey("Then the insert stage is reported", func() {
				var berr *booking.Error
				So(errors.As(err, &berr), ShouldBeTrue)
				So(berr.Stage, ShouldEqual, booking.StageInsert)
			})
		})

		Convey("When retrieving the id fails after the insert", func() {
			store.lastErr = errors.New("timeout")
			_, err := svc.Create(context.Background(), req)

			Convey("Then the row remains and the retrieve stage is reported", func() {
				var berr *booking.Error
				So(errors.As(err, &berr), ShouldBeTrue)
				So(berr.Stage, ShouldEqual, booking.StageRetrieve)
				So(len(store.bookings), ShouldEqual, 1)
			})
		})
	})
}

func TestComposeTeeTime(t *testing.T) {
	Convey("Given a date with a time component", t, func() {
		d := time.Date(2024, 7, 2, 17, 45, 0, 0, time.UTC)

		Convey("When composing hour 0 and hour 23", func() {
			_, early, errEarly := booking.ComposeTeeTime(d, 0, time.UTC)
			_, late, errLate := booking.ComposeTeeTime(d, 23, time.UTC)

			Convey("Then the date is kept and the clock replaced", func() {
				So(errEarly, ShouldBeNil)
				So(errLate, ShouldBeNil)
				So(early, ShouldEqual, time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC))
				So(late, ShouldEqual, time.Date(2024, 7, 2, 23, 0, 0, 0, time.UTC))
			})
		})

		Convey("When the hour is negative", func() {
			_, _, err := booking.ComposeTeeTime(d, -1, time.UTC)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, booking.ErrInvalidTeeTime), ShouldBeTrue)
			})
		})
	})
}

func TestService_CreateLogsBooking(t *testing.T) {
	Convey("Given a booking service logging JSON to a buffer", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithFormat(logger.FormatJSON), logger.WithWriter(&buf)), ShouldBeNil)
		defer func() { _ = logger.Init() }()

		store := &fakeStore{players: map[string]int64{"Ada Lovelace": 7}}
		svc := booking.NewService(&fakeScorer{score: 90}, pricing.New(), store, booking.WithLocation(time.UTC))

		Convey("When a booking with a cart is created", func() {
			_, err := svc.Create(context.Background(), booking.Request{
				PlayerName:  "Ada Lovelace",
				Date:        time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
				TeeTimeHour: 14,
				Cart:        true,
				Features:    model.FeatureVector{RoundNumber: 3, Handicap: 10, AvgTemp: 18, WindSpeed: 4, DayOfWeek: 0},
			})

			Convey("Then the log line carries the cart flag", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, `"msg":"booking created"`)
				So(buf.String(), ShouldContainSubstring, `"cart":true`)
			})
		})
	})
}
