package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx, repository.WithMetricsUpdateInterval(10*time.Millisecond))
		defer store.Close()

		Convey("When players are created", func() {
			ada, err := store.CreatePlayer(ctx, "Ada Lovelace", 8.4)
			So(err, ShouldBeNil)
			bob, err := store.CreatePlayer(ctx, "Bob Jones", 14)
			So(err, ShouldBeNil)

			Convey("Then ids are assigned sequentially and lookups resolve them", func() {
				So(ada.ID, ShouldEqual, 1)
				So(bob.ID, ShouldEqual, 2)
				id, found, err := store.LookupPlayerID(ctx, "Bob Jones")
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
				So(id, ShouldEqual, 2)
			})

			Convey("Then an unknown name is reported as not found", func() {
				_, found, err := store.LookupPlayerID(ctx, "Nobody")
				So(err, ShouldBeNil)
				So(found, ShouldBeFalse)
				_, err = store.PlayerByName(ctx, "Nobody")
				So(errors.Is(err, model.ErrPlayerNotFound), ShouldBeTrue)
			})

			Convey("Then a duplicate name is rejected", func() {
				_, err := store.CreatePlayer(ctx, "Ada Lovelace", 1)
				So(errors.Is(err, model.ErrPlayerExists), ShouldBeTrue)
			})
		})

		Convey("When a player has rounds on days with and without weather", func() {
			p, _ := store.CreatePlayer(ctx, "Ada Lovelace", 8.4)
			So(store.PutWeather(ctx, model.Weather{Date: day(2022, 6, 1), AvgTemp: 18, WindSpeed: 4}), ShouldBeNil)
			So(store.AddRound(ctx, model.Round{PlayerID: p.ID, Date: day(2022, 6, 3), Score: 84}), ShouldBeNil)
			So(store.AddRound(ctx, model.Round{PlayerID: p.ID, Date: day(2022, 6, 1), Score: 88}), ShouldBeNil)

			Convey("Then rounds are counted and listed by date with weather joined", func() {
				n, err := store.RoundCount(ctx, p.ID)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)

				rounds, err := store.PlayerRounds(ctx, p.ID)
				So(err, ShouldBeNil)
				So(len(rounds), ShouldEqual, 2)
				So(rounds[0].Score, ShouldEqual, 88)
				So(rounds[0].Weather, ShouldNotBeNil)
				So(rounds[0].Weather.AvgTemp, ShouldEqual, 18)
				So(rounds[1].Weather, ShouldBeNil)
			})

			Convey("Then weather lookups miss on unrecorded days", func() {
				_, err := store.WeatherOn(ctx, day(2022, 6, 3))
				So(errors.Is(err, model.ErrWeatherNotFound), ShouldBeTrue)
			})
		})

		Convey("When a round references an unknown player", func() {
			err := store.AddRound(ctx, model.Round{PlayerID: 99, Date: day(2022, 6, 3), Score: 84})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrPlayerNotFound), ShouldBeTrue)
			})
		})

		Convey("When bookings are inserted for two players", func() {
			for _, pid := range []int64{1, 2, 1} {
				So(store.InsertBooking(ctx, model.Booking{PlayerID: pid, Price: decimal.NewFromInt(75), Status: model.BookingConfirmed}), ShouldBeNil)
			}

			Convey("Then the last id per player is the highest one", func() {
				id, err := store.LastInsertedBookingID(ctx, 1)
				So(err, ShouldBeNil)
				So(id, ShouldEqual, 3)
				id, err = store.LastInsertedBookingID(ctx, 2)
				So(err, ShouldBeNil)
				So(id, ShouldEqual, 2)
			})

			Convey("Then a player without bookings has no last id", func() {
				_, err := store.LastInsertedBookingID(ctx, 5)
				So(err, ShouldNotBeNil)
			})

			Convey("Then counts reflect the bookings", func() {
				c, err := store.Counts(ctx)
				So(err, ShouldBeNil)
				So(c.Bookings, ShouldEqual, 3)
				So(len(store.Bookings()), ShouldEqual, 3)
			})
		})

		Convey("When Close is called twice", func() {
			Convey("Then it does not panic", func() {
				So(store.Close(), ShouldBeNil)
				So(store.Close(), ShouldBeNil)
			})
		})
	})
}
