package features_test

import (
	"errors"
	"testing"

	"github.com/okian/fairway/internal/domain/features"
	"github.com/okian/fairway/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEngineer(t *testing.T) {
	Convey("Given a frame of raw feature vectors", t, func() {
		in := features.FromVectors(
			model.FeatureVector{RoundNumber: 1, Handicap: 10, AvgTemp: 20, Precipitation: 0, WindSpeed: 5, DayOfWeek: 1},
			model.FeatureVector{RoundNumber: 3, Handicap: 18, AvgTemp: 10, Precipitation: 0.8, WindSpeed: 20, DayOfWeek: 5},
			model.FeatureVector{RoundNumber: 7, Handicap: 4, AvgTemp: 14.9, Precipitation: 0.5, WindSpeed: 16, DayOfWeek: 4},
		)

		Convey("When engineering in inference mode", func() {
			out, err := features.Engineer(in)
			So(err, ShouldBeNil)

			Convey("Then the row count and input columns are preserved", func() {
				So(out.Len(), ShouldEqual, 3)
				expected := append(model.FeatureColumns(), features.EngineeredColumns()...)
				So(out.Columns(), ShouldResemble, expected)
			})

			Convey("Then wind_precip multiplies precipitation by wind speed", func() {
				col, _ := out.Column(features.ColWindPrecip)
				So(col[0], ShouldEqual, 0)
				So(col[1], ShouldAlmostEqual, 16.0, 1e-9)
				So(col[2], ShouldAlmostEqual, 8.0, 1e-9)
			})

			Convey("Then wind_cold keeps wind speed only below 15 degrees", func() {
				col, _ := out.Column(features.ColWindCold)
				So(col, ShouldResemble, []float64{0, 20, 16})
			})

			Convey("Then bad_weather_combo needs wind, rain and cold together", func() {
				col, _ := out.Column(features.ColBadWeatherCombo)
				// the third row has precipitation exactly 0.5, which is not > 0.5
				So(col, ShouldResemble, []float64{0, 1, 0})
			})

			Convey("Then weekend is set from day 5 upward", func() {
				col, _ := out.Column(features.ColWeekend)
				So(col, ShouldResemble, []float64{0, 1, 0})
			})

			Convey("Then the input frame is not modified", func() {
				So(in.Columns(), ShouldResemble, model.FeatureColumns())
				So(in.Has(model.ColScore), ShouldBeFalse)
				So(out.Has(model.ColScore), ShouldBeFalse)
			})

			Convey("Then no scaling is applied", func() {
				col, _ := out.Column(model.ColHandicap)
				So(col, ShouldResemble, []float64{10, 18, 4})
			})
		})

		Convey("When a required raw column is missing", func() {
			partial := in.Drop(model.ColWindSpeed)
			_, err := features.Engineer(partial)

			Convey("Then it should fail with a missing column error", func() {
				So(errors.Is(err, features.ErrMissingColumn), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, model.ColWindSpeed)
			})
		})

		Convey("When a day of week is outside the week or fractional", func() {
			for _, day := range []float64{7, 6.5, -1} {
				bad, err := features.NewFrame(model.FeatureColumns(), []float64{1, 10, 20, 0, 5, day})
				So(err, ShouldBeNil)
				_, err = features.Engineer(bad)
				So(errors.Is(err, model.ErrInvalidFeatures), ShouldBeTrue)

				training, err := features.NewFrame(features.TrainingColumns(), []float64{1, 10, 20, 0, 5, day, 80})
				So(err, ShouldBeNil)
				_, err = features.EngineerForTraining(training)
				So(errors.Is(err, model.ErrInvalidFeatures), ShouldBeTrue)
			}
		})
	})
}

func TestEngineerForTraining(t *testing.T) {
	Convey("Given training rows with a score column", t, func() {
		columns := append(model.FeatureColumns(), model.ColScore)
		in, err := features.NewFrame(columns,
			[]float64{1, 10, 20, 0, 5, 1, 85},
			[]float64{2, 12, 10, 1, 20, 6, 95},
			[]float64{3, 14, 15, 0, 10, 3, 90},
		)
		So(err, ShouldBeNil)

		Convey("When engineering in training mode", func() {
			set, err := features.EngineerForTraining(in)
			So(err, ShouldBeNil)

			Convey("Then the target is split from the inputs", func() {
				So(set.Y, ShouldResemble, []float64{85, 95, 90})
				So(set.X.Has(model.ColScore), ShouldBeFalse)
				So(set.X.Len(), ShouldEqual, 3)
				So(set.X.Has(features.ColWeekend), ShouldBeTrue)
			})

			Convey("Then the scaler covers exactly the numeric columns", func() {
				So(set.Scaler.Columns, ShouldResemble, features.ScaledColumns())
				So(set.Scaler.Mean[0], ShouldAlmostEqual, 2.0, 1e-9)
				So(set.Scaler.Validate(), ShouldBeNil)
			})

			Convey("Then the scaled columns have zero mean", func() {
				col, _ := set.X.Column(model.ColRoundNumber)
				So(col[0]+col[1]+col[2], ShouldAlmostEqual, 0.0, 1e-9)
				So(col[2], ShouldAlmostEqual, 1.224744871, 1e-6)
			})

			Convey("Then day of week and derived columns stay unscaled", func() {
				day, _ := set.X.Column(model.ColDayOfWeek)
				So(day, ShouldResemble, []float64{1, 6, 3})
				windPrecip, _ := set.X.Column(features.ColWindPrecip)
				So(windPrecip, ShouldResemble, []float64{0, 20, 0})
			})
		})

		Convey("When the score column is missing", func() {
			_, err := features.EngineerForTraining(in.Drop(model.ColScore))

			Convey("Then it should fail with a missing column error", func() {
				So(errors.Is(err, features.ErrMissingColumn), ShouldBeTrue)
			})
		})

		Convey("When the frame has no rows", func() {
			empty, _ := features.NewFrame(columns)
			_, err := features.EngineerForTraining(empty)

			Convey("Then fitting the scaler fails", func() {
				So(errors.Is(err, features.ErrEmptyFrame), ShouldBeTrue)
			})
		})
	})
}

func TestScaler(t *testing.T) {
	Convey("Given a fitted scaler", t, func() {
		scaler := &features.Scaler{
			Columns: []string{model.ColHandicap},
			Mean:    []float64{10},
			Scale:   []float64{2},
		}

		Convey("When transforming a frame", func() {
			f := features.FromVectors(model.FeatureVector{Handicap: 14, AvgTemp: 20, DayOfWeek: 2})
			So(scaler.Transform(f), ShouldBeNil)

			Convey("Then only the scaler's columns change", func() {
				handicap, _ := f.Column(model.ColHandicap)
				temp, _ := f.Column(model.ColAvgTemp)
				So(handicap[0], ShouldAlmostEqual, 2.0, 1e-9)
				So(temp[0], ShouldEqual, 20)
			})
		})

		Convey("When a constant column is fitted", func() {
			f := features.FromVectors(model.FeatureVector{Handicap: 5}, model.FeatureVector{Handicap: 5})
			fitted, err := features.FitScaler(f, model.ColHandicap)

			Convey("Then its scale falls back to one", func() {
				So(err, ShouldBeNil)
				So(fitted.Scale[0], ShouldEqual, 1)
			})
		})

		Convey("When the scaler is inconsistent", func() {
			bad := &features.Scaler{Columns: []string{"a", "b"}, Mean: []float64{0}, Scale: []float64{1, 1}}

			Convey("Then validation fails", func() {
				So(errors.Is(bad.Validate(), features.ErrInvalidScaler), ShouldBeTrue)
			})
		})
	})
}

func TestFrame(t *testing.T) {
	Convey("Given frame construction", t, func() {
		Convey("When a row has the wrong width", func() {
			_, err := features.NewFrame([]string{"a", "b"}, []float64{1})

			Convey("Then it should fail with a shape error", func() {
				So(errors.Is(err, features.ErrShapeMismatch), ShouldBeTrue)
			})
		})

		Convey("When columns are duplicated", func() {
			_, err := features.NewFrame([]string{"a", "a"})

			Convey("Then it should fail", func() {
				So(errors.Is(err, features.ErrDuplicateColumn), ShouldBeTrue)
			})
		})

		Convey("When reading a row in a custom order", func() {
			f, _ := features.NewFrame([]string{"a", "b"}, []float64{1, 2})
			row, err := f.Row(0, []string{"b", "a"})

			Convey("Then values follow the requested order", func() {
				So(err, ShouldBeNil)
				So(row, ShouldResemble, []float64{2, 1})
			})
		})
	})
}
