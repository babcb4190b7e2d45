package scoring_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/fairway/internal/domain/features"
	"github.com/okian/fairway/internal/domain/model"
	scoring "github.com/okian/fairway/internal/domain/scoring"
	"github.com/okian/fairway/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// identityScaler leaves the scaled columns unchanged.
func identityScaler() *features.Scaler {
	cols := features.ScaledColumns()
	s := &features.Scaler{Columns: cols, Mean: make([]float64, len(cols)), Scale: make([]float64, len(cols))}
	for i := range s.Scale {
		s.Scale[i] = 1
	}
	return s
}

func allColumns() []string {
	return append(model.FeatureColumns(), features.EngineeredColumns()...)
}

// handicapModel predicts 72 plus the handicap.
func handicapModel(names []string) *scoring.LinearModel {
	m := &scoring.LinearModel{Intercept: 72, Coefficients: make([]float64, len(names))}
	for i, n := range names {
		if n == model.ColHandicap {
			m.Coefficients[i] = 1
		}
	}
	return m
}

func TestModelScorer_Score(t *testing.T) {
	Convey("Given a scorer over a linear artifact", t, func() {
		names := allColumns()
		artifact, err := scoring.NewArtifact(names, identityScaler(), handicapModel(names))
		So(err, ShouldBeNil)
		scorer := scoring.NewModelScorer(artifact)

		fv := model.FeatureVector{RoundNumber: 4, Handicap: 12.5, AvgTemp: 18, WindSpeed: 6, DayOfWeek: 2}

		Convey("When the raw prediction ends in .5 with an even floor", func() {
			result, err := scorer.Score(context.Background(), scoring.Input{Features: fv})

			Convey("Then it rounds half to even", func() {
				So(err, ShouldBeNil)
				So(result.Raw, ShouldAlmostEqual, 84.5, 1e-9)
				So(result.Score, ShouldEqual, 84)
				So(result.ZeroFilled, ShouldBeEmpty)
			})
		})

		Convey("When the raw prediction ends in .5 with an odd floor", func() {
			fv.Handicap = 13.5
			result, err := scorer.Score(context.Background(), scoring.Input{Features: fv})

			Convey("Then it rounds up to the even neighbour", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldEqual, 86)
			})
		})

		Convey("When the same input is scored twice", func() {
			a, errA := scorer.Score(context.Background(), scoring.Input{Features: fv})
			b, errB := scorer.Score(context.Background(), scoring.Input{Features: fv})

			Convey("Then the results are identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldResemble, b)
			})
		})

		Convey("When the features are invalid", func() {
			fv.DayOfWeek = 9
			_, err := scorer.Score(context.Background(), scoring.Input{Features: fv})

			Convey("Then it should fail validation", func() {
				So(errors.Is(err, model.ErrInvalidFeatures), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := scorer.Score(ctx, scoring.Input{Features: fv})

			Convey("Then it should return a context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given an artifact expecting a column the transformer never produces", t, func() {
		names := append(allColumns(), "course_difficulty")
		m := handicapModel(names)
		m.Coefficients[len(names)-1] = 100
		artifact, err := scoring.NewArtifact(names, identityScaler(), m)
		So(err, ShouldBeNil)
		scorer := scoring.NewModelScorer(artifact)

		Convey("When scoring", func() {
			result, err := scorer.Score(context.Background(), scoring.Input{
				Features: model.FeatureVector{RoundNumber: 1, Handicap: 10, AvgTemp: 20, DayOfWeek: 0},
			})

			Convey("Then the column is zero-filled and reported", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldEqual, 82)
				So(result.ZeroFilled, ShouldResemble, []string{"course_difficulty"})
			})
		})
	})

	Convey("Given an artifact whose scaler shifts handicap", t, func() {
		names := allColumns()
		scaler := identityScaler()
		scaler.Mean[1] = 10
		scaler.Scale[1] = 2
		artifact, err := scoring.NewArtifact(names, scaler, handicapModel(names))
		So(err, ShouldBeNil)
		scorer := scoring.NewModelScorer(artifact)

		Convey("When scoring", func() {
			result, err := scorer.Score(context.Background(), scoring.Input{
				Features: model.FeatureVector{Handicap: 16, AvgTemp: 20},
			})

			Convey("Then the model sees the scaled value", func() {
				So(err, ShouldBeNil)
				So(result.Raw, ShouldAlmostEqual, 75.0, 1e-9)
			})
		})
	})
}

func TestGradientBoosting(t *testing.T) {
	Convey("Given a boosted ensemble of two stumps", t, func() {
		gb := &scoring.GradientBoosting{
			Init:         80,
			LearningRate: 0.5,
			Trees: []scoring.Tree{
				{Nodes: []scoring.Node{
					{Feature: 0, Threshold: 10, Left: 1, Right: 2},
					{Left: -1, Right: -1, Value: -4},
					{Left: -1, Right: -1, Value: 6},
				}},
				{Nodes: []scoring.Node{
					{Feature: 1, Threshold: 0.5, Left: 1, Right: 2},
					{Left: -1, Right: -1, Value: 0},
					{Left: -1, Right: -1, Value: 2},
				}},
			},
		}
		So(gb.Validate(2), ShouldBeNil)

		Convey("When the row goes left in both trees", func() {
			v, err := gb.Predict([]float64{10, 0})

			Convey("Then the threshold is inclusive on the left", func() {
				So(err, ShouldBeNil)
				So(v, ShouldAlmostEqual, 78.0, 1e-9)
			})
		})

		Convey("When the row goes right in both trees", func() {
			v, err := gb.Predict([]float64{11, 1})

			Convey("Then both right leaves contribute", func() {
				So(err, ShouldBeNil)
				So(v, ShouldAlmostEqual, 84.0, 1e-9)
			})
		})

		Convey("When the row has the wrong width", func() {
			_, err := gb.Predict([]float64{1})

			Convey("Then it fails with an arity error", func() {
				So(errors.Is(err, scoring.ErrArity), ShouldBeTrue)
			})
		})
	})

	Convey("Given a tree whose child points backwards", t, func() {
		gb := &scoring.GradientBoosting{
			LearningRate: 1,
			Trees: []scoring.Tree{{Nodes: []scoring.Node{
				{Feature: 0, Threshold: 1, Left: 0, Right: 1},
				{Left: -1, Right: -1, Value: 1},
			}}},
		}

		Convey("Then validation rejects it", func() {
			So(errors.Is(gb.Validate(1), scoring.ErrInvalidArtifact), ShouldBeTrue)
		})
	})
}

func TestArtifact(t *testing.T) {
	Convey("Given a linear artifact", t, func() {
		names := allColumns()
		artifact, err := scoring.NewArtifact(names, identityScaler(), handicapModel(names))
		So(err, ShouldBeNil)

		Convey("When written and loaded back", func() {
			path := filepath.Join(t.TempDir(), "artifact.json")
			So(scoring.WriteArtifact(path, artifact), ShouldBeNil)
			loaded, err := scoring.LoadArtifact(path)

			Convey("Then it predicts the same way", func() {
				So(err, ShouldBeNil)
				So(loaded.FeatureNames, ShouldResemble, names)
				So(loaded.Model.Kind(), ShouldEqual, scoring.KindLinear)
				row := make([]float64, len(names))
				row[1] = 3
				v, err := loaded.Model.Predict(row)
				So(err, ShouldBeNil)
				So(v, ShouldAlmostEqual, 75.0, 1e-9)
			})
		})
	})

	Convey("Given malformed artifacts", t, func() {
		Convey("When the model kind is unknown", func() {
			_, err := scoring.ParseArtifact([]byte(`{"feature_names":["a"],"scaler":null,"model":{"kind":"forest"}}`))

			Convey("Then it fails with an unknown kind error", func() {
				So(errors.Is(err, scoring.ErrUnknownModelKind), ShouldBeTrue)
			})
		})

		Convey("When the coefficients do not match the feature names", func() {
			_, err := scoring.NewArtifact(allColumns(), identityScaler(), &scoring.LinearModel{Coefficients: []float64{1}})

			Convey("Then it fails as an invalid artifact", func() {
				So(errors.Is(err, scoring.ErrInvalidArtifact), ShouldBeTrue)
			})
		})

		Convey("When the scaler covers the wrong columns", func() {
			names := allColumns()
			scaler := &features.Scaler{Columns: []string{model.ColHandicap}, Mean: []float64{0}, Scale: []float64{1}}
			_, err := scoring.NewArtifact(names, scaler, handicapModel(names))

			Convey("Then it fails as an invalid artifact", func() {
				So(errors.Is(err, scoring.ErrInvalidArtifact), ShouldBeTrue)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := scoring.LoadArtifact(filepath.Join(t.TempDir(), "missing.json"))

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestTrain(t *testing.T) {
	Convey("Given rows where score grows with handicap", t, func() {
		columns := append(model.FeatureColumns(), model.ColScore)
		frame, err := features.NewFrame(columns,
			[]float64{1, 5, 20, 0, 5, 0, 77},
			[]float64{2, 10, 18, 0.2, 8, 1, 82},
			[]float64{3, 15, 12, 1.0, 18, 5, 87},
			[]float64{4, 20, 22, 0, 3, 6, 92},
			[]float64{5, 8, 16, 0.4, 12, 2, 80},
			[]float64{6, 12, 10, 0.8, 20, 3, 84},
			[]float64{7, 3, 25, 0, 2, 4, 75},
			[]float64{8, 18, 14, 0.6, 16, 6, 90},
		)
		So(err, ShouldBeNil)

		Convey("When training a linear artifact", func() {
			artifact, err := scoring.Train(frame, scoring.DefaultRidge)
			So(err, ShouldBeNil)

			Convey("Then the artifact covers the engineered columns", func() {
				So(artifact.FeatureNames, ShouldResemble, allColumns())
				So(artifact.Model.Kind(), ShouldEqual, scoring.KindLinear)
			})

			Convey("Then it reproduces a training row", func() {
				scorer := scoring.NewModelScorer(artifact)
				result, err := scorer.Score(context.Background(), scoring.Input{
					Features: model.FeatureVector{RoundNumber: 4, Handicap: 20, AvgTemp: 22, WindSpeed: 3, DayOfWeek: 6},
				})
				So(err, ShouldBeNil)
				So(result.Raw, ShouldAlmostEqual, 92.0, 0.5)
			})
		})

		Convey("When the frame has no rows", func() {
			empty, _ := features.NewFrame(columns)
			_, err := scoring.Train(empty, scoring.DefaultRidge)

			Convey("Then training fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
