// Package scoring defines the contract for predicting a round score from a
// booking's feature vector using a pre-built scoring artifact.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/fairway/internal/domain/features"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// Input carries the raw features for one prediction.
type Input struct {
	Features model.FeatureVector
}

// Result contains the predicted score.
type Result struct {
	// Score is the model output rounded half to even.
	Score int
	// Raw is the unrounded model output.
	Raw float64
	// ZeroFilled lists expected feature columns that the engineered row lacked
	// and that were filled with zero.
	ZeroFilled []string
}

// Scorer predicts a score from an input.
type Scorer interface {
	// Score predicts a score, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// ModelScorer implements Scorer over a loaded Artifact. The artifact is
// read-only, so a ModelScorer is safe for concurrent use.
type ModelScorer struct {
	artifact *Artifact
	logger   logger.Logger
}

// NewModelScorer creates a scorer backed by artifact.
func NewModelScorer(artifact *Artifact, opts ...Option) *ModelScorer {
	s := &ModelScorer{
		artifact: artifact,
		logger:   logger.Get().Named("scoring"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score engineers the features, scales them with the artifact scaler, aligns
// them to the artifact's feature order and runs the model.
func (s *ModelScorer) Score(ctx context.Context, in Input) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictionLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	if err := in.Features.Validate(); err != nil {
		return Result{}, err
	}

	frame, err := features.Engineer(features.FromVectors(in.Features))
	if err != nil {
		return Result{}, fmt.Errorf("engineer features: %w", err)
	}
	if err := s.artifact.Scaler.Transform(frame); err != nil {
		return Result{}, fmt.Errorf("scale features: %w", err)
	}

	// Expected columns absent from the engineered row are zero-filled rather
	// than rejected. This hides training/inference drift, so it is reported.
	filled := make([]string, 0)
	for _, name := range s.artifact.FeatureNames {
		if frame.Has(name) {
			continue
		}
		if err := frame.SetColumn(name, make([]float64, frame.Len())); err != nil {
			return Result{}, fmt.Errorf("fill column %s: %w", name, err)
		}
		filled = append(filled, name)
		metrics.RecordZeroFilledColumn(name)
		s.logger.Warn(ctx, "expected feature column missing; filled with zero",
			logger.String("column", name),
		)
	}

	row, err := frame.Row(0, s.artifact.FeatureNames)
	if err != nil {
		return Result{}, fmt.Errorf("align features: %w", err)
	}

	raw, err := s.artifact.Model.Predict(row)
	if err != nil {
		metrics.RecordErrorByComponent("scoring", "predict")
		return Result{}, fmt.Errorf("predict: %w", err)
	}

	score := int(math.RoundToEven(raw))
	metrics.RecordPredictedScore(float64(score))

	return Result{
		Score:      score,
		Raw:        raw,
		ZeroFilled: filled,
	}, nil
}

// Artifact returns the artifact the scorer was built with.
func (s *ModelScorer) Artifact() *Artifact {
	return s.artifact
}
