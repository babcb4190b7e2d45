package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/fairway/internal/domain/features"
	"gonum.org/v1/gonum/mat"
)

// DefaultRidge is the L2 penalty used when fitting a linear model. A small
// penalty keeps the system solvable when an engineered column is constant.
const DefaultRidge = 1e-6

// FitLinear fits a ridge-regularized least squares model of y on x.
// The intercept is not penalized.
func FitLinear(x *features.Frame, y []float64, lambda float64) (*LinearModel, error) {
	n := x.Len()
	if n == 0 {
		return nil, ErrInsufficientData
	}
	if len(y) != n {
		return nil, fmt.Errorf("%w: %d targets for %d rows", ErrArity, len(y), n)
	}
	if lambda < 0 || math.IsNaN(lambda) {
		return nil, fmt.Errorf("ridge penalty must be >= 0, got %v", lambda)
	}

	columns := x.Columns()
	p := len(columns)
	rows := n + p

	a := mat.NewDense(rows, p+1, nil)
	b := mat.NewVecDense(rows, nil)
	for i := 0; i < n; i++ {
		row, err := x.Row(i, columns)
		if err != nil {
			return nil, err
		}
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
		b.SetVec(i, y[i])
	}
	penalty := math.Sqrt(lambda)
	for j := 0; j < p; j++ {
		a.Set(n+j, j+1, penalty)
	}

	var beta mat.VecDense
	if err := beta.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("solve least squares: %w", err)
		}
		// ill-conditioned but solved; the coefficients are still usable
	}

	m := &LinearModel{
		Intercept:    beta.AtVec(0),
		Coefficients: make([]float64, p),
	}
	for j := 0; j < p; j++ {
		m.Coefficients[j] = beta.AtVec(j + 1)
	}
	if err := m.Validate(p); err != nil {
		return nil, err
	}
	return m, nil
}

// Train engineers a training frame, fits a linear model on it and returns
// the resulting artifact.
func Train(frame *features.Frame, lambda float64) (*Artifact, error) {
	set, err := features.EngineerForTraining(frame)
	if err != nil {
		return nil, fmt.Errorf("engineer training set: %w", err)
	}
	m, err := FitLinear(set.X, set.Y, lambda)
	if err != nil {
		return nil, fmt.Errorf("fit linear model: %w", err)
	}
	return NewArtifact(set.X.Columns(), set.Scaler, m)
}
