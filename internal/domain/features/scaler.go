package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes columns to zero mean and unit variance.
// Scale uses the population standard deviation; a constant column gets scale 1.
type Scaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// FitScaler computes per-column mean and scale over f.
func FitScaler(f *Frame, columns ...string) (*Scaler, error) {
	if f.Len() == 0 {
		return nil, ErrEmptyFrame
	}
	if err := f.require(columns...); err != nil {
		return nil, err
	}
	s := &Scaler{
		Columns: append([]string{}, columns...),
		Mean:    make([]float64, len(columns)),
		Scale:   make([]float64, len(columns)),
	}
	for i, name := range columns {
		mean, std := stat.PopMeanStdDev(f.data[name], nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Mean[i] = mean
		s.Scale[i] = std
	}
	return s, nil
}

// Validate checks that the scaler is internally consistent.
func (s *Scaler) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil", ErrInvalidScaler)
	}
	if len(s.Mean) != len(s.Columns) || len(s.Scale) != len(s.Columns) {
		return fmt.Errorf("%w: %d columns, %d means, %d scales", ErrInvalidScaler, len(s.Columns), len(s.Mean), len(s.Scale))
	}
	seen := make(map[string]struct{}, len(s.Columns))
	for i, name := range s.Columns {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: column %s listed twice", ErrInvalidScaler, name)
		}
		seen[name] = struct{}{}
		if s.Scale[i] == 0 || math.IsNaN(s.Scale[i]) || math.IsInf(s.Scale[i], 0) {
			return fmt.Errorf("%w: column %s has scale %v", ErrInvalidScaler, name, s.Scale[i])
		}
		if math.IsNaN(s.Mean[i]) || math.IsInf(s.Mean[i], 0) {
			return fmt.Errorf("%w: column %s has mean %v", ErrInvalidScaler, name, s.Mean[i])
		}
	}
	return nil
}

// Transform standardizes the scaler's columns of f in place.
// Other columns are left untouched.
func (s *Scaler) Transform(f *Frame) error {
	if err := f.require(s.Columns...); err != nil {
		return err
	}
	for i, name := range s.Columns {
		col := f.data[name]
		floats.AddConst(-s.Mean[i], col)
		floats.Scale(1/s.Scale[i], col)
	}
	return nil
}
