package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Model kinds understood by the artifact loader.
const (
	KindLinear           = "linear"
	KindGradientBoosting = "gradient_boosting"
)

// Model predicts a single value from a row aligned to the artifact's feature names.
type Model interface {
	Predict(row []float64) (float64, error)
	// Validate checks the model against the expected row width.
	Validate(numFeatures int) error
	Kind() string
}

// LinearModel is an intercept plus one coefficient per feature.
type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Kind implements Model.
func (m *LinearModel) Kind() string { return KindLinear }

// Predict implements Model.
func (m *LinearModel) Predict(row []float64) (float64, error) {
	if len(row) != len(m.Coefficients) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrArity, len(row), len(m.Coefficients))
	}
	return m.Intercept + floats.Dot(m.Coefficients, row), nil
}

// Validate implements Model.
func (m *LinearModel) Validate(numFeatures int) error {
	if len(m.Coefficients) != numFeatures {
		return fmt.Errorf("%w: linear model has %d coefficients for %d features",
			ErrInvalidArtifact, len(m.Coefficients), numFeatures)
	}
	if !finite(m.Intercept) {
		return fmt.Errorf("%w: intercept is not finite", ErrInvalidArtifact)
	}
	for i, c := range m.Coefficients {
		if !finite(c) {
			return fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidArtifact, i)
		}
	}
	return nil
}

// Node is one node of a regression tree. A node with Left < 0 is a leaf and
// yields Value; otherwise rows with row[Feature] <= Threshold go Left.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Leaf reports whether the node is terminal.
func (n Node) Leaf() bool { return n.Left < 0 }

// Tree is a regression tree stored as a flat node array rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// GradientBoosting sums an initial prediction and learning-rate scaled tree outputs.
type GradientBoosting struct {
	Init         float64 `json:"init"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []Tree  `json:"trees"`

	numFeatures int
}

// Kind implements Model.
func (m *GradientBoosting) Kind() string { return KindGradientBoosting }

// Predict implements Model.
func (m *GradientBoosting) Predict(row []float64) (float64, error) {
	if m.numFeatures > 0 && len(row) != m.numFeatures {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrArity, len(row), m.numFeatures)
	}
	out := m.Init
	for i := range m.Trees {
		v, err := m.Trees[i].eval(row)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		out += m.LearningRate * v
	}
	return out, nil
}

// Validate implements Model. Children must point forward in the node array,
// which rules out cycles.
func (m *GradientBoosting) Validate(numFeatures int) error {
	if !finite(m.Init) || !finite(m.LearningRate) {
		return fmt.Errorf("%w: init and learning_rate must be finite", ErrInvalidArtifact)
	}
	for ti, t := range m.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d has no nodes", ErrInvalidArtifact, ti)
		}
		for ni, n := range t.Nodes {
			if n.Leaf() {
				if !finite(n.Value) {
					return fmt.Errorf("%w: tree %d node %d value is not finite", ErrInvalidArtifact, ti, ni)
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= numFeatures {
				return fmt.Errorf("%w: tree %d node %d splits on feature %d of %d",
					ErrInvalidArtifact, ti, ni, n.Feature, numFeatures)
			}
			if n.Left <= ni || n.Right <= ni || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("%w: tree %d node %d has bad children %d/%d",
					ErrInvalidArtifact, ti, ni, n.Left, n.Right)
			}
			if math.IsNaN(n.Threshold) {
				return fmt.Errorf("%w: tree %d node %d threshold is NaN", ErrInvalidArtifact, ti, ni)
			}
		}
	}
	m.numFeatures = numFeatures
	return nil
}

func (t *Tree) eval(row []float64) (float64, error) {
	i := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if i < 0 || i >= len(t.Nodes) {
			return 0, fmt.Errorf("%w: node index %d out of range", ErrInvalidArtifact, i)
		}
		n := t.Nodes[i]
		if n.Leaf() {
			return n.Value, nil
		}
		if n.Feature >= len(row) {
			return 0, fmt.Errorf("%w: feature %d beyond row of %d", ErrArity, n.Feature, len(row))
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return 0, fmt.Errorf("%w: tree does not terminate", ErrInvalidArtifact)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
