package scoring

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/okian/fairway/internal/domain/features"
)

// Artifact bundles everything needed to score: the fitted scaler, the column
// order the model was trained on and the model itself. It is loaded once at
// startup and treated as read-only afterwards.
type Artifact struct {
	FeatureNames []string
	Scaler       *features.Scaler
	Model        Model
}

type artifactFile struct {
	FeatureNames []string         `json:"feature_names"`
	Scaler       *features.Scaler `json:"scaler"`
	Model        modelEnvelope    `json:"model"`
}

type modelEnvelope struct {
	Kind             string            `json:"kind"`
	Linear           *LinearModel      `json:"linear,omitempty"`
	GradientBoosting *GradientBoosting `json:"gradient_boosting,omitempty"`
}

// NewArtifact validates and assembles an artifact.
func NewArtifact(featureNames []string, scaler *features.Scaler, m Model) (*Artifact, error) {
	if len(featureNames) == 0 {
		return nil, fmt.Errorf("%w: no feature names", ErrInvalidArtifact)
	}
	seen := make(map[string]struct{}, len(featureNames))
	for _, name := range featureNames {
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: feature %s listed twice", ErrInvalidArtifact, name)
		}
		seen[name] = struct{}{}
	}
	if err := scaler.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	want := features.ScaledColumns()
	got := append([]string{}, scaler.Columns...)
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		return nil, fmt.Errorf("%w: scaler columns %v, want %v", ErrInvalidArtifact, scaler.Columns, features.ScaledColumns())
	}
	if m == nil {
		return nil, fmt.Errorf("%w: no model", ErrInvalidArtifact)
	}
	if err := m.Validate(len(featureNames)); err != nil {
		return nil, err
	}
	return &Artifact{
		FeatureNames: append([]string{}, featureNames...),
		Scaler:       scaler,
		Model:        m,
	}, nil
}

// ParseArtifact decodes and validates an artifact from JSON.
func ParseArtifact(data []byte) (*Artifact, error) {
	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	var m Model
	switch file.Model.Kind {
	case KindLinear:
		if file.Model.Linear == nil {
			return nil, fmt.Errorf("%w: linear model body missing", ErrInvalidArtifact)
		}
		m = file.Model.Linear
	case KindGradientBoosting:
		if file.Model.GradientBoosting == nil {
			return nil, fmt.Errorf("%w: gradient_boosting model body missing", ErrInvalidArtifact)
		}
		m = file.Model.GradientBoosting
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModelKind, file.Model.Kind)
	}

	return NewArtifact(file.FeatureNames, file.Scaler, m)
}

// LoadArtifact reads and validates an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	a, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", path, err)
	}
	return a, nil
}

// MarshalJSON encodes the artifact in the on-disk format.
func (a *Artifact) MarshalJSON() ([]byte, error) {
	file := artifactFile{
		FeatureNames: a.FeatureNames,
		Scaler:       a.Scaler,
		Model:        modelEnvelope{Kind: a.Model.Kind()},
	}
	switch m := a.Model.(type) {
	case *LinearModel:
		file.Model.Linear = m
	case *GradientBoosting:
		file.Model.GradientBoosting = m
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownModelKind, a.Model)
	}
	return json.Marshal(file)
}

// WriteArtifact writes the artifact as indented JSON.
func WriteArtifact(path string, a *Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}
