// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"time"
)

// Raw feature column names as they appear in training data and scoring artifacts.
const (
	ColRoundNumber   = "round_number"
	ColHandicap      = "handicap"
	ColAvgTemp       = "avg_temp"
	ColPrecipitation = "precipitation"
	ColWindSpeed     = "wind_speed"
	ColDayOfWeek     = "day_of_week_int"

	// ColScore is the training target.
	ColScore = "score"
)

// Weekend threshold on the 0 = Monday ... 6 = Sunday scale.
const (
	firstWeekendDay = 5
	daysPerWeek     = 7
	featureCount    = 6
)

// FeatureColumns returns the raw feature columns in canonical order.
func FeatureColumns() []string {
	return []string{ColRoundNumber, ColHandicap, ColAvgTemp, ColPrecipitation, ColWindSpeed, ColDayOfWeek}
}

// FeatureVector is the raw input to pricing and score prediction.
// DayOfWeek uses 0 = Monday through 6 = Sunday.
type FeatureVector struct {
	RoundNumber   int     `json:"round_number"`
	Handicap      float64 `json:"handicap"`
	AvgTemp       float64 `json:"avg_temp"`
	Precipitation float64 `json:"precipitation"`
	WindSpeed     float64 `json:"wind_speed"`
	DayOfWeek     int     `json:"day_of_week_int"`
}

// FeatureVectorFromSlice builds a FeatureVector from values in FeatureColumns order.
// Round number and day of week must be integral.
func FeatureVectorFromSlice(values []float64) (FeatureVector, error) {
	if len(values) != featureCount {
		return FeatureVector{}, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidFeatures, featureCount, len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return FeatureVector{}, fmt.Errorf("%w: %s is not a finite number", ErrInvalidFeatures, FeatureColumns()[i])
		}
	}
	if values[0] != math.Trunc(values[0]) {
		return FeatureVector{}, fmt.Errorf("%w: %s must be a whole number", ErrInvalidFeatures, ColRoundNumber)
	}
	if values[5] != math.Trunc(values[5]) {
		return FeatureVector{}, fmt.Errorf("%w: %s must be a whole number", ErrInvalidFeatures, ColDayOfWeek)
	}
	fv := FeatureVector{
		RoundNumber:   int(values[0]),
		Handicap:      values[1],
		AvgTemp:       values[2],
		Precipitation: values[3],
		WindSpeed:     values[4],
		DayOfWeek:     int(values[5]),
	}
	return fv, fv.Validate()
}

// Values returns the vector in FeatureColumns order.
func (f FeatureVector) Values() []float64 {
	return []float64{
		float64(f.RoundNumber),
		f.Handicap,
		f.AvgTemp,
		f.Precipitation,
		f.WindSpeed,
		float64(f.DayOfWeek),
	}
}

// Validate reports whether every field is finite and the day of week is in range.
func (f FeatureVector) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{ColHandicap, f.Handicap},
		{ColAvgTemp, f.AvgTemp},
		{ColPrecipitation, f.Precipitation},
		{ColWindSpeed, f.WindSpeed},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidFeatures, c.name)
		}
	}
	if f.DayOfWeek < 0 || f.DayOfWeek >= daysPerWeek {
		return fmt.Errorf("%w: %s must be within 0..6, got %d", ErrInvalidFeatures, ColDayOfWeek, f.DayOfWeek)
	}
	return nil
}

// Weekend reports whether the vector falls on Saturday or Sunday.
func (f FeatureVector) Weekend() bool {
	return IsWeekend(f.DayOfWeek)
}

// IsWeekend applies the weekend rule to a day-of-week value.
func IsWeekend(day int) bool {
	return day >= firstWeekendDay
}

// ValidDayOfWeek reports whether v is a whole day on the 0..6 scale.
func ValidDayOfWeek(v float64) bool {
	return v == math.Trunc(v) && v >= 0 && v < daysPerWeek
}

// DayOfWeek converts a date to the 0 = Monday ... 6 = Sunday scale.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + daysPerWeek - 1) % daysPerWeek
}
