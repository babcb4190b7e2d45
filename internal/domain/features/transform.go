package features

import (
	"fmt"

	"github.com/okian/fairway/internal/domain/model"
)

// Engineered column names.
const (
	ColWindPrecip      = "wind_precip"
	ColWindCold        = "wind_cold"
	ColBadWeatherCombo = "bad_weather_combo"
	ColWeekend         = "weekend"
)

// Weather thresholds shared by the derived columns.
const (
	coldTempThreshold = 15.0
	windyThreshold    = 15.0
	wetThreshold      = 0.5
)

// ScaledColumns returns the numeric columns the standard scaler covers.
// Day of week and the derived columns are never scaled.
func ScaledColumns() []string {
	return []string{
		model.ColRoundNumber,
		model.ColHandicap,
		model.ColAvgTemp,
		model.ColPrecipitation,
		model.ColWindSpeed,
	}
}

// EngineeredColumns returns the names of the derived columns in the order they are appended.
func EngineeredColumns() []string {
	return []string{ColWindPrecip, ColWindCold, ColBadWeatherCombo, ColWeekend}
}

// derivationInputs are the raw columns the derivations read.
var derivationInputs = []string{ //nolint:gochecknoglobals // fixed column contract
	model.ColPrecipitation,
	model.ColWindSpeed,
	model.ColAvgTemp,
	model.ColDayOfWeek,
}

// TrainingSet is the output of training mode.
type TrainingSet struct {
	X      *Frame    // engineered and scaled inputs, without the target
	Y      []float64 // target scores
	Scaler *Scaler   // scaler fitted on X's numeric columns
}

// Engineer returns a copy of in with the four derived columns appended.
// It fits no scaling; row count and input columns are preserved and in is not modified.
func Engineer(in *Frame) (*Frame, error) {
	if err := in.require(derivationInputs...); err != nil {
		return nil, err
	}
	if err := checkDays(in); err != nil {
		return nil, err
	}
	out := in.Clone()
	derive(out)
	return out, nil
}

// EngineerForTraining derives the engineered columns, fits a new scaler over
// ScaledColumns and applies it, then splits off the score target.
func EngineerForTraining(in *Frame) (TrainingSet, error) {
	required := append(append([]string{}, derivationInputs...), ScaledColumns()...)
	required = append(required, model.ColScore)
	if err := in.require(required...); err != nil {
		return TrainingSet{}, err
	}
	if err := checkDays(in); err != nil {
		return TrainingSet{}, err
	}

	out := in.Clone()
	derive(out)

	scaler, err := FitScaler(out, ScaledColumns()...)
	if err != nil {
		return TrainingSet{}, err
	}
	if err := scaler.Transform(out); err != nil {
		return TrainingSet{}, err
	}

	y, _ := out.Column(model.ColScore)
	return TrainingSet{
		X:      out.Drop(model.ColScore),
		Y:      y,
		Scaler: scaler,
	}, nil
}

// checkDays rejects day-of-week values that would misclassify the weekend flag.
func checkDays(f *Frame) error {
	for i, v := range f.data[model.ColDayOfWeek] {
		if !model.ValidDayOfWeek(v) {
			return fmt.Errorf("%w: %s row %d: %g is not a whole day 0..6",
				model.ErrInvalidFeatures, model.ColDayOfWeek, i, v)
		}
	}
	return nil
}

// derive appends the engineered columns. Inputs must be present.
func derive(f *Frame) {
	precip := f.data[model.ColPrecipitation]
	wind := f.data[model.ColWindSpeed]
	temp := f.data[model.ColAvgTemp]
	day := f.data[model.ColDayOfWeek]

	n := f.Len()
	windPrecip := make([]float64, n)
	windCold := make([]float64, n)
	badCombo := make([]float64, n)
	weekend := make([]float64, n)

	for i := 0; i < n; i++ {
		cold := temp[i] < coldTempThreshold
		windPrecip[i] = precip[i] * wind[i]
		if cold {
			windCold[i] = wind[i]
		}
		if wind[i] > windyThreshold && precip[i] > wetThreshold && cold {
			badCombo[i] = 1
		}
		if model.IsWeekend(int(day[i])) {
			weekend[i] = 1
		}
	}

	// lengths match f.Len() by construction
	_ = f.SetColumn(ColWindPrecip, windPrecip)
	_ = f.SetColumn(ColWindCold, windCold)
	_ = f.SetColumn(ColBadWeatherCombo, badCombo)
	_ = f.SetColumn(ColWeekend, weekend)
}
