package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/fairway/internal/domain/model"
)

// FeatureSource provides the stored facts a feature vector is built from.
type FeatureSource interface {
	PlayerByName(ctx context.Context, name string) (model.Player, error)
	RoundCount(ctx context.Context, playerID int64) (int, error)
	WeatherOn(ctx context.Context, date time.Time) (model.Weather, error)
}

// Assembler builds the feature vector for a player booking a given date.
type Assembler struct {
	source FeatureSource
}

// NewAssembler creates an assembler over source.
func NewAssembler(source FeatureSource) *Assembler {
	return &Assembler{source: source}
}

// Assemble returns the features for the player's next round on date: the
// round number is one past the rounds already played, handicap comes from the
// player record and weather from the date's recorded conditions.
func (a *Assembler) Assemble(ctx context.Context, playerName string, date time.Time) (model.FeatureVector, error) {
	player, err := a.source.PlayerByName(ctx, playerName)
	if err != nil {
		return model.FeatureVector{}, fmt.Errorf("load player %q: %w", playerName, err)
	}

	played, err := a.source.RoundCount(ctx, player.ID)
	if err != nil {
		return model.FeatureVector{}, fmt.Errorf("count rounds for player %d: %w", player.ID, err)
	}

	w, err := a.source.WeatherOn(ctx, date)
	if err != nil {
		if errors.Is(err, ErrNoWeather) {
			return model.FeatureVector{}, fmt.Errorf("%w: %s", ErrNoWeather, date.Format(time.DateOnly))
		}
		return model.FeatureVector{}, fmt.Errorf("load weather for %s: %w", date.Format(time.DateOnly), err)
	}

	fv := model.FeatureVector{
		RoundNumber:   played + 1,
		Handicap:      player.Handicap,
		AvgTemp:       w.AvgTemp,
		Precipitation: w.Precipitation,
		WindSpeed:     w.WindSpeed,
		DayOfWeek:     model.DayOfWeek(date),
	}
	if err := fv.Validate(); err != nil {
		return model.FeatureVector{}, err
	}
	return fv, nil
}
