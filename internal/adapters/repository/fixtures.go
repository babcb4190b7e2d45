package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/fairway/internal/domain/model"
)

// Fixtures is a snapshot of players, rounds and weather used to populate a
// MemoryStore. Dates are YYYY-MM-DD strings and should be quoted in YAML.
type Fixtures struct {
	Players []FixturePlayer  `koanf:"players"`
	Weather []FixtureWeather `koanf:"weather"`
	Rounds  []FixtureRound   `koanf:"rounds"`
}

// FixturePlayer is a player row.
type FixturePlayer struct {
	Name     string  `koanf:"player_name"`
	Handicap float64 `koanf:"handicap"`
}

// FixtureWeather is the conditions on one day.
type FixtureWeather struct {
	Date          string  `koanf:"date"`
	AvgTemp       float64 `koanf:"avg_temp"`
	Precipitation float64 `koanf:"precipitation"`
	WindSpeed     float64 `koanf:"wind_speed"`
}

// FixtureRound is a played round, keyed by player name.
type FixtureRound struct {
	PlayerName string `koanf:"player_name"`
	Date       string `koanf:"round_date"`
	Score      int    `koanf:"score"`
}

// ReadFixtures parses a YAML or JSON fixtures file.
func ReadFixtures(path string) (Fixtures, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	var f Fixtures
	if err := k.UnmarshalWithConf("", &f, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Fixtures{}, fmt.Errorf("decode fixtures %s: %w", path, err)
	}
	return f, nil
}

// Seed loads fixtures into the store: players first, then weather, then
// rounds, which must name a seeded or existing player. Player names are
// normalized the same way booking lookups are.
func (s *MemoryStore) Seed(ctx context.Context, f Fixtures) error {
	for _, p := range f.Players {
		if _, err := s.CreatePlayer(ctx, model.NormalizePlayerName(p.Name), p.Handicap); err != nil {
			return fmt.Errorf("seed player %q: %w", p.Name, err)
		}
	}
	for _, w := range f.Weather {
		d, err := time.Parse(time.DateOnly, w.Date)
		if err != nil {
			return fmt.Errorf("seed weather: %w", err)
		}
		if err := s.PutWeather(ctx, model.Weather{
			Date:          d,
			AvgTemp:       w.AvgTemp,
			Precipitation: w.Precipitation,
			WindSpeed:     w.WindSpeed,
		}); err != nil {
			return fmt.Errorf("seed weather %s: %w", w.Date, err)
		}
	}
	for _, r := range f.Rounds {
		p, err := s.PlayerByName(ctx, model.NormalizePlayerName(r.PlayerName))
		if err != nil {
			return fmt.Errorf("seed round: %w", err)
		}
		d, err := time.Parse(time.DateOnly, r.Date)
		if err != nil {
			return fmt.Errorf("seed round for %q: %w", r.PlayerName, err)
		}
		if err := s.AddRound(ctx, model.Round{PlayerID: p.ID, Date: d, Score: r.Score}); err != nil {
			return fmt.Errorf("seed round for %q on %s: %w", r.PlayerName, r.Date, err)
		}
	}
	return nil
}
