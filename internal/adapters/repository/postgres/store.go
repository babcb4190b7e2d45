// Package postgres implements repository.Store on PostgreSQL using pgx.
//
// The tables players, rounds, weather and bookings are created and
// maintained outside this service.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/metrics"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const (
	qPlayerByName  = `SELECT player_id, player_name, handicap FROM players WHERE player_name = $1`
	qCreatePlayer  = `INSERT INTO players (player_name, handicap) VALUES ($1, $2) RETURNING player_id`
	qRoundCount    = `SELECT COUNT(*) FROM rounds WHERE player_id = $1`
	qWeatherOn     = `SELECT date, avg_temp, precipitation, wind_speed FROM weather WHERE date = $1`
	qLastBookingID = `SELECT MAX(booking_id) FROM bookings WHERE player_id = $1`
	qInsertBooking = `INSERT INTO bookings (player_id, tee_time, price_paid, booking_status, round_date, score_prediction, booking_time) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	qPlayerRounds  = `SELECT r.round_date, r.score, w.avg_temp, w.precipitation, w.wind_speed FROM rounds r LEFT JOIN weather w ON r.round_date = w.date WHERE r.player_id = $1 ORDER BY r.round_date`
	qCounts        = `SELECT (SELECT COUNT(*) FROM players), (SELECT COUNT(*) FROM rounds), (SELECT COUNT(*) FROM weather), (SELECT COUNT(*) FROM bookings)`
)

// Store is a PostgreSQL-backed repository.Store.
type Store struct {
	db   DBTX
	pool *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

// New wraps an existing connection, pool or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Open connects a pool to databaseURL and verifies it with a ping.
func Open(ctx context.Context, databaseURL string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: pool, pool: pool}, nil
}

// Close releases the pool when the store owns one.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// LookupPlayerID implements booking.Store.
func (s *Store) LookupPlayerID(ctx context.Context, name string) (int64, bool, error) {
	p, err := s.PlayerByName(ctx, name)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return p.ID, true, nil
}

// PlayerByName implements booking.FeatureSource.
func (s *Store) PlayerByName(ctx context.Context, name string) (model.Player, error) {
	defer observe("player_by_name", time.Now())

	var p model.Player
	err := s.db.QueryRow(ctx, qPlayerByName, name).Scan(&p.ID, &p.Name, &p.Handicap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, fmt.Errorf("%w: %q", model.ErrPlayerNotFound, name)
		}
		return model.Player{}, fmt.Errorf("query player %q: %w", name, err)
	}
	return p, nil
}

// CreatePlayer implements repository.Store.
func (s *Store) CreatePlayer(ctx context.Context, name string, handicap float64) (model.Player, error) {
	defer observe("create_player", time.Now())

	p := model.Player{Name: name, Handicap: handicap}
	if err := s.db.QueryRow(ctx, qCreatePlayer, name, handicap).Scan(&p.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Player{}, fmt.Errorf("%w: %q", model.ErrPlayerExists, name)
		}
		return model.Player{}, fmt.Errorf("insert player %q: %w", name, err)
	}
	return p, nil
}

// RoundCount implements booking.FeatureSource.
func (s *Store) RoundCount(ctx context.Context, playerID int64) (int, error) {
	defer observe("round_count", time.Now())

	var n int
	if err := s.db.QueryRow(ctx, qRoundCount, playerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rounds for player %d: %w", playerID, err)
	}
	return n, nil
}

// WeatherOn implements booking.FeatureSource.
func (s *Store) WeatherOn(ctx context.Context, date time.Time) (model.Weather, error) {
	defer observe("weather_on", time.Now())

	var w model.Weather
	err := s.db.QueryRow(ctx, qWeatherOn, date).Scan(&w.Date, &w.AvgTemp, &w.Precipitation, &w.WindSpeed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Weather{}, model.ErrWeatherNotFound
		}
		return model.Weather{}, fmt.Errorf("query weather for %s: %w", date.Format(time.DateOnly), err)
	}
	return w, nil
}

// InsertBooking implements booking.Store.
func (s *Store) InsertBooking(ctx context.Context, b model.Booking) error {
	defer observe("insert_booking", time.Now())

	// The bookings table has no cart column, so b.Cart is not persisted.
	// It still reaches the price and the response.
	_, err := s.db.Exec(ctx, qInsertBooking,
		b.PlayerID,
		b.TeeTime,
		b.Price,
		string(b.Status),
		b.RoundDate,
		b.PredictedScore,
		b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking for player %d: %w", b.PlayerID, err)
	}
	return nil
}

// LastInsertedBookingID implements booking.Store.
func (s *Store) LastInsertedBookingID(ctx context.Context, playerID int64) (int64, error) {
	defer observe("last_booking_id", time.Now())

	var id *int64
	if err := s.db.QueryRow(ctx, qLastBookingID, playerID).Scan(&id); err != nil {
		return 0, fmt.Errorf("query last booking for player %d: %w", playerID, err)
	}
	if id == nil {
		return 0, fmt.Errorf("no booking recorded for player %d", playerID)
	}
	return *id, nil
}

// PlayerRounds implements repository.Store.
func (s *Store) PlayerRounds(ctx context.Context, playerID int64) ([]model.Round, error) {
	defer observe("player_rounds", time.Now())

	rows, err := s.db.Query(ctx, qPlayerRounds, playerID)
	if err != nil {
		return nil, fmt.Errorf("query rounds for player %d: %w", playerID, err)
	}
	defer rows.Close()

	var out []model.Round
	for rows.Next() {
		r := model.Round{PlayerID: playerID}
		var temp, precip, wind *float64
		if err := rows.Scan(&r.Date, &r.Score, &temp, &precip, &wind); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		if temp != nil && precip != nil && wind != nil {
			r.Weather = &model.Weather{Date: r.Date, AvgTemp: *temp, Precipitation: *precip, WindSpeed: *wind}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return out, nil
}

// Counts implements repository.Store.
func (s *Store) Counts(ctx context.Context) (repository.Counts, error) {
	defer observe("counts", time.Now())

	var c repository.Counts
	if err := s.db.QueryRow(ctx, qCounts).Scan(&c.Players, &c.Rounds, &c.Weather, &c.Bookings); err != nil {
		return repository.Counts{}, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
