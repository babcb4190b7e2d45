package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/metrics"
)

// MemoryStore is an in-process Store used when no database is configured
// and in tests. Booking ids are assigned sequentially from 1.
type MemoryStore struct {
	mu       sync.RWMutex
	players  map[string]model.Player // by name
	rounds   map[int64][]model.Round // by player id
	weather  map[string]model.Weather
	bookings []model.Booking

	nextPlayerID  int64
	nextBookingID int64

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
}

// NewMemoryStore constructs an empty store. The background metrics updater
// stops when ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		players:               make(map[string]model.Player),
		rounds:                make(map[int64][]model.Round),
		weather:               make(map[string]model.Weather),
		nextPlayerID:          1,
		nextBookingID:         1,
		metricsUpdateInterval: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s
}

// Close stops the background goroutine.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// LookupPlayerID implements booking.Store.
func (s *MemoryStore) LookupPlayerID(_ context.Context, name string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[name]
	return p.ID, ok, nil
}

// InsertBooking implements booking.Store.
func (s *MemoryStore) InsertBooking(_ context.Context, b model.Booking) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("insert_booking", msSince(start)) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextBookingID
	s.nextBookingID++
	s.bookings = append(s.bookings, b)
	return nil
}

// LastInsertedBookingID implements booking.Store.
func (s *MemoryStore) LastInsertedBookingID(_ context.Context, playerID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last int64
	for _, b := range s.bookings {
		if b.PlayerID == playerID && b.ID > last {
			last = b.ID
		}
	}
	if last == 0 {
		return 0, fmt.Errorf("no booking recorded for player %d", playerID)
	}
	return last, nil
}

// PlayerByName implements booking.FeatureSource.
func (s *MemoryStore) PlayerByName(_ context.Context, name string) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[name]
	if !ok {
		return model.Player{}, fmt.Errorf("%w: %q", model.ErrPlayerNotFound, name)
	}
	return p, nil
}

// RoundCount implements booking.FeatureSource.
func (s *MemoryStore) RoundCount(_ context.Context, playerID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rounds[playerID]), nil
}

// WeatherOn implements booking.FeatureSource.
func (s *MemoryStore) WeatherOn(_ context.Context, date time.Time) (model.Weather, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.weather[dateKey(date)]
	if !ok {
		return model.Weather{}, model.ErrWeatherNotFound
	}
	return w, nil
}

// CreatePlayer implements Store.
func (s *MemoryStore) CreatePlayer(_ context.Context, name string, handicap float64) (model.Player, error) {
	if strings.TrimSpace(name) == "" || math.IsNaN(handicap) || math.IsInf(handicap, 0) {
		return model.Player{}, ErrInvalidPlayer
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[name]; ok {
		return model.Player{}, fmt.Errorf("%w: %q", model.ErrPlayerExists, name)
	}
	p := model.Player{ID: s.nextPlayerID, Name: name, Handicap: handicap}
	s.nextPlayerID++
	s.players[name] = p
	return p, nil
}

// PlayerRounds implements Store.
func (s *MemoryStore) PlayerRounds(_ context.Context, playerID int64) ([]model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.rounds[playerID]
	out := make([]model.Round, len(src))
	for i, r := range src {
		r.Weather = nil
		if w, ok := s.weather[dateKey(r.Date)]; ok {
			w := w
			r.Weather = &w
		}
		out[i] = r
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// AddRound records a played round for an existing player.
func (s *MemoryStore) AddRound(_ context.Context, r model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasPlayerID(r.PlayerID) {
		return fmt.Errorf("%w: player %d", model.ErrPlayerNotFound, r.PlayerID)
	}
	if r.Score <= 0 {
		return fmt.Errorf("%w: score %d", ErrInvalidRound, r.Score)
	}
	r.Weather = nil
	s.rounds[r.PlayerID] = append(s.rounds[r.PlayerID], r)
	return nil
}

// PutWeather records or replaces the conditions for a date.
func (s *MemoryStore) PutWeather(_ context.Context, w model.Weather) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather[dateKey(w.Date)] = w
	return nil
}

// Bookings returns a copy of all bookings in insertion order.
func (s *MemoryStore) Bookings() []model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

// Counts implements Store.
func (s *MemoryStore) Counts(_ context.Context) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countsLocked(), nil
}

func (s *MemoryStore) countsLocked() Counts {
	rounds := 0
	for _, rs := range s.rounds {
		rounds += len(rs)
	}
	return Counts{
		Players:  len(s.players),
		Rounds:   rounds,
		Weather:  len(s.weather),
		Bookings: len(s.bookings),
	}
}

func (s *MemoryStore) hasPlayerID(id int64) bool {
	for _, p := range s.players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// startMetricsUpdater starts a background goroutine that publishes table sizes.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *MemoryStore) updateMetrics() {
	s.mu.RLock()
	c := s.countsLocked()
	s.mu.RUnlock()

	metrics.UpdateStoreRecords("players", c.Players)
	metrics.UpdateStoreRecords("rounds", c.Rounds)
	metrics.UpdateStoreRecords("weather", c.Weather)
	metrics.UpdateStoreRecords("bookings", c.Bookings)
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
