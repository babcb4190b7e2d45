// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/fairway/internal/adapters/cache"
	repository "github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/adapters/repository/postgres"
	"github.com/okian/fairway/internal/domain/booking"
	"github.com/okian/fairway/internal/domain/dedupe"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/pricing"
	"github.com/okian/fairway/internal/domain/scoring"
	"github.com/okian/fairway/internal/domain/types"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Store kinds reported by GetStats.
const (
	storeMemory   = "memory"
	storePostgres = "postgres"
)

// cachedSource serves weather through the cache and everything else from the store.
type cachedSource struct {
	repository.Store
	weather *cache.WeatherCache
}

func (c cachedSource) WeatherOn(ctx context.Context, date time.Time) (model.Weather, error) {
	return c.weather.WeatherOn(ctx, date)
}

// Service implements the API dependencies for the booking system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	redis     *redis.Client
	scorer    *scoring.ModelScorer
	pricer    *pricing.Engine
	bookings  *booking.Service
	assembler *booking.Assembler
	deduper   dedupe.Deduper

	// Configuration
	artifactPath    string
	artifact        *scoring.Artifact
	databaseURL     string
	seedPath        string
	dbMaxConns      int32
	redisURL        string
	cacheTTL        time.Duration
	basePrice       decimal.Decimal
	location        *time.Location
	idempotencySize int
	now             func() time.Time

	// State
	started   bool
	storeKind string

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithArtifactPath sets the scoring artifact loaded on Start.
func WithArtifactPath(path string) Option {
	return func(s *Service) {
		s.artifactPath = path
	}
}

// WithArtifact uses an already loaded artifact instead of reading one on Start.
func WithArtifact(a *scoring.Artifact) Option {
	return func(s *Service) {
		s.artifact = a
	}
}

// WithDatabase selects the PostgreSQL store. An empty url keeps the in-memory store.
func WithDatabase(url string, maxConns int) Option {
	return func(s *Service) {
		s.databaseURL = url
		if maxConns > 0 {
			s.dbMaxConns = int32(maxConns) //nolint:gosec // bounded by config validation
		}
	}
}

// WithSeed loads a fixtures file into the in-memory store on Start.
func WithSeed(path string) Option {
	return func(s *Service) {
		s.seedPath = path
	}
}

// WithStore injects a store. It takes precedence over WithDatabase.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithWeatherCache enables the Redis weather cache.
func WithWeatherCache(url string, ttl time.Duration) Option {
	return func(s *Service) {
		s.redisURL = url
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithBasePrice sets the price before adjustments.
func WithBasePrice(base decimal.Decimal) Option {
	return func(s *Service) {
		if !base.IsNegative() {
			s.basePrice = base
		}
	}
}

// WithLocation sets the time zone booking dates are read in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithIdempotencyCacheSize bounds the remembered idempotency keys.
func WithIdempotencyCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.idempotencySize = size
		}
	}
}

// WithClock sets the clock used for booking creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		artifactPath:    "model/artifact.json",
		cacheTTL:        cache.DefaultTTL,
		basePrice:       pricing.DefaultBasePrice,
		location:        time.UTC,
		idempotencySize: dedupe.DefaultMaxSize,
		now:             time.Now,
		logger:          nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the artifact, connects the store and cache and builds the
// booking pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting booking service...")

	if s.artifact == nil {
		a, err := scoring.LoadArtifact(s.artifactPath)
		if err != nil {
			return fmt.Errorf("load scoring artifact: %w", err)
		}
		s.artifact = a
	}
	s.logger.Info(ctx, "scoring artifact ready",
		logger.String("kind", s.artifact.Model.Kind()),
		logger.Int("features", len(s.artifact.FeatureNames)),
	)

	if err := s.openStore(ctx); err != nil {
		return err
	}

	var source booking.FeatureSource = s.store
	if s.redisURL != "" {
		client, err := cache.Connect(ctx, s.redisURL)
		if err != nil {
			_ = s.store.Close()
			return fmt.Errorf("connect weather cache: %w", err)
		}
		s.redis = client
		source = cachedSource{
			Store:   s.store,
			weather: cache.NewWeatherCache(client, s.store, cache.WithTTL(s.cacheTTL), cache.WithLogger(s.logger.Named("cache"))),
		}
		s.logger.Info(ctx, "weather cache enabled", logger.Duration("ttl", s.cacheTTL))
	}

	s.scorer = scoring.NewModelScorer(s.artifact, scoring.WithLogger(s.logger.Named("scoring")))
	s.pricer = pricing.New(pricing.WithBasePrice(s.basePrice))
	s.bookings = booking.NewService(s.scorer, s.pricer, s.store,
		booking.WithClock(s.now),
		booking.WithLocation(s.location),
		booking.WithLogger(s.logger.Named("booking")),
	)
	s.assembler = booking.NewAssembler(source)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.idempotencySize))

	s.started = true
	s.logger.Info(ctx, "booking service started",
		logger.String("store", s.storeKind),
		logger.String("base_price", s.basePrice.String()),
		logger.String("timezone", s.location.String()),
		logger.Int("idempotency_cache_size", s.idempotencySize),
	)

	return nil
}

func (s *Service) openStore(ctx context.Context) error {
	switch {
	case s.store != nil:
		s.storeKind = storeMemory
		if _, ok := s.store.(*postgres.Store); ok {
			s.storeKind = storePostgres
		}
	case s.databaseURL != "":
		store, err := postgres.Open(ctx, s.databaseURL, s.dbMaxConns)
		if err != nil {
			return fmt.Errorf("open postgres store: %w", err)
		}
		s.store = store
		s.storeKind = storePostgres
	default:
		mem := repository.NewMemoryStore(ctx)
		if s.seedPath != "" {
			f, err := repository.ReadFixtures(s.seedPath)
			if err == nil {
				err = mem.Seed(ctx, f)
			}
			if err != nil {
				_ = mem.Close()
				return fmt.Errorf("seed memory store: %w", err)
			}
			s.logger.Info(ctx, "memory store seeded",
				logger.String("path", s.seedPath),
				logger.Int("players", len(f.Players)),
				logger.Int("rounds", len(f.Rounds)),
				logger.Int("weather_days", len(f.Weather)),
			)
		}
		s.store = mem
		s.storeKind = storeMemory
	}
	s.logger.Info(ctx, "using store", logger.String("store", s.storeKind))
	return nil
}

// Stop releases the store and cache connections.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping booking service...")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing redis client", logger.Error(err))
		}
		s.redis = nil
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "booking service stopped")
}

// Book creates a booking. A non-empty idempotency key that was already used
// fails with types.ErrDuplicateRequest; a key whose booking failed is
// released so the client can retry with it.
func (s *Service) Book(ctx context.Context, idempotencyKey string, req types.BookingRequest) (resp types.BookingResponse, err error) {
	if err := s.ready(); err != nil {
		return types.BookingResponse{}, err
	}

	if idempotencyKey != "" {
		if s.deduper.SeenAndRecord(ctx, idempotencyKey) {
			metrics.RecordDuplicateRequest()
			s.logger.Debug(ctx, "duplicate booking request", logger.String("idempotency_key", idempotencyKey))
			return types.BookingResponse{}, fmt.Errorf("%w: idempotency key %q", types.ErrDuplicateRequest, idempotencyKey)
		}
		defer func() {
			if err != nil {
				s.deduper.Unrecord(ctx, idempotencyKey)
			}
		}()
	}

	q, err := s.parseQuote(req.Quote())
	if err != nil {
		return types.BookingResponse{}, err
	}
	name, date, hour := q.name, q.date, q.hour

	if req.NewPlayer {
		if req.Handicap == nil {
			return types.BookingResponse{}, fmt.Errorf("%w: handicap is required for a new player", types.ErrInvalidRequest)
		}
		p, err := s.store.CreatePlayer(ctx, name, *req.Handicap)
		if err != nil {
			return types.BookingResponse{}, err
		}
		s.logger.Info(ctx, "player registered",
			logger.Int64("player_id", p.ID),
			logger.String("player", p.Name),
			logger.Float64("handicap", p.Handicap),
		)
	}

	fv, err := s.assembler.Assemble(ctx, name, date)
	if err != nil {
		return types.BookingResponse{}, err
	}

	res, err := s.bookings.Create(ctx, booking.Request{
		PlayerName:  name,
		Date:        date,
		TeeTimeHour: hour,
		Cart:        req.Cart,
		Features:    fv,
	})
	if err != nil {
		return types.BookingResponse{}, err
	}

	return types.BookingResponse{
		BookingID:      res.BookingID,
		PlayerName:     name,
		TeeTime:        res.Booking.TeeTime,
		PredictedScore: res.PredictedScore,
		Price:          res.Price,
		Features:       fv,
	}, nil
}

// Quote predicts and prices a tee time without booking it.
func (s *Service) Quote(ctx context.Context, req types.QuoteRequest) (types.QuoteResponse, error) {
	if err := s.ready(); err != nil {
		return types.QuoteResponse{}, err
	}

	in, err := s.parseQuote(req)
	if err != nil {
		return types.QuoteResponse{}, err
	}

	fv, err := s.assembler.Assemble(ctx, in.name, in.date)
	if err != nil {
		return types.QuoteResponse{}, err
	}

	prediction, err := s.scorer.Score(ctx, scoring.Input{Features: fv})
	if err != nil {
		return types.QuoteResponse{}, fmt.Errorf("predict score: %w", err)
	}
	q := s.pricer.Quote(in.hour, req.Cart, fv)
	metrics.RecordQuote()

	return types.QuoteResponse{
		PlayerName:     in.name,
		PredictedScore: prediction.Score,
		Base:           q.Base,
		Price:          q.Total,
		Adjustments:    q.Adjustments,
		Features:       fv,
	}, nil
}

// Player returns the named player with their rounds.
func (s *Service) Player(ctx context.Context, name string) (types.PlayerProfile, error) {
	if err := s.ready(); err != nil {
		return types.PlayerProfile{}, err
	}

	p, err := s.store.PlayerByName(ctx, NormalizeName(name))
	if err != nil {
		return types.PlayerProfile{}, err
	}
	rounds, err := s.store.PlayerRounds(ctx, p.ID)
	if err != nil {
		return types.PlayerProfile{}, err
	}
	if rounds == nil {
		rounds = []model.Round{}
	}

	profile := types.PlayerProfile{Player: p, RoundsPlayed: len(rounds), Rounds: rounds}
	if len(rounds) > 0 {
		scores := make([]float64, len(rounds))
		for i, r := range rounds {
			scores[i] = float64(r.Score)
		}
		profile.AverageScore = stat.Mean(scores, nil)
	}
	return profile, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) (types.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:      s.started,
		Store:        s.storeKind,
		WeatherCache: s.redis != nil,
	}
	if !s.started {
		return stats, nil
	}

	stats.ModelKind = s.artifact.Model.Kind()
	stats.ModelFeatures = len(s.artifact.FeatureNames)
	stats.IdempotencyKeys = s.deduper.Size()

	counts, err := s.store.Counts(ctx)
	if err != nil {
		return stats, fmt.Errorf("count store rows: %w", err)
	}
	stats.Players = counts.Players
	stats.Rounds = counts.Rounds
	stats.WeatherDays = counts.Weather
	stats.Bookings = counts.Bookings

	metrics.UpdateStoreRecords("players", counts.Players)
	metrics.UpdateStoreRecords("rounds", counts.Rounds)
	metrics.UpdateStoreRecords("weather", counts.Weather)
	metrics.UpdateStoreRecords("bookings", counts.Bookings)

	return stats, nil
}

// NormalizeName trims a player name and title-cases each word, so
// "sean o'BRIEN " and "Sean O'Brien" name the same player.
func NormalizeName(name string) string {
	return model.NormalizePlayerName(name)
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) parseDate(v string) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(v), s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", types.ErrInvalidRequest, v)
	}
	return d, nil
}

type quoteInput struct {
	name string
	date time.Time
	hour int
}

// parseQuote validates the fields shared by quotes and bookings.
func (s *Service) parseQuote(req types.QuoteRequest) (quoteInput, error) {
	date, err := s.parseDate(req.Date)
	if err != nil {
		return quoteInput{}, err
	}
	hour, err := teeTimeHour(req.TeeTimeHour)
	if err != nil {
		return quoteInput{}, err
	}
	return quoteInput{name: NormalizeName(req.PlayerName), date: date, hour: hour}, nil
}

func teeTimeHour(h *int) (int, error) {
	if h == nil {
		return 0, fmt.Errorf("%w: tee_time_hour is required", types.ErrInvalidRequest)
	}
	return *h, nil
}
