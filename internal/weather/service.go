package weather

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gridsim/weatherfeed/pkg/logger"
)

// Config holds the weather acquisition settings. It mirrors the config
// package's weather section to avoid a circular import.
type Config struct {
	RefreshIntervalMinutes int
	RequestTimeoutSeconds  int
	CacheExpiryMinutes     int
	OpenMeteoBaseURL       string
	WeatherAPIBaseURL      string
	WeatherAPIKey          string
	LocationQuery          string
	Latitude               float64
	Longitude              float64
}

// Storage persists fetched observations with their provenance.
type Storage interface {
	SaveObservation(obs *CanonicalObservation) error
}

// Broadcaster pushes refreshed observations to connected clients.
type Broadcaster interface {
	BroadcastObservation(obs *CanonicalObservation)
}

// Service manages weather acquisition: it owns the provider chain, caches the
// current observation, refreshes it in the background, persists every result,
// and broadcasts refreshes.
type Service struct {
	config      Config
	chain       *Chain
	synth       *Synthesizer
	cache       *Cache
	storage     Storage     // optional
	broadcaster Broadcaster // optional
	logger      *logger.Logger

	// Service lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.RWMutex

	// Initial data readiness
	initialDataReady chan struct{}
	initialDataOnce  sync.Once
}

// NewService creates a weather service. The provider order is fixed: the
// keyed adapter is attempted first and only when its credential is
// configured, the keyless adapter next unconditionally, offline synthesis
// last. Storage and broadcaster may be nil.
func NewService(cfg Config, storage Storage, broadcaster Broadcaster, log *logger.Logger) *Service {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	var providers []Provider
	if cfg.WeatherAPIKey != "" {
		providers = append(providers, NewWeatherAPIClient(
			cfg.WeatherAPIBaseURL, cfg.WeatherAPIKey, cfg.LocationQuery, timeout, log))
	}
	providers = append(providers, NewOpenMeteoClient(
		cfg.OpenMeteoBaseURL, cfg.Latitude, cfg.Longitude, timeout, log))

	synth := NewSynthesizer(rand.New(rand.NewSource(time.Now().UnixNano())))
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		config:           cfg,
		chain:            NewChain(providers, synth, timeout, log),
		synth:            synth,
		cache:            NewCache(time.Duration(cfg.CacheExpiryMinutes)*time.Minute, log),
		storage:          storage,
		broadcaster:      broadcaster,
		logger:           log.Named("weather-service"),
		ctx:              ctx,
		cancel:           cancel,
		initialDataReady: make(chan struct{}),
	}
}

// Start begins the initial fetch and the background refresh loop.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info("Starting weather service",
		logger.Int("refresh_interval_minutes", s.config.RefreshIntervalMinutes),
		logger.Bool("keyed_provider_enabled", s.config.WeatherAPIKey != ""))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.performInitialFetch()
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.backgroundRefresh()
	}()

	s.started = true
	return nil
}

// Stop gracefully shuts down the background refresh.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info("Stopping weather service")
	s.cancel()
	s.wg.Wait()
	s.started = false
	return nil
}

// GetObservation returns the current canonical observation. It is total:
// waiting for the initial fetch is bounded, and when nothing usable is cached
// it synthesizes today's profile on the spot rather than erroring.
func (s *Service) GetObservation() *CanonicalObservation {
	select {
	case <-s.initialDataReady:
	case <-time.After(30 * time.Second):
		s.logger.Warn("Timeout waiting for initial weather data, synthesizing")
		return s.synthesizeNow("timed out waiting for initial fetch")
	}

	if s.cache.IsExpired() {
		s.logger.Info("Cached observation expired, refreshing")
		return s.fetchAndUpdateCache()
	}

	if obs := s.cache.Get(); obs != nil {
		return obs
	}

	// Shouldn't happen once the initial fetch completed, but stay total.
	s.logger.Warn("No observation cached after initial fetch, synthesizing")
	return s.synthesizeNow("no cached observation available")
}

// RefreshNow fetches a fresh observation immediately, updates the cache, and
// returns the result.
func (s *Service) RefreshNow() *CanonicalObservation {
	s.logger.Info("Manual weather refresh triggered")
	return s.fetchAndUpdateCache()
}

// IsStarted reports whether the service is running.
func (s *Service) IsStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// synthesizeNow produces an immediate offline observation carrying the given
// diagnostic.
func (s *Service) synthesizeNow(reason string) *CanonicalObservation {
	obs := s.synth.Synthesize(ProfileFor(0, time.Now()))
	obs.Error = reason
	return obs
}

// performInitialFetch populates the cache once on startup and signals
// readiness.
func (s *Service) performInitialFetch() {
	s.logger.Info("Performing initial weather fetch")
	s.fetchAndUpdateCache()

	s.initialDataOnce.Do(func() {
		close(s.initialDataReady)
		s.logger.Info("Initial weather fetch completed")
	})
}

// backgroundRefresh runs the periodic refresh loop.
func (s *Service) backgroundRefresh() {
	refreshInterval := time.Duration(s.config.RefreshIntervalMinutes) * time.Minute
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	s.logger.Info("Background weather refresh started",
		logger.Duration("interval", refreshInterval))

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Background weather refresh stopped")
			return
		case <-ticker.C:
			s.logger.Debug("Periodic weather refresh triggered")
			s.fetchAndUpdateCache()
		}
	}
}

// fetchAndUpdateCache runs the provider chain once, then caches, persists,
// and broadcasts the result.
func (s *Service) fetchAndUpdateCache() *CanonicalObservation {
	startTime := time.Now()

	obs := s.chain.FetchHourlyWeather(s.ctx)
	s.cache.Set(obs)

	if s.storage != nil {
		if err := s.storage.SaveObservation(obs); err != nil {
			s.logger.Error("Failed to persist observation", logger.Error(err))
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastObservation(obs)
	}

	s.logger.Info("Weather refresh completed",
		logger.String("source", obs.Meta.Source),
		logger.Bool("is_fallback", obs.Meta.IsFallback),
		logger.Duration("duration", time.Since(startTime)))

	return obs
}

// ValidateConfig validates the weather acquisition settings.
func ValidateConfig(cfg Config) error {
	if cfg.RefreshIntervalMinutes <= 0 {
		return fmt.Errorf("refresh_interval_minutes must be greater than 0")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be greater than 0")
	}
	if cfg.CacheExpiryMinutes <= 0 {
		return fmt.Errorf("cache_expiry_minutes must be greater than 0")
	}
	if cfg.OpenMeteoBaseURL == "" {
		return fmt.Errorf("open_meteo_base_url cannot be empty")
	}
	if cfg.WeatherAPIKey != "" && cfg.LocationQuery == "" {
		return fmt.Errorf("location_query is required when the keyed provider is enabled")
	}
	return nil
}
