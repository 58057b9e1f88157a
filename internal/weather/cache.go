package weather

import (
	"sync"
	"time"

	"github.com/gridsim/weatherfeed/pkg/logger"
)

// Cache holds the most recent canonical observation with an expiry, guarding
// consumers against hammering the provider chain.
type Cache struct {
	obs       *CanonicalObservation
	expiresAt time.Time
	expiry    time.Duration
	logger    *logger.Logger
	mu        sync.RWMutex
}

// NewCache creates a cache whose entries expire after the given duration.
func NewCache(expiry time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		expiry: expiry,
		logger: log.Named("weather-cache"),
	}
}

// Get returns the cached observation, or nil when nothing has been stored yet.
func (c *Cache) Get() *CanonicalObservation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.obs
}

// Set stores a fresh observation and resets the expiry clock.
func (c *Cache) Set(obs *CanonicalObservation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.obs = obs
	c.expiresAt = time.Now().Add(c.expiry)

	c.logger.Debug("Observation cached",
		logger.String("source", obs.Meta.Source),
		logger.Bool("is_fallback", obs.Meta.IsFallback),
		logger.Time("expires_at", c.expiresAt))
}

// IsExpired reports whether the cached observation is stale (or absent).
func (c *Cache) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.obs == nil || time.Now().After(c.expiresAt)
}
