package weather

import (
	"context"
	"time"

	"github.com/gridsim/weatherfeed/pkg/logger"
)

// Provider is a source of live hourly weather data reached over the network.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (*CanonicalObservation, error)
}

// Chain sequences provider attempts by priority and guarantees a terminal
// successful result by falling back to the offline synthesis model. It is the
// only component allowed to swallow acquisition errors: no error from data
// acquisition ever reaches the simulator or UI directly.
type Chain struct {
	providers      []Provider
	synth          *Synthesizer
	attemptTimeout time.Duration
	now            func() time.Time
	logger         *logger.Logger
}

// NewChain creates a provider chain. Providers are attempted strictly in the
// given order; attempts are sequential, never raced, so a paid credentialed
// provider is never billed alongside a free one that would have sufficed.
func NewChain(providers []Provider, synth *Synthesizer, attemptTimeout time.Duration, log *logger.Logger) *Chain {
	return &Chain{
		providers:      providers,
		synth:          synth,
		attemptTimeout: attemptTimeout,
		now:            time.Now,
		logger:         log.Named("provider-chain"),
	}
}

// FetchHourlyWeather walks the ordered provider list and returns the first
// successful canonical observation. It is total: when every provider fails,
// it synthesizes today's climate profile, attaches the most recent failure as
// an informational string, and returns that instead. Each attempt runs under
// its own deadline; expiry surfaces as an ordinary provider failure and feeds
// the same fallback path.
func (c *Chain) FetchHourlyWeather(ctx context.Context) *CanonicalObservation {
	var lastErr error

	for _, p := range c.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		obs, err := p.Fetch(attemptCtx)
		cancel()

		if err != nil {
			lastErr = err
			c.logger.Warn("Provider attempt failed, falling through",
				logger.String("provider", p.Name()),
				logger.Error(err))
			continue
		}

		c.logger.Info("Live weather fetch succeeded",
			logger.String("provider", p.Name()),
			logger.String("source", obs.Meta.Source))
		return obs
	}

	profile := ProfileFor(0, c.now())
	obs := c.synth.Synthesize(profile)
	if lastErr != nil {
		obs.Error = lastErr.Error()
	}

	c.logger.Info("All providers failed, using offline synthesis",
		logger.String("profile", profile.Name),
		logger.String("last_error", obs.Error))
	return obs
}
