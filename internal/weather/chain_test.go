package weather

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/gridsim/weatherfeed/pkg/logger"
)

// stubProvider records whether it was attempted and returns a canned result.
type stubProvider struct {
	name     string
	obs      *CanonicalObservation
	err      error
	attempts int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(ctx context.Context) (*CanonicalObservation, error) {
	s.attempts++
	if s.err != nil {
		return nil, s.err
	}
	return s.obs, nil
}

func liveObservation(source string) *CanonicalObservation {
	obs := &CanonicalObservation{
		HourlyTemp:     make([]float64, HoursPerDay),
		HourlyHumidity: make([]float64, HoursPerDay),
		HourlyCloud:    make([]float64, HoursPerDay),
		SunriseHour:    6,
		SunsetHour:     20,
	}
	for i := range obs.HourlyHumidity {
		obs.HourlyHumidity[i] = 50
	}
	obs.Meta.SetSource(source)
	return obs
}

func newTestChain(providers ...Provider) *Chain {
	synth := NewSynthesizer(rand.New(rand.NewSource(1)))
	return NewChain(providers, synth, time.Second, logger.NewNop())
}

func TestChainReturnsFirstSuccess(t *testing.T) {
	keyed := &stubProvider{name: "keyed", obs: liveObservation("keyed provider")}
	keyless := &stubProvider{name: "keyless", obs: liveObservation("keyless provider")}

	obs := newTestChain(keyed, keyless).FetchHourlyWeather(context.Background())

	if obs.Meta.Source != "keyed provider" {
		t.Errorf("source = %q, want first provider's result", obs.Meta.Source)
	}
	if keyless.attempts != 0 {
		t.Error("chain must stop at first success, later providers untouched")
	}
	if obs.Meta.IsFallback {
		t.Error("live result must not be marked fallback")
	}
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	keyed := &stubProvider{name: "keyed", err: &NetworkError{Provider: "keyed", Status: 500}}
	keyless := &stubProvider{name: "keyless", obs: liveObservation("keyless provider")}

	obs := newTestChain(keyed, keyless).FetchHourlyWeather(context.Background())

	if keyed.attempts != 1 {
		t.Errorf("keyed attempts = %d, want 1", keyed.attempts)
	}
	if obs.Meta.Source != "keyless provider" {
		t.Errorf("source = %q, want keyless result", obs.Meta.Source)
	}
	if obs.Error != "" {
		t.Errorf("live success must not carry a prior error, got %q", obs.Error)
	}
}

func TestChainTerminalSynthesis(t *testing.T) {
	keyless := &stubProvider{name: "keyless", err: &NetworkError{Provider: "keyless", Status: 503}}

	obs := newTestChain(keyless).FetchHourlyWeather(context.Background())

	if !obs.Meta.IsFallback {
		t.Fatal("terminal result must be marked fallback")
	}
	if obs.Error == "" {
		t.Error("fallback after a failed attempt must carry the diagnostic")
	}
	if obs.Meta.Source == "" {
		t.Error("fallback must indicate offline origin in its source")
	}
}

// The defining contract: whatever the failure mix, the chain always returns a
// valid, bounded, 24-length observation.
func TestChainIsTotal(t *testing.T) {
	tests := []struct {
		name      string
		providers []Provider
	}{
		{"no providers", nil},
		{"all failing", []Provider{
			&stubProvider{name: "a", err: &NetworkError{Provider: "a", Status: 500}},
			&stubProvider{name: "b", err: &SchemaError{Provider: "b", Reason: "short arrays"}},
			&stubProvider{name: "c", err: &ParseError{Provider: "c"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := newTestChain(tt.providers...).FetchHourlyWeather(context.Background())

			if obs == nil {
				t.Fatal("chain returned nil")
			}
			if len(obs.HourlyTemp) != HoursPerDay ||
				len(obs.HourlyHumidity) != HoursPerDay ||
				len(obs.HourlyCloud) != HoursPerDay {
				t.Fatal("expected 24-length series")
			}
			if obs.SunriseHour >= obs.SunsetHour {
				t.Error("sunrise must precede sunset")
			}
			for h := 0; h < HoursPerDay; h++ {
				if obs.HourlyHumidity[h] < 10 || obs.HourlyHumidity[h] > 95 {
					t.Errorf("humidity(%d) = %v outside [10,95]", h, obs.HourlyHumidity[h])
				}
				if obs.HourlyCloud[h] < 0 || obs.HourlyCloud[h] > 100 {
					t.Errorf("cloud(%d) = %v outside [0,100]", h, obs.HourlyCloud[h])
				}
			}
		})
	}
}

func TestChainAttemptOrderIsSequential(t *testing.T) {
	var order []string
	record := func(name string) *stubProvider {
		return &stubProvider{name: name, err: &NetworkError{Provider: name, Status: 500}}
	}
	a, b := record("first"), record("second")

	chain := newTestChain(orderedProvider{a, &order}, orderedProvider{b, &order})
	chain.FetchHourlyWeather(context.Background())

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("attempt order = %v, want [first second]", order)
	}
}

// orderedProvider wraps a stub and records attempt order.
type orderedProvider struct {
	inner *stubProvider
	order *[]string
}

func (o orderedProvider) Name() string { return o.inner.name }

func (o orderedProvider) Fetch(ctx context.Context) (*CanonicalObservation, error) {
	*o.order = append(*o.order, o.inner.name)
	return o.inner.Fetch(ctx)
}
