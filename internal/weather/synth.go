package weather

import (
	"fmt"
	"math"
	"time"
)

// Synthesis phase constants: the diurnal temperature curve bottoms out at
// 05:00 and peaks at 15:00.
const (
	tempTroughHour = 5.0
	tempPeakHour   = 15.0
)

// NoiseSource yields uniform random values in [0,1). *math/rand.Rand
// satisfies it; tests inject deterministic sources.
type NoiseSource interface {
	Float64() float64
}

// Synthesizer generates physically plausible 24-point weather profiles from a
// climate profile. It is the terminal, unconditionally-successful fallback of
// the provider chain.
type Synthesizer struct {
	noise NoiseSource
}

// NewSynthesizer creates a synthesizer using the given noise source.
func NewSynthesizer(noise NoiseSource) *Synthesizer {
	return &Synthesizer{noise: noise}
}

// Synthesize produces a canonical observation from the given climate profile.
// It is total: it never fails, and the result always satisfies the canonical
// boundary invariants. The qualitative shape (which cloud band, which hours
// peak) is deterministic given the profile; randomness only moves values
// within each band.
func (s *Synthesizer) Synthesize(profile ClimateProfile) *CanonicalObservation {
	temps := make([]float64, HoursPerDay)
	humidity := make([]float64, HoursPerDay)
	cloud := make([]float64, HoursPerDay)

	span := profile.MaxT - profile.MinT
	for h := 0; h < HoursPerDay; h++ {
		temps[h] = diurnalTemp(float64(h), profile.MinT, profile.MaxT)

		// Hot hours are drier, cold hours more humid, centered on the
		// profile's baseline.
		factor := 0.0
		if span != 0 {
			factor = (temps[h] - profile.MinT) / span
		}
		humidity[h] = clamp(profile.HumidBase+30*(1-factor), 10, 95)

		cloud[h] = clamp(s.cloudAt(float64(h), profile.CloudKind), 0, 100)
	}

	obs := &CanonicalObservation{
		HourlyTemp:     temps,
		HourlyHumidity: humidity,
		HourlyCloud:    cloud,
		SunriseHour:    profile.SunriseHour,
		SunsetHour:     profile.SunsetHour,
		Meta: ObservationMeta{
			IsFallback:  true,
			Date:        profile.Date.Format("2006-01-02"),
			LastUpdated: time.Now().UTC(),
		},
	}
	obs.Meta.SetSource(fmt.Sprintf("Offline synthesis (%s)", profile.Name))
	return obs
}

// diurnalTemp evaluates the half-cosine diurnal curve: minimum at hour 5,
// maximum at hour 15, one smooth trough/peak cycle per day.
func diurnalTemp(hour, minT, maxT float64) float64 {
	phase := (hour - tempTroughHour) * 2 * math.Pi / HoursPerDay
	return minT + (maxT-minT)*(1-math.Cos(phase))/2
}

// cloudAt returns the cloud cover for an hour before final clamping, branching
// on the profile's qualitative kind.
func (s *Synthesizer) cloudAt(hour float64, kind CloudProfileKind) float64 {
	switch kind {
	case CloudClear:
		return s.noise.Float64() * 5
	case CloudHazy:
		return 10 + s.noise.Float64()*10
	case CloudOvercast:
		return 70 + s.noise.Float64()*20
	case CloudAfternoonBuildup:
		if hour >= 12 && hour <= 18 {
			// Triangular profile peaking at 15:00.
			return 40*(1-math.Abs(hour-tempPeakHour)/4) + s.noise.Float64()*15
		}
		return s.noise.Float64() * 10
	default:
		return s.noise.Float64() * 5
	}
}
