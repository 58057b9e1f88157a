package weather

import (
	"time"
)

// HoursPerDay is the fixed length of every canonical hourly series.
const HoursPerDay = 24

// maxSourceLen bounds the provenance string for display purposes.
const maxSourceLen = 48

// CloudProfileKind is the qualitative cloud-behavior category driving synthesis.
type CloudProfileKind string

const (
	CloudClear            CloudProfileKind = "CLEAR"
	CloudHazy             CloudProfileKind = "HAZY"
	CloudOvercast         CloudProfileKind = "OVERCAST"
	CloudAfternoonBuildup CloudProfileKind = "AFTERNOON_BUILDUP"
)

// ObservationMeta carries provenance for a canonical observation.
type ObservationMeta struct {
	Source      string    `json:"source"`       // human-readable origin, bounded length
	IsFallback  bool      `json:"is_fallback"`  // true iff produced by the offline synthesis model
	Date        string    `json:"date"`         // display date, not used for logic
	LastUpdated time.Time `json:"last_updated"` // display timestamp, not used for logic
}

// CanonicalObservation is the only weather object downstream consumers
// (simulator, UI) may receive. All three hourly series are exactly 24 long,
// index = hour of day.
type CanonicalObservation struct {
	HourlyTemp     []float64       `json:"hourly_temp"`
	HourlyHumidity []float64       `json:"hourly_humidity"`
	HourlyCloud    []float64       `json:"hourly_cloud"`
	SunriseHour    float64         `json:"sunrise_hour"` // decimal hours in [0,24)
	SunsetHour     float64         `json:"sunset_hour"`  // decimal hours in [0,24), > SunriseHour
	Meta           ObservationMeta `json:"meta"`
	// Error carries the most recent acquisition failure when a fallback
	// occurred. Empty on a clean live success.
	Error string `json:"error,omitempty"`
}

// ClimateProfile is a named seasonal parameter set feeding the synthesis
// model. Physical parameters are immutable; only the display date is
// recomputed per lookup.
type ClimateProfile struct {
	Name        string           `json:"name"`
	DayOffset   int              `json:"day_offset"`
	Date        time.Time        `json:"date"`
	MaxT        float64          `json:"max_t"`
	MinT        float64          `json:"min_t"`
	HumidBase   float64          `json:"humid_base"`
	CloudKind   CloudProfileKind `json:"cloud_kind"`
	SunriseHour float64          `json:"sunrise_hour"`
	SunsetHour  float64          `json:"sunset_hour"`
}

// SetSource assigns the provenance string, truncating it to the bounded
// display length.
func (m *ObservationMeta) SetSource(source string) {
	runes := []rune(source)
	if len(runes) > maxSourceLen {
		source = string(runes[:maxSourceLen])
	}
	m.Source = source
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampSeries bounds every element of a canonical series in place so the
// boundary invariants (humidity [10,95], cloud [0,100]) hold for live data
// as well as synthetic.
func clampSeries(values []float64, lo, hi float64) {
	for i, v := range values {
		values[i] = clamp(v, lo, hi)
	}
}
