package extraction

import (
	"context"
	"encoding/json"

	"github.com/gridsim/weatherfeed/internal/ai"
	"github.com/gridsim/weatherfeed/internal/weather"
	"github.com/gridsim/weatherfeed/pkg/logger"
)

// Per-field fallback constants for digitized chart series.
const (
	fallbackTemp     = 25.0
	fallbackHumidity = 50.0
	fallbackCloud    = 0.0
)

const extractionInstruction = `Read the attached weather chart and digitize it into three hourly series ` +
	`covering hours 0 through 23 of the pictured day. Return temperature in degrees Celsius, ` +
	`relative humidity in percent, and cloud cover in percent. Estimate values where the chart ` +
	`is unclear; every array must contain exactly 24 numbers.`

// Series is a digitized three-array weather profile. Each array is exactly
// 24 long, numeric, and bounded, regardless of extraction quality.
type Series struct {
	Temperature []float64 `json:"temperature"`
	Humidity    []float64 `json:"humidity"`
	Cloud       []float64 `json:"cloud"`
}

// Service digitizes weather charts through a generative-model structured
// call. It is fail-soft: callers always receive a well-formed Series, never
// an error.
type Service struct {
	provider ai.StructuredProvider // nil when no credential is configured
	logger   *logger.Logger
}

// NewService creates an extraction service. A nil provider (no credential)
// is allowed and routes every request to the deterministic fallback profile.
func NewService(provider ai.StructuredProvider, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   log.Named("extraction"),
	}
}

// ExtractChartSeries digitizes the given chart image. On any failure —
// missing credential, transport error, malformed or empty model response —
// it returns the deterministic fallback profile instead of an error. On
// success each extracted array passes through the shared array normalizer
// with its per-field fallback constant, so the result is fixed-length and
// numeric whatever the model produced.
func (s *Service) ExtractChartSeries(ctx context.Context, image []byte, mimeType string) *Series {
	if s.provider == nil {
		s.logger.Warn("No extraction provider configured, using fallback profile")
		return FallbackSeries()
	}

	raw, err := s.provider.GenerateStructured(ctx, extractionInstruction,
		&ai.ImagePart{Data: image, MIMEType: mimeType}, chartSchema())
	if err != nil {
		s.logger.Warn("Chart extraction failed, using fallback profile", logger.Error(err))
		return FallbackSeries()
	}

	// Arrays arrive as loosely-typed JSON; element-level repair is the
	// normalizer's job, so decode permissively here.
	var payload struct {
		Temperature []any `json:"temperature"`
		Humidity    []any `json:"humidity"`
		Cloud       []any `json:"cloud"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		s.logger.Warn("Chart extraction returned undecodable JSON, using fallback profile",
			logger.Error(err))
		return FallbackSeries()
	}

	series := &Series{
		Temperature: weather.Normalize(payload.Temperature, fallbackTemp),
		Humidity:    weather.Normalize(payload.Humidity, fallbackHumidity),
		Cloud:       weather.Normalize(payload.Cloud, fallbackCloud),
	}

	s.logger.Info("Chart extraction completed",
		logger.Int("image_bytes", len(image)))
	return series
}

// FallbackSeries is the deterministic profile handed out when extraction
// cannot produce usable data: constant temperature and humidity, zero cloud.
func FallbackSeries() *Series {
	series := &Series{
		Temperature: make([]float64, weather.HoursPerDay),
		Humidity:    make([]float64, weather.HoursPerDay),
		Cloud:       make([]float64, weather.HoursPerDay),
	}
	for i := 0; i < weather.HoursPerDay; i++ {
		series.Temperature[i] = fallbackTemp
		series.Humidity[i] = fallbackHumidity
		series.Cloud[i] = fallbackCloud
	}
	return series
}

// chartSchema is the fixed three-array response schema sent with every
// extraction request.
func chartSchema() *ai.Schema {
	return ai.ObjectSchema(map[string]*ai.Schema{
		"temperature": ai.NumberArraySchema("Hourly temperature in degrees Celsius, 24 values"),
		"humidity":    ai.NumberArraySchema("Hourly relative humidity in percent, 24 values"),
		"cloud":       ai.NumberArraySchema("Hourly cloud cover in percent, 24 values"),
	}, "temperature", "humidity", "cloud")
}
