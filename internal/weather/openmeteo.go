package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gridsim/weatherfeed/pkg/logger"
)

const openMeteoName = "open-meteo"

// OpenMeteoClient is the keyless numeric-forecast adapter. It issues a single
// request for a fixed geographic coordinate and translates the response into
// the canonical schema.
type OpenMeteoClient struct {
	baseURL    string
	lat        float64
	lon        float64
	httpClient *http.Client
	logger     *logger.Logger
}

// NewOpenMeteoClient creates a new Open-Meteo adapter.
func NewOpenMeteoClient(baseURL string, lat, lon float64, timeout time.Duration, log *logger.Logger) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL: baseURL,
		lat:     lat,
		lon:     lon,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.Named("open-meteo"),
	}
}

// openMeteoResponse mirrors the provider's raw payload. It is validated on
// receipt; conversion to the canonical shape happens only after validation
// succeeds.
type openMeteoResponse struct {
	Hourly struct {
		Temperature      []any `json:"temperature_2m"`
		RelativeHumidity []any `json:"relative_humidity_2m"`
		CloudCover       []any `json:"cloud_cover"`
	} `json:"hourly"`
	Daily struct {
		Sunrise []string `json:"sunrise"`
		Sunset  []string `json:"sunset"`
	} `json:"daily"`
}

// Name returns the adapter name used in chain ordering and provenance.
func (c *OpenMeteoClient) Name() string { return openMeteoName }

// Fetch requests a single-day hourly forecast and converts it to a canonical
// observation. Hourly arrays longer than a day are sliced to the first 24
// values; shorter ones are rejected with a SchemaError so the chain can tell
// "payload contract broken" from "success".
func (c *OpenMeteoClient) Fetch(ctx context.Context) (*CanonicalObservation, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%.4f", c.lat))
	values.Set("longitude", fmt.Sprintf("%.4f", c.lon))
	values.Set("hourly", "temperature_2m,relative_humidity_2m,cloud_cover")
	values.Set("daily", "sunrise,sunset")
	values.Set("forecast_days", "1")
	values.Set("timezone", "auto")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &NetworkError{Provider: openMeteoName, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Provider: openMeteoName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{Provider: openMeteoName, Status: resp.StatusCode}
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &ParseError{Provider: openMeteoName, Err: err}
	}

	if err := c.validate(&payload); err != nil {
		return nil, err
	}

	sunrise, err := parseISOHour(payload.Daily.Sunrise[0])
	if err != nil {
		return nil, &SchemaError{Provider: openMeteoName, Reason: err.Error()}
	}
	sunset, err := parseISOHour(payload.Daily.Sunset[0])
	if err != nil {
		return nil, &SchemaError{Provider: openMeteoName, Reason: err.Error()}
	}
	if sunset <= sunrise {
		return nil, &SchemaError{
			Provider: openMeteoName,
			Reason:   fmt.Sprintf("sunset %.2f does not follow sunrise %.2f", sunset, sunrise),
		}
	}

	obs := &CanonicalObservation{
		HourlyTemp:     Normalize(payload.Hourly.Temperature[:HoursPerDay], 0),
		HourlyHumidity: Normalize(payload.Hourly.RelativeHumidity[:HoursPerDay], 50),
		HourlyCloud:    Normalize(payload.Hourly.CloudCover[:HoursPerDay], 0),
		SunriseHour:    sunrise,
		SunsetHour:     sunset,
		Meta: ObservationMeta{
			IsFallback:  false,
			Date:        time.Now().Format("2006-01-02"),
			LastUpdated: time.Now().UTC(),
		},
	}
	obs.Meta.SetSource(fmt.Sprintf("Open-Meteo (%.2f, %.2f)", c.lat, c.lon))

	clampSeries(obs.HourlyHumidity, 10, 95)
	clampSeries(obs.HourlyCloud, 0, 100)

	c.logger.Debug("Fetched hourly forecast",
		logger.Float64("sunrise", sunrise),
		logger.Float64("sunset", sunset))

	return obs, nil
}

// validate rejects payloads missing required fields or whose hourly arrays
// hold less than a full day of values.
func (c *OpenMeteoClient) validate(payload *openMeteoResponse) error {
	series := map[string][]any{
		"temperature_2m":       payload.Hourly.Temperature,
		"relative_humidity_2m": payload.Hourly.RelativeHumidity,
		"cloud_cover":          payload.Hourly.CloudCover,
	}
	for name, s := range series {
		if len(s) < HoursPerDay {
			return &SchemaError{
				Provider: openMeteoName,
				Reason:   fmt.Sprintf("%s has %d values, want at least %d", name, len(s), HoursPerDay),
			}
		}
	}

	if len(payload.Daily.Sunrise) == 0 || len(payload.Daily.Sunset) == 0 {
		return &SchemaError{Provider: openMeteoName, Reason: "missing daily sunrise/sunset"}
	}

	return nil
}
