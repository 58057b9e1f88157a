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

const weatherAPIName = "weatherapi"

// WeatherAPIClient is the keyed named-location adapter. It is only attempted
// when its credential is configured.
type WeatherAPIClient struct {
	baseURL    string
	apiKey     string
	query      string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewWeatherAPIClient creates a new WeatherAPI.com adapter.
func NewWeatherAPIClient(baseURL, apiKey, query string, timeout time.Duration, log *logger.Logger) *WeatherAPIClient {
	return &WeatherAPIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		query:   query,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.Named("weatherapi"),
	}
}

// weatherAPIResponse mirrors the provider's nested raw payload.
type weatherAPIResponse struct {
	Forecast struct {
		ForecastDay []struct {
			Hour []struct {
				TempC    any `json:"temp_c"`
				Humidity any `json:"humidity"`
				Cloud    any `json:"cloud"`
			} `json:"hour"`
			Astro struct {
				Sunrise string `json:"sunrise"`
				Sunset  string `json:"sunset"`
			} `json:"astro"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Name returns the adapter name used in chain ordering and provenance.
func (c *WeatherAPIClient) Name() string { return weatherAPIName }

// Fetch requests a one-day forecast by location name and converts the
// provider's per-hour objects into the canonical arrays. A forecast day with
// other than 24 hour entries is rejected with a SchemaError.
func (c *WeatherAPIClient) Fetch(ctx context.Context) (*CanonicalObservation, error) {
	values := url.Values{}
	values.Set("key", c.apiKey)
	values.Set("q", c.query)
	values.Set("days", "1")
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &NetworkError{Provider: weatherAPIName, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Provider: weatherAPIName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{Provider: weatherAPIName, Status: resp.StatusCode}
	}

	var payload weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &ParseError{Provider: weatherAPIName, Err: err}
	}

	if len(payload.Forecast.ForecastDay) == 0 {
		return nil, &SchemaError{Provider: weatherAPIName, Reason: "missing forecast.forecastday"}
	}
	day := payload.Forecast.ForecastDay[0]
	if len(day.Hour) != HoursPerDay {
		return nil, &SchemaError{
			Provider: weatherAPIName,
			Reason:   fmt.Sprintf("forecastday has %d hour entries, want %d", len(day.Hour), HoursPerDay),
		}
	}

	sunrise, err := parse12Hour(day.Astro.Sunrise)
	if err != nil {
		return nil, &SchemaError{Provider: weatherAPIName, Reason: err.Error()}
	}
	sunset, err := parse12Hour(day.Astro.Sunset)
	if err != nil {
		return nil, &SchemaError{Provider: weatherAPIName, Reason: err.Error()}
	}
	if sunset <= sunrise {
		return nil, &SchemaError{
			Provider: weatherAPIName,
			Reason:   fmt.Sprintf("sunset %.2f does not follow sunrise %.2f", sunset, sunrise),
		}
	}

	temps := make([]any, HoursPerDay)
	humidity := make([]any, HoursPerDay)
	cloud := make([]any, HoursPerDay)
	for i, h := range day.Hour {
		temps[i] = h.TempC
		humidity[i] = h.Humidity
		cloud[i] = h.Cloud
	}

	obs := &CanonicalObservation{
		HourlyTemp:     Normalize(temps, 0),
		HourlyHumidity: Normalize(humidity, 50),
		HourlyCloud:    Normalize(cloud, 0),
		SunriseHour:    sunrise,
		SunsetHour:     sunset,
		Meta: ObservationMeta{
			IsFallback:  false,
			Date:        time.Now().Format("2006-01-02"),
			LastUpdated: time.Now().UTC(),
		},
	}
	obs.Meta.SetSource(fmt.Sprintf("WeatherAPI (%s)", c.query))

	clampSeries(obs.HourlyHumidity, 10, 95)
	clampSeries(obs.HourlyCloud, 0, 100)

	c.logger.Debug("Fetched hourly forecast",
		logger.Float64("sunrise", sunrise),
		logger.Float64("sunset", sunset))

	return obs, nil
}
