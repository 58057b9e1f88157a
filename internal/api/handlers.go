package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gridsim/weatherfeed/internal/config"
	"github.com/gridsim/weatherfeed/internal/extraction"
	"github.com/gridsim/weatherfeed/internal/simulation"
	"github.com/gridsim/weatherfeed/internal/storage/sqlite"
	"github.com/gridsim/weatherfeed/internal/weather"
	"github.com/gridsim/weatherfeed/pkg/logger"
)

// WeatherService is the weather acquisition surface the API depends on.
type WeatherService interface {
	GetObservation() *weather.CanonicalObservation
	RefreshNow() *weather.CanonicalObservation
}

// ObservationHistory reads back persisted observations.
type ObservationHistory interface {
	GetRecent(limit int) ([]sqlite.ObservationRecord, error)
}

// Extractor turns chart images into hourly series.
type Extractor interface {
	ExtractChartSeries(ctx context.Context, image []byte, mimeType string) *extraction.Series
}

// Narrator renders a dispatch summary into an HTML fragment.
type Narrator interface {
	RenderReport(ctx context.Context, summary *simulation.Summary) string
}

// Handler contains the API handlers
type Handler struct {
	weatherService WeatherService
	history        ObservationHistory
	extractor      Extractor
	narrator       Narrator
	config         *config.Config
	logger         *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(weatherService WeatherService, history ObservationHistory, extractor Extractor, narrator Narrator, cfg *config.Config, log *logger.Logger) *Handler {
	return &Handler{
		weatherService: weatherService,
		history:        history,
		extractor:      extractor,
		narrator:       narrator,
		config:         cfg,
		logger:         log.Named("api-handler"),
	}
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}

// GetWeather returns the current canonical observation
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	obs := h.weatherService.GetObservation()

	h.logger.Debug("Weather request served",
		logger.String("source", obs.Meta.Source),
		logger.Bool("is_fallback", obs.Meta.IsFallback),
		logger.Duration("duration", time.Since(start)))

	WriteJSON(w, http.StatusOK, obs)
}

// RefreshWeather forces an immediate refresh and returns the new observation
func (h *Handler) RefreshWeather(w http.ResponseWriter, r *http.Request) {
	obs := h.weatherService.RefreshNow()

	h.logger.Info("Weather refresh requested via API",
		logger.String("source", obs.Meta.Source),
		logger.Bool("is_fallback", obs.Meta.IsFallback))

	WriteJSON(w, http.StatusOK, obs)
}

// GetWeatherHistory returns recently persisted observations, newest first
func (h *Handler) GetWeatherHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "observation storage is not configured",
		})
		return
	}

	limit := h.config.Storage.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	records, err := h.history.GetRecent(limit)
	if err != nil {
		h.logger.Error("Failed to read observation history", logger.Error(err))
		WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to read observation history",
		})
		return
	}
	if records == nil {
		records = []sqlite.ObservationRecord{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":        len(records),
		"observations": records,
	})
}

// ExtractChart accepts a chart image and returns extracted hourly series.
// The response is always 24-length series; extraction failures degrade to
// neutral values rather than an error status.
func (h *Handler) ExtractChart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageBase64 string `json:"image_base64"`
		MIMEType    string `json:"mime_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.ImageBase64 == "" {
		http.Error(w, "image_base64 is required", http.StatusBadRequest)
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		http.Error(w, "image_base64 is not valid base64", http.StatusBadRequest)
		return
	}
	if req.MIMEType == "" {
		req.MIMEType = "image/png"
	}

	series := h.extractor.ExtractChartSeries(r.Context(), image, req.MIMEType)
	WriteJSON(w, http.StatusOK, series)
}

// RenderNarrative renders a dispatch summary into an HTML fragment
func (h *Handler) RenderNarrative(w http.ResponseWriter, r *http.Request) {
	var summary simulation.Summary
	if err := json.NewDecoder(r.Body).Decode(&summary); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	fragment := h.narrator.RenderReport(r.Context(), &summary)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fragment))
}

// GetHealth returns the health status of the API
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	obs := h.weatherService.GetObservation()

	response := map[string]interface{}{
		"status":           "ok",
		"weather_source":   obs.Meta.Source,
		"weather_fallback": obs.Meta.IsFallback,
		"last_updated":     obs.Meta.LastUpdated,
	}

	WriteJSON(w, http.StatusOK, response)
}

// GetConfig returns the public configuration
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	// Create a sanitized config with only public values
	publicConfig := map[string]interface{}{
		"wx": map[string]interface{}{
			"refresh_interval_minutes": h.config.Weather.RefreshIntervalMinutes,
			"cache_expiry_minutes":     h.config.Weather.CacheExpiryMinutes,
			"keyed_provider_enabled":   h.config.Weather.WeatherAPIKey != "",
		},
		"station": map[string]interface{}{
			"latitude":  h.config.Station.Latitude,
			"longitude": h.config.Station.Longitude,
		},
		"storage": map[string]interface{}{
			"history_limit": h.config.Storage.HistoryLimit,
		},
		"ai": map[string]interface{}{
			"enabled": h.config.AI.APIKey != "",
			"model":   h.config.AI.Model,
		},
	}

	WriteJSON(w, http.StatusOK, publicConfig)
}
