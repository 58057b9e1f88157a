package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gridsim/weatherfeed/internal/config"
	"github.com/gridsim/weatherfeed/internal/extraction"
	"github.com/gridsim/weatherfeed/internal/simulation"
	"github.com/gridsim/weatherfeed/internal/storage/sqlite"
	"github.com/gridsim/weatherfeed/internal/weather"
	"github.com/gridsim/weatherfeed/pkg/logger"
)

type stubWeather struct {
	obs       *weather.CanonicalObservation
	refreshed bool
}

func (s *stubWeather) GetObservation() *weather.CanonicalObservation { return s.obs }
func (s *stubWeather) RefreshNow() *weather.CanonicalObservation {
	s.refreshed = true
	return s.obs
}

type stubHistory struct {
	records   []sqlite.ObservationRecord
	err       error
	lastLimit int
}

func (s *stubHistory) GetRecent(limit int) ([]sqlite.ObservationRecord, error) {
	s.lastLimit = limit
	return s.records, s.err
}

type stubExtractor struct {
	series *extraction.Series
	image  []byte
	mime   string
}

func (s *stubExtractor) ExtractChartSeries(ctx context.Context, image []byte, mimeType string) *extraction.Series {
	s.image = image
	s.mime = mimeType
	return s.series
}

type stubNarrator struct {
	fragment string
	summary  *simulation.Summary
}

func (s *stubNarrator) RenderReport(ctx context.Context, summary *simulation.Summary) string {
	s.summary = summary
	return s.fragment
}

func liveObservation() *weather.CanonicalObservation {
	obs := &weather.CanonicalObservation{
		HourlyTemp:     make([]float64, weather.HoursPerDay),
		HourlyHumidity: make([]float64, weather.HoursPerDay),
		HourlyCloud:    make([]float64, weather.HoursPerDay),
		SunriseHour:    6.1,
		SunsetHour:     20.2,
	}
	obs.Meta.SetSource("Open-Meteo (43.63, -79.40)")
	return obs
}

func newTestRouter(wx *stubWeather, history ObservationHistory, extractor Extractor, narrator Narrator) http.Handler {
	cfg := config.Default()
	r := NewRouter(wx, history, extractor, narrator, cfg, logger.NewNop(), nil)
	return r.Routes()
}

func TestGetWeather(t *testing.T) {
	wx := &stubWeather{obs: liveObservation()}
	router := newTestRouter(wx, &stubHistory{}, &stubExtractor{}, &stubNarrator{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/weather/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var obs weather.CanonicalObservation
	if err := json.Unmarshal(rec.Body.Bytes(), &obs); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(obs.HourlyTemp) != weather.HoursPerDay {
		t.Errorf("temp series length = %d, want 24", len(obs.HourlyTemp))
	}
	if obs.Meta.Source != "Open-Meteo (43.63, -79.40)" {
		t.Errorf("source = %q", obs.Meta.Source)
	}
}

func TestRefreshWeather(t *testing.T) {
	wx := &stubWeather{obs: liveObservation()}
	router := newTestRouter(wx, &stubHistory{}, &stubExtractor{}, &stubNarrator{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/weather/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !wx.refreshed {
		t.Error("refresh endpoint did not trigger RefreshNow")
	}
}

func TestGetWeatherHistory(t *testing.T) {
	history := &stubHistory{records: []sqlite.ObservationRecord{
		{ID: 2, Source: "Offline synthesis (Clear summer day)", IsFallback: true},
		{ID: 1, Source: "Open-Meteo (43.63, -79.40)"},
	}}
	router := newTestRouter(&stubWeather{obs: liveObservation()}, history, &stubExtractor{}, &stubNarrator{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/weather/history?limit=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if history.lastLimit != 2 {
		t.Errorf("limit = %d, want 2", history.lastLimit)
	}
	var body struct {
		Count        int                        `json:"count"`
		Observations []sqlite.ObservationRecord `json:"observations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Count != 2 || len(body.Observations) != 2 {
		t.Errorf("count = %d, observations = %d", body.Count, len(body.Observations))
	}
}

func TestGetWeatherHistoryBadLimit(t *testing.T) {
	router := newTestRouter(&stubWeather{obs: liveObservation()}, &stubHistory{}, &stubExtractor{}, &stubNarrator{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/weather/history?limit=zero", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetWeatherHistoryStorageError(t *testing.T) {
	history := &stubHistory{err: errors.New("disk gone")}
	router := newTestRouter(&stubWeather{obs: liveObservation()}, history, &stubExtractor{}, &stubNarrator{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/weather/history", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestExtractChart(t *testing.T) {
	extractor := &stubExtractor{series: &extraction.Series{
		Temperature: make([]float64, weather.HoursPerDay),
		Humidity:    make([]float64, weather.HoursPerDay),
		Cloud:       make([]float64, weather.HoursPerDay),
	}}
	router := newTestRouter(&stubWeather{obs: liveObservation()}, &stubHistory{}, extractor, &stubNarrator{})

	payload, _ := json.Marshal(map[string]string{
		"image_base64": base64.StdEncoding.EncodeToString([]byte("png-bytes")),
		"mime_type":    "image/png",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/extraction", bytes.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if string(extractor.image) != "png-bytes" {
		t.Errorf("extractor got image %q", extractor.image)
	}
	if extractor.mime != "image/png" {
		t.Errorf("extractor got mime %q", extractor.mime)
	}
}

func TestExtractChartRejectsBadPayload(t *testing.T) {
	router := newTestRouter(&stubWeather{obs: liveObservation()}, &stubHistory{}, &stubExtractor{}, &stubNarrator{})

	tests := []struct {
		name string
		body string
	}{
		{"not json", "chart please"},
		{"missing image", `{"mime_type": "image/png"}`},
		{"bad base64", `{"image_base64": "not!!base64"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/extraction", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRenderNarrative(t *testing.T) {
	narrator := &stubNarrator{fragment: `<div class="narrative"><p>Quiet day.</p></div>`}
	router := newTestRouter(&stubWeather{obs: liveObservation()}, &stubHistory{}, &stubExtractor{}, narrator)

	payload, _ := json.Marshal(&simulation.Summary{NetCostCents: 120})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/narrative", bytes.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "Quiet day.") {
		t.Errorf("body = %q", rec.Body.String())
	}
	if narrator.summary == nil || narrator.summary.NetCostCents != 120 {
		t.Error("narrator did not receive the summary")
	}
}

func TestGetHealth(t *testing.T) {
	router := newTestRouter(&stubWeather{obs: liveObservation()}, &stubHistory{}, &stubExtractor{}, &stubNarrator{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}
