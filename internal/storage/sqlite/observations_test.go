package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/gridsim/weatherfeed/internal/weather"
	"github.com/gridsim/weatherfeed/pkg/logger"
)

func newTestStorage(t *testing.T) *ObservationStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "observations.db")
	storage, err := NewObservationStorage(dbPath, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func testObservation(source string, fallback bool) *weather.CanonicalObservation {
	obs := &weather.CanonicalObservation{
		HourlyTemp:     make([]float64, weather.HoursPerDay),
		HourlyHumidity: make([]float64, weather.HoursPerDay),
		HourlyCloud:    make([]float64, weather.HoursPerDay),
		SunriseHour:    6.1,
		SunsetHour:     19.9,
	}
	for i := range obs.HourlyTemp {
		obs.HourlyTemp[i] = float64(10 + i)
		obs.HourlyHumidity[i] = 50
		obs.HourlyCloud[i] = 5
	}
	obs.Meta.SetSource(source)
	obs.Meta.IsFallback = fallback
	obs.Meta.Date = "2026-08-25"
	return obs
}

func TestSaveAndGetRecent(t *testing.T) {
	storage := newTestStorage(t)

	if err := storage.SaveObservation(testObservation("Open-Meteo (43.63, -79.40)", false)); err != nil {
		t.Fatalf("SaveObservation: %v", err)
	}
	if err := storage.SaveObservation(testObservation("Offline synthesis (Clear summer day)", true)); err != nil {
		t.Fatalf("SaveObservation: %v", err)
	}

	records, err := storage.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// Newest first.
	if !records[0].IsFallback {
		t.Error("newest record should be the fallback observation")
	}
	if records[1].Source != "Open-Meteo (43.63, -79.40)" {
		t.Errorf("source = %q", records[1].Source)
	}
	if len(records[0].HourlyTemp) != weather.HoursPerDay {
		t.Errorf("round-tripped temp series has %d entries", len(records[0].HourlyTemp))
	}
	if records[0].HourlyTemp[23] != 33 {
		t.Errorf("temp[23] = %v, want 33", records[0].HourlyTemp[23])
	}
	if records[0].SunriseHour != 6.1 || records[0].SunsetHour != 19.9 {
		t.Errorf("sun hours = %v/%v", records[0].SunriseHour, records[0].SunsetHour)
	}
}

func TestGetRecentLimit(t *testing.T) {
	storage := newTestStorage(t)

	for i := 0; i < 5; i++ {
		if err := storage.SaveObservation(testObservation("src", false)); err != nil {
			t.Fatal(err)
		}
	}

	records, err := storage.GetRecent(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestGetRecentEmpty(t *testing.T) {
	storage := newTestStorage(t)

	records, err := storage.GetRecent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records from empty table", len(records))
	}
}
