package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gridsim/weatherfeed/internal/weather"
	"github.com/gridsim/weatherfeed/pkg/logger"
	_ "modernc.org/sqlite"
)

// ObservationRecord is one persisted canonical observation.
type ObservationRecord struct {
	ID         int64     `json:"id"`
	Source     string    `json:"source"`
	IsFallback bool      `json:"is_fallback"`
	Date       string    `json:"date"`
	CreatedAt  time.Time `json:"created_at"`

	HourlyTemp     []float64 `json:"hourly_temp"`
	HourlyHumidity []float64 `json:"hourly_humidity"`
	HourlyCloud    []float64 `json:"hourly_cloud"`
	SunriseHour    float64   `json:"sunrise_hour"`
	SunsetHour     float64   `json:"sunset_hour"`
	FetchError     string    `json:"fetch_error,omitempty"`
}

// ObservationStorage persists canonical observations to SQLite.
type ObservationStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewObservationStorage opens (or creates) the database at dbPath and
// initializes the schema.
func NewObservationStorage(dbPath string, log *logger.Logger) (*ObservationStorage, error) {
	storageLogger := log.Named("sqlite")

	storageLogger.Info("Initializing SQLite storage",
		logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	storage := &ObservationStorage{
		db:     db,
		logger: storageLogger,
	}

	if err := storage.initDB(); err != nil {
		db.Close()
		return nil, err
	}

	return storage, nil
}

// Close closes the database connection.
func (s *ObservationStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// initDB initializes the database tables
func (s *ObservationStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS observations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			is_fallback BOOLEAN NOT NULL,
			date TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			hourly_temp TEXT NOT NULL,
			hourly_humidity TEXT NOT NULL,
			hourly_cloud TEXT NOT NULL,
			sunrise_hour REAL NOT NULL,
			sunset_hour REAL NOT NULL,
			fetch_error TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create observations table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_obs_date ON observations(date)`)
	if err != nil {
		return fmt.Errorf("failed to create date index: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_obs_created_at ON observations(created_at)`)
	if err != nil {
		return fmt.Errorf("failed to create created_at index: %w", err)
	}

	return nil
}

// SaveObservation persists a canonical observation. Hourly series are stored
// as JSON arrays.
func (s *ObservationStorage) SaveObservation(obs *weather.CanonicalObservation) error {
	temp, err := json.Marshal(obs.HourlyTemp)
	if err != nil {
		return fmt.Errorf("failed to serialize temperature series: %w", err)
	}
	humidity, err := json.Marshal(obs.HourlyHumidity)
	if err != nil {
		return fmt.Errorf("failed to serialize humidity series: %w", err)
	}
	cloud, err := json.Marshal(obs.HourlyCloud)
	if err != nil {
		return fmt.Errorf("failed to serialize cloud series: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO observations
		(source, is_fallback, date, created_at, hourly_temp, hourly_humidity, hourly_cloud, sunrise_hour, sunset_hour, fetch_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		obs.Meta.Source,
		obs.Meta.IsFallback,
		obs.Meta.Date,
		time.Now().UTC().Format(time.RFC3339),
		string(temp),
		string(humidity),
		string(cloud),
		obs.SunriseHour,
		obs.SunsetHour,
		obs.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert observation: %w", err)
	}

	s.logger.Debug("Observation persisted",
		logger.String("source", obs.Meta.Source),
		logger.Bool("is_fallback", obs.Meta.IsFallback))
	return nil
}

// GetRecent returns up to limit observations, newest first.
func (s *ObservationStorage) GetRecent(limit int) ([]ObservationRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, source, is_fallback, date, created_at, hourly_temp, hourly_humidity, hourly_cloud, sunrise_hour, sunset_hour, COALESCE(fetch_error, '')
		FROM observations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var records []ObservationRecord
	for rows.Next() {
		var (
			rec                   ObservationRecord
			createdAt             string
			temp, humidity, cloud string
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.IsFallback, &rec.Date, &createdAt,
			&temp, &humidity, &cloud, &rec.SunriseHour, &rec.SunsetHour, &rec.FetchError); err != nil {
			return nil, fmt.Errorf("failed to scan observation row: %w", err)
		}

		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = t
		}
		if err := json.Unmarshal([]byte(temp), &rec.HourlyTemp); err != nil {
			s.logger.Warn("Stored temperature series is unreadable", logger.Error(err))
		}
		if err := json.Unmarshal([]byte(humidity), &rec.HourlyHumidity); err != nil {
			s.logger.Warn("Stored humidity series is unreadable", logger.Error(err))
		}
		if err := json.Unmarshal([]byte(cloud), &rec.HourlyCloud); err != nil {
			s.logger.Warn("Stored cloud series is unreadable", logger.Error(err))
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observations: %w", err)
	}

	return records, nil
}
