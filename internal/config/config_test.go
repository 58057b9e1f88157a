package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
[station]
latitude = 43.63
longitude = -79.40
location_query = "Toronto"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Weather.RefreshIntervalMinutes != 30 {
		t.Errorf("default refresh interval = %d, want 30", cfg.Weather.RefreshIntervalMinutes)
	}
	if cfg.Weather.OpenMeteoBaseURL == "" {
		t.Error("default open-meteo URL should be set")
	}
	if cfg.Station.Latitude != 43.63 {
		t.Errorf("latitude = %v, want 43.63", cfg.Station.Latitude)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
[server]
port = 9999

[wx]
refresh_interval_minutes = 5
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Weather.RefreshIntervalMinutes != 5 {
		t.Errorf("refresh interval = %d, want 5", cfg.Weather.RefreshIntervalMinutes)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestEnvOverridesCredentials(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "env-weather-key")
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")

	cfg, err := Load(writeConfig(t, minimalConfig+`
[wx]
weather_api_key = "file-key"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Weather.WeatherAPIKey != "env-weather-key" {
		t.Errorf("weather key = %q, want env override", cfg.Weather.WeatherAPIKey)
	}
	if cfg.AI.APIKey != "env-gemini-key" {
		t.Errorf("ai key = %q, want env override", cfg.AI.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "port"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "log level"},
		{"bad storage type", func(c *Config) { c.Storage.Type = "postgres" }, "storage type"},
		{"bad latitude", func(c *Config) { c.Station.Latitude = 91 }, "latitude"},
		{"zero refresh", func(c *Config) { c.Weather.RefreshIntervalMinutes = 0 }, "refresh_interval_minutes"},
		{"empty meteo url", func(c *Config) { c.Weather.OpenMeteoBaseURL = "" }, "open_meteo_base_url"},
		{"keyed without query", func(c *Config) {
			c.Weather.WeatherAPIKey = "k"
			c.Station.LocationQuery = ""
		}, "location_query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadWithFallbackPrefersExplicitPath(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	cfg, err := LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback: %v", err)
	}
	if cfg.Station.LocationQuery != "Toronto" {
		t.Errorf("location_query = %q", cfg.Station.LocationQuery)
	}
}
