package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server    ServerConfig    `toml:"server"`    // HTTP server settings
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
	Storage   StorageConfig   `toml:"storage"`   // Data persistence settings
	Station   StationConfig   `toml:"station"`   // Physical location settings
	Weather   WeatherConfig   `toml:"wx"`        // Weather acquisition and caching settings
	AI        AIConfig        `toml:"ai"`        // Generative model settings (extraction and narrative)
	Narrative NarrativeConfig `toml:"narrative"` // Narrative fragment templating settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port             int    `toml:"port"`                  // HTTP port for the server
	Host             string `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	ReadTimeoutSecs  int    `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs int    `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs  int    `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	Type           string `toml:"type"`             // Storage backend type (currently only "sqlite" is supported)
	SQLiteBasePath string `toml:"sqlite_base_path"` // Base path for SQLite database files (actual filename is generated as weatherfeed-YYYY-MM-DD.db)
	HistoryLimit   int    `toml:"history_limit"`    // Maximum number of observations returned by the history API
}

// StationConfig contains the physical location the weather feed serves
type StationConfig struct {
	Latitude      float64 `toml:"latitude"`       // Latitude of the site in decimal degrees
	Longitude     float64 `toml:"longitude"`      // Longitude of the site in decimal degrees
	LocationQuery string  `toml:"location_query"` // Free-form location string for the keyed provider (e.g., "Toronto")
}

// WeatherConfig contains weather acquisition settings
type WeatherConfig struct {
	RefreshIntervalMinutes int    `toml:"refresh_interval_minutes"` // How often to refresh the observation in the background
	RequestTimeoutSeconds  int    `toml:"request_timeout_seconds"`  // Per-provider attempt timeout
	CacheExpiryMinutes     int    `toml:"cache_expiry_minutes"`     // How long a cached observation stays fresh
	OpenMeteoBaseURL       string `toml:"open_meteo_base_url"`      // Base URL of the keyless forecast provider
	WeatherAPIBaseURL      string `toml:"weather_api_base_url"`     // Base URL of the keyed forecast provider
	WeatherAPIKey          string `toml:"weather_api_key"`          // Credential for the keyed provider (empty disables it); WEATHER_API_KEY overrides
}

// AIConfig contains generative model settings
type AIConfig struct {
	APIKey string `toml:"api_key"` // Gemini API key; GEMINI_API_KEY overrides (empty disables extraction and narrative)
	Model  string `toml:"model"`   // Model name (e.g., "gemini-2.0-flash")
}

// NarrativeConfig contains narrative fragment templating settings
type NarrativeConfig struct {
	TemplatePath      string `toml:"template_path"`       // Path to the report fragment template
	ErrorTemplatePath string `toml:"error_template_path"` // Path to the error fragment template
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:             8080,
		Host:             "0.0.0.0",
		ReadTimeoutSecs:  30,
		WriteTimeoutSecs: 30,
		IdleTimeoutSecs:  120,
	}
}

// DefaultLoggingConfig returns the default logging configuration
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "console",
	}
}

// DefaultStorageConfig returns the default storage configuration
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Type:           "sqlite",
		SQLiteBasePath: "data",
		HistoryLimit:   50,
	}
}

// DefaultWeatherConfig returns the default weather acquisition configuration
func DefaultWeatherConfig() WeatherConfig {
	return WeatherConfig{
		RefreshIntervalMinutes: 30,
		RequestTimeoutSeconds:  10,
		CacheExpiryMinutes:     60,
		OpenMeteoBaseURL:       "https://api.open-meteo.com/v1/forecast",
		WeatherAPIBaseURL:      "https://api.weatherapi.com/v1/forecast.json",
	}
}

// DefaultNarrativeConfig returns the default narrative templating configuration
func DefaultNarrativeConfig() NarrativeConfig {
	return NarrativeConfig{
		TemplatePath:      "templates/narrative.tmpl",
		ErrorTemplatePath: "templates/narrative_error.tmpl",
	}
}

// Default returns a configuration populated with all section defaults
func Default() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Logging:   DefaultLoggingConfig(),
		Storage:   DefaultStorageConfig(),
		Weather:   DefaultWeatherConfig(),
		Narrative: DefaultNarrativeConfig(),
		AI: AIConfig{
			Model: "gemini-2.0-flash",
		},
	}
}

// Load loads the configuration from the given TOML file
func Load(path string) (*Config, error) {
	config := Default()

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyEnvOverrides()

	return config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	// List of paths to check in order of preference
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// applyEnvOverrides lets credentials come from the environment instead of the
// config file, so the file can be committed without secrets.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("WEATHER_API_KEY"); key != "" {
		c.Weather.WeatherAPIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.AI.APIKey = key
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	// Validate storage config
	if c.Storage.Type != "sqlite" {
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.SQLiteBasePath == "" {
		return fmt.Errorf("sqlite_base_path cannot be empty")
	}
	if c.Storage.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be greater than 0")
	}

	// Validate station config
	if c.Station.Latitude < -90 || c.Station.Latitude > 90 {
		return fmt.Errorf("invalid station latitude: %f", c.Station.Latitude)
	}
	if c.Station.Longitude < -180 || c.Station.Longitude > 180 {
		return fmt.Errorf("invalid station longitude: %f", c.Station.Longitude)
	}

	// Validate weather config
	if c.Weather.RefreshIntervalMinutes <= 0 {
		return fmt.Errorf("refresh_interval_minutes must be greater than 0")
	}
	if c.Weather.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be greater than 0")
	}
	if c.Weather.CacheExpiryMinutes <= 0 {
		return fmt.Errorf("cache_expiry_minutes must be greater than 0")
	}
	if c.Weather.OpenMeteoBaseURL == "" {
		return fmt.Errorf("open_meteo_base_url cannot be empty")
	}
	if c.Weather.WeatherAPIKey != "" {
		if c.Weather.WeatherAPIBaseURL == "" {
			return fmt.Errorf("weather_api_base_url is required when the keyed provider is enabled")
		}
		if c.Station.LocationQuery == "" {
			return fmt.Errorf("station location_query is required when the keyed provider is enabled")
		}
	}

	// Validate AI config
	if c.AI.APIKey != "" && c.AI.Model == "" {
		return fmt.Errorf("ai model is required when an api_key is configured")
	}

	// Validate narrative config
	if c.Narrative.TemplatePath == "" || c.Narrative.ErrorTemplatePath == "" {
		return fmt.Errorf("narrative template paths cannot be empty")
	}

	return nil
}
