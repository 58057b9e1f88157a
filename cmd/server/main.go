package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gridsim/weatherfeed/internal/ai/gemini"
	"github.com/gridsim/weatherfeed/internal/api"
	"github.com/gridsim/weatherfeed/internal/config"
	"github.com/gridsim/weatherfeed/internal/extraction"
	"github.com/gridsim/weatherfeed/internal/narrative"
	"github.com/gridsim/weatherfeed/internal/storage/sqlite"
	"github.com/gridsim/weatherfeed/internal/weather"
	"github.com/gridsim/weatherfeed/internal/websocket"
	"github.com/gridsim/weatherfeed/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting weatherfeed server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Generate today's database filename
	today := time.Now().Format("2006-01-02")
	dbFilename := fmt.Sprintf("weatherfeed-%s.db", today)
	dbPath := filepath.Join(cfg.Storage.SQLiteBasePath, dbFilename)

	// Ensure the directory exists
	if err := os.MkdirAll(cfg.Storage.SQLiteBasePath, 0755); err != nil {
		log.Error("Failed to create database directory", logger.Error(err), logger.String("path", cfg.Storage.SQLiteBasePath))
		os.Exit(1)
	}

	log.Info("Using daily database", logger.String("path", dbPath))

	// Create SQLite storage
	observationStorage, err := sqlite.NewObservationStorage(dbPath, log)
	if err != nil {
		log.Error("Failed to create SQLite storage", logger.Error(err))
		os.Exit(1)
	}
	defer observationStorage.Close()

	// Create WebSocket server
	wsServer := websocket.NewServer(log)

	// Start WebSocket server
	go wsServer.Run()

	// Create weather service
	weatherService := weather.NewService(weather.Config{
		RefreshIntervalMinutes: cfg.Weather.RefreshIntervalMinutes,
		RequestTimeoutSeconds:  cfg.Weather.RequestTimeoutSeconds,
		CacheExpiryMinutes:     cfg.Weather.CacheExpiryMinutes,
		OpenMeteoBaseURL:       cfg.Weather.OpenMeteoBaseURL,
		WeatherAPIBaseURL:      cfg.Weather.WeatherAPIBaseURL,
		WeatherAPIKey:          cfg.Weather.WeatherAPIKey,
		LocationQuery:          cfg.Station.LocationQuery,
		Latitude:               cfg.Station.Latitude,
		Longitude:              cfg.Station.Longitude,
	}, observationStorage, wsServer, log)

	// Start weather service
	if err := weatherService.Start(); err != nil {
		log.Error("Failed to start weather service", logger.Error(err))
		os.Exit(1)
	}

	// Answer client-initiated weather requests over the push channel
	wsServer.SetMessageHandler(websocket.NewWeatherRequestHandler(weatherService, log))

	// Create generative model client (if a key is configured)
	var geminiClient *gemini.Client
	if cfg.AI.APIKey != "" {
		geminiClient, err = gemini.NewClient(context.Background(), cfg.AI.APIKey, cfg.AI.Model, log)
		if err != nil {
			log.Error("Failed to create Gemini client", logger.Error(err))
			// Continue without generative features rather than failing
			geminiClient = nil
		} else {
			log.Info("Gemini client created", logger.String("model", cfg.AI.Model))
		}
	} else {
		log.Info("No Gemini API key configured, extraction and narrative run in fallback mode")
	}

	// Create extraction service
	var extractionService *extraction.Service
	if geminiClient != nil {
		extractionService = extraction.NewService(geminiClient, log)
	} else {
		extractionService = extraction.NewService(nil, log)
	}

	// Create narrative service
	templateEngine := narrative.NewEngine(log)
	narrativeCfg := narrative.Config{
		TemplatePath:      cfg.Narrative.TemplatePath,
		ErrorTemplatePath: cfg.Narrative.ErrorTemplatePath,
	}
	var narrativeService *narrative.Service
	if geminiClient != nil {
		narrativeService = narrative.NewService(geminiClient, templateEngine, narrativeCfg, log)
	} else {
		narrativeService = narrative.NewService(nil, templateEngine, narrativeCfg, log)
	}

	// Create API router
	router := api.NewRouter(weatherService, observationStorage, extractionService, narrativeService, cfg, log, wsServer)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error on startup", logger.String("addr", server.Addr), logger.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	// Stop background services first
	log.Info("Stopping weather service...")
	if err := weatherService.Stop(); err != nil {
		log.Error("Error stopping weather service", logger.Error(err))
	}
	log.Info("Weather service stopped.")

	// Shut down the HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", logger.Error(err))
	}

	log.Info("Server shutdown complete")
}
