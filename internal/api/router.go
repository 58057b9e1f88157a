package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gridsim/weatherfeed/internal/config"
	"github.com/gridsim/weatherfeed/internal/websocket"
	"github.com/gridsim/weatherfeed/pkg/logger"
)

// Router wires the API handlers and the WebSocket endpoint into a chi router.
type Router struct {
	handler  *Handler
	wsServer *websocket.Server
	logger   *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(weatherService WeatherService, history ObservationHistory, extractor Extractor, narrator Narrator, cfg *config.Config, log *logger.Logger, wsServer *websocket.Server) *Router {
	return &Router{
		handler:  NewHandler(weatherService, history, extractor, narrator, cfg, log),
		wsServer: wsServer,
		logger:   log.Named("api-router"),
	}
}

// Routes returns the configured HTTP handler
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/health", r.handler.GetHealth)
		api.Get("/config", r.handler.GetConfig)

		api.Route("/weather", func(wx chi.Router) {
			wx.Get("/", r.handler.GetWeather)
			wx.Post("/refresh", r.handler.RefreshWeather)
			wx.Get("/history", r.handler.GetWeatherHistory)
		})

		api.Post("/extraction", r.handler.ExtractChart)
		api.Post("/narrative", r.handler.RenderNarrative)
	})

	if r.wsServer != nil {
		router.Get("/ws", r.wsServer.HandleConnection)
	}

	return router
}
