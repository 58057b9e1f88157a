package websocket

import (
	"fmt"

	"github.com/gridsim/weatherfeed/internal/weather"
	"github.com/gridsim/weatherfeed/pkg/logger"
)

// ObservationSource supplies the current canonical observation for on-demand
// client requests.
type ObservationSource interface {
	GetObservation() *weather.CanonicalObservation
}

// WeatherRequestHandler answers weather_request messages with the current
// observation, sent back to the requesting client only.
type WeatherRequestHandler struct {
	source ObservationSource
	logger *logger.Logger
}

// NewWeatherRequestHandler creates the message handler for client-initiated
// weather requests.
func NewWeatherRequestHandler(source ObservationSource, log *logger.Logger) *WeatherRequestHandler {
	return &WeatherRequestHandler{
		source: source,
		logger: log.Named("ws-weather-handler"),
	}
}

// HandleMessage dispatches an incoming client message.
func (h *WeatherRequestHandler) HandleMessage(client *Client, messageType string, data map[string]any) error {
	switch messageType {
	case MessageTypeWeatherRequest:
		obs := h.source.GetObservation()
		sent := client.SendMessage(&Message{
			Type: MessageTypeWeatherUpdate,
			Data: map[string]any{"observation": obs},
		})
		if !sent {
			return fmt.Errorf("client unavailable, weather response dropped")
		}
		h.logger.Debug("Answered weather request",
			String("source", obs.Meta.Source))
		return nil
	default:
		return fmt.Errorf("unhandled message type %q", messageType)
	}
}
