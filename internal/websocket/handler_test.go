package websocket

import (
	"testing"

	"github.com/gridsim/weatherfeed/internal/weather"
	"github.com/gridsim/weatherfeed/pkg/logger"
)

type stubSource struct {
	obs *weather.CanonicalObservation
}

func (s *stubSource) GetObservation() *weather.CanonicalObservation { return s.obs }

func testObservation() *weather.CanonicalObservation {
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

func TestWeatherRequestAnswered(t *testing.T) {
	obs := testObservation()
	handler := NewWeatherRequestHandler(&stubSource{obs: obs}, logger.NewNop())
	client := &Client{send: make(chan *Message, 1)}

	if err := handler.HandleMessage(client, MessageTypeWeatherRequest, nil); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeWeatherUpdate {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeWeatherUpdate)
		}
		got, ok := msg.Data["observation"].(*weather.CanonicalObservation)
		if !ok || got != obs {
			t.Error("response must carry the current observation")
		}
	default:
		t.Fatal("no message queued for the requesting client")
	}
}

func TestWeatherRequestUnknownType(t *testing.T) {
	handler := NewWeatherRequestHandler(&stubSource{obs: testObservation()}, logger.NewNop())
	client := &Client{send: make(chan *Message, 1)}

	if err := handler.HandleMessage(client, "aircraft_bulk_request", nil); err == nil {
		t.Fatal("expected an error for an unhandled message type")
	}
	select {
	case <-client.send:
		t.Error("unhandled message types must not queue a response")
	default:
	}
}

func TestWeatherRequestClosedClient(t *testing.T) {
	handler := NewWeatherRequestHandler(&stubSource{obs: testObservation()}, logger.NewNop())
	client := &Client{send: make(chan *Message, 1), closed: true}

	if err := handler.HandleMessage(client, MessageTypeWeatherRequest, nil); err == nil {
		t.Fatal("expected an error when the client cannot receive")
	}
}
