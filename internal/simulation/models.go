// Package simulation defines the contract between the weather feed and the
// external microgrid dispatch engine. The engine itself lives outside this
// service; only its data shapes and the telemetry summary consumed by the
// narrative generator are defined here.
package simulation

import (
	"context"

	"github.com/gridsim/weatherfeed/internal/weather"
)

// ScenarioParams are the dispatch scenario knobs supplied alongside a
// canonical observation.
type ScenarioParams struct {
	PVCapacityKW       float64 `json:"pv_capacity_kw"`
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh"`
	BatteryPowerKW     float64 `json:"battery_power_kw"`
	BaseLoadKW         float64 `json:"base_load_kw"`
	ImportPriceCents   float64 `json:"import_price_cents"`
	ExportPriceCents   float64 `json:"export_price_cents"`
}

// HourlyTelemetry is one hour of dispatch engine output.
type HourlyTelemetry struct {
	Hour          int     `json:"hour"`
	LoadKW        float64 `json:"load_kw"`
	GenerationKW  float64 `json:"generation_kw"`
	GridImportKW  float64 `json:"grid_import_kw"`
	GridExportKW  float64 `json:"grid_export_kw"`
	BatteryFlowKW float64 `json:"battery_flow_kw"` // positive = charging
	StateOfCharge float64 `json:"state_of_charge"` // fraction [0,1]
	PriceCents    float64 `json:"price_cents"`
}

// Summary is the audit summary of a dispatch run, JSON-serialized for the
// narrative generator together with weather averages.
type Summary struct {
	TotalLoadKWh       float64 `json:"total_load_kwh"`
	TotalGenerationKWh float64 `json:"total_generation_kwh"`
	TotalImportKWh     float64 `json:"total_import_kwh"`
	TotalExportKWh     float64 `json:"total_export_kwh"`
	PeakLoadKW         float64 `json:"peak_load_kw"`
	MinStateOfCharge   float64 `json:"min_state_of_charge"`
	MaxStateOfCharge   float64 `json:"max_state_of_charge"`
	NetCostCents       float64 `json:"net_cost_cents"`

	// Weather context for the narrative.
	AvgTempC          float64 `json:"avg_temp_c"`
	AvgCloudPct       float64 `json:"avg_cloud_pct"`
	WeatherSource     string  `json:"weather_source"`
	WeatherIsFallback bool    `json:"weather_is_fallback"`
}

// Simulator is the external dispatch engine: it consumes a canonical
// observation plus scenario parameters and returns hourly telemetry with an
// audit summary.
type Simulator interface {
	Run(ctx context.Context, obs *weather.CanonicalObservation, params ScenarioParams) ([]HourlyTelemetry, *Summary, error)
}

// BuildSummary aggregates hourly telemetry and weather context into the
// audit summary shape the narrative generator consumes.
func BuildSummary(telemetry []HourlyTelemetry, obs *weather.CanonicalObservation) *Summary {
	s := &Summary{
		MinStateOfCharge: 1,
	}

	for _, h := range telemetry {
		s.TotalLoadKWh += h.LoadKW
		s.TotalGenerationKWh += h.GenerationKW
		s.TotalImportKWh += h.GridImportKW
		s.TotalExportKWh += h.GridExportKW
		s.NetCostCents += h.GridImportKW*h.PriceCents - h.GridExportKW*h.PriceCents

		if h.LoadKW > s.PeakLoadKW {
			s.PeakLoadKW = h.LoadKW
		}
		if h.StateOfCharge < s.MinStateOfCharge {
			s.MinStateOfCharge = h.StateOfCharge
		}
		if h.StateOfCharge > s.MaxStateOfCharge {
			s.MaxStateOfCharge = h.StateOfCharge
		}
	}
	if len(telemetry) == 0 {
		s.MinStateOfCharge = 0
	}

	if obs != nil {
		var tempSum, cloudSum float64
		for i := range obs.HourlyTemp {
			tempSum += obs.HourlyTemp[i]
			cloudSum += obs.HourlyCloud[i]
		}
		if n := len(obs.HourlyTemp); n > 0 {
			s.AvgTempC = tempSum / float64(n)
			s.AvgCloudPct = cloudSum / float64(n)
		}
		s.WeatherSource = obs.Meta.Source
		s.WeatherIsFallback = obs.Meta.IsFallback
	}

	return s
}
