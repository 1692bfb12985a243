package tools

import (
	"context"
	"fmt"
	"strings"
)

// lookupTool is a deterministic, data-backed capability. The real system would
// back these with sensors and external feeds; here each tool derives its
// answer from its reference table and the request arguments.
type lookupTool struct {
	spec ToolSpec
	run  func(req ToolRequest) (ToolResponse, error)
}

func (t *lookupTool) Spec() ToolSpec { return t.spec }

func (t *lookupTool) Invoke(_ context.Context, req ToolRequest) (ToolResponse, error) {
	return t.run(req)
}

func newLookupTool(name, description string, run func(req ToolRequest) (ToolResponse, error)) Tool {
	return &lookupTool{spec: ToolSpec{Name: name, Description: description}, run: run}
}

// cropProfiles holds baseline agronomy data for the crops the advisory
// service most commonly sees.
var cropProfiles = map[string]map[string]any{
	"wheat":  {"season": "rabi", "water_need_mm": 450, "npk": "120:60:40", "duration_days": 140},
	"rice":   {"season": "kharif", "water_need_mm": 1200, "npk": "100:50:50", "duration_days": 150},
	"cotton": {"season": "kharif", "water_need_mm": 700, "npk": "100:50:50", "duration_days": 180},
	"maize":  {"season": "kharif", "water_need_mm": 500, "npk": "120:60:40", "duration_days": 110},
	"tomato": {"season": "all", "water_need_mm": 600, "npk": "180:100:100", "duration_days": 120},
}

var marketPrices = map[string]map[string]any{
	"wheat":  {"price_per_quintal": 2275.0, "trend": "stable"},
	"rice":   {"price_per_quintal": 2300.0, "trend": "rising"},
	"cotton": {"price_per_quintal": 7120.0, "trend": "rising"},
	"maize":  {"price_per_quintal": 2090.0, "trend": "stable"},
	"tomato": {"price_per_quintal": 1500.0, "trend": "volatile"},
}

var fertilizerProducts = map[string]map[string]any{
	"urea": {"n": 46.0, "p": 0.0, "k": 0.0, "dose_kg_per_acre": 50},
	"dap":  {"n": 18.0, "p": 46.0, "k": 0.0, "dose_kg_per_acre": 40},
	"mop":  {"n": 0.0, "p": 0.0, "k": 60.0, "dose_kg_per_acre": 25},
}

func cropFromRequest(req ToolRequest) string {
	if c, ok := req.Arguments["crop"].(string); ok && c != "" {
		return strings.ToLower(strings.TrimSpace(c))
	}
	q := strings.ToLower(req.Query)
	for name := range cropProfiles {
		if strings.Contains(q, name) {
			return name
		}
	}
	return ""
}

// Default returns the builtin capability set covering every tool identifier
// the default catalog declares.
func Default() *StaticProvider {
	return NewStaticProvider([]Tool{
		newLookupTool("soil", "Reads soil composition and pH for the caller's field", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"ph": 6.8, "nitrogen_ppm": 42, "phosphorus_ppm": 18, "potassium_ppm": 210, "organic_matter_pct": 1.9}
			return ToolResponse{Content: "Soil reading: pH 6.8, N 42 ppm, P 18 ppm, K 210 ppm, OM 1.9%", Data: data}, nil
		}),
		newLookupTool("soil_sensor", "Reads the in-field IoT soil moisture sensor", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"moisture_pct": 31.5, "temperature_c": 24.1, "depth_cm": 15}
			return ToolResponse{Content: "Soil moisture 31.5% at 15 cm depth", Data: data}, nil
		}),
		newLookupTool("lab_test_analyzer", "Interprets uploaded soil lab test reports", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"salinity_ds_m": 0.8, "zinc_ppm": 0.7, "sulphur_ppm": 9.2, "status": "zinc deficient"}
			return ToolResponse{Content: "Lab analysis: marginal zinc deficiency, salinity within range", Data: data}, nil
		}),
		newLookupTool("weather", "Returns current weather conditions for the farm location", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"temperature_c": 31.0, "humidity_pct": 64, "wind_kmh": 12, "condition": "partly cloudy"}
			return ToolResponse{Content: "Current weather: 31°C, 64% humidity, partly cloudy", Data: data}, nil
		}),
		newLookupTool("weather_forecast", "Returns the 5-day weather outlook", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"rain_probability_pct": 58, "expected_rain_mm": 22, "outlook": "showers likely within 48 hours"}
			return ToolResponse{Content: "Forecast: showers likely within 48 hours (~22 mm)", Data: data}, nil
		}),
		newLookupTool("crop", "Returns agronomic profile data for a crop", func(req ToolRequest) (ToolResponse, error) {
			crop := cropFromRequest(req)
			if crop == "" {
				return ToolResponse{Content: "No crop identified in the query", Data: map[string]any{}}, nil
			}
			profile, ok := cropProfiles[crop]
			if !ok {
				return ToolResponse{}, fmt.Errorf("unknown crop %q", crop)
			}
			return ToolResponse{Content: fmt.Sprintf("Profile for %s: %s season, %v mm water, NPK %v", crop, profile["season"], profile["water_need_mm"], profile["npk"]), Data: profile}, nil
		}),
		newLookupTool("market", "Looks up mandi price and trend for a crop", func(req ToolRequest) (ToolResponse, error) {
			crop := cropFromRequest(req)
			price, ok := marketPrices[crop]
			if !ok {
				return ToolResponse{Content: "No market data for the requested crop", Data: map[string]any{}}, nil
			}
			return ToolResponse{Content: fmt.Sprintf("Market price for %s: ₹%v/quintal (%v)", crop, price["price_per_quintal"], price["trend"]), Data: price}, nil
		}),
		newLookupTool("fertilizer", "Maps soil nutrient gaps to fertilizer guidance", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"deficit": "nitrogen", "suggestion": "split urea application at sowing and tillering"}
			return ToolResponse{Content: "Nitrogen deficit detected; split urea application recommended", Data: data}, nil
		}),
		newLookupTool("fertilizer_database", "Looks up fertilizer product composition and dosage", func(req ToolRequest) (ToolResponse, error) {
			product := "urea"
			if p, ok := req.Arguments["product"].(string); ok && p != "" {
				product = strings.ToLower(strings.TrimSpace(p))
			}
			row, ok := fertilizerProducts[product]
			if !ok {
				return ToolResponse{}, fmt.Errorf("unknown fertilizer product %q", product)
			}
			return ToolResponse{Content: fmt.Sprintf("%s: NPK %v:%v:%v, dose %v kg/acre", product, row["n"], row["p"], row["k"], row["dose_kg_per_acre"]), Data: row}, nil
		}),
		newLookupTool("irrigation", "Computes irrigation timing from moisture and forecast", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"next_irrigation_hours": 36, "method": "drip preferred", "depth_mm": 25}
			return ToolResponse{Content: "Next irrigation in ~36 hours, 25 mm via drip", Data: data}, nil
		}),
		newLookupTool("evapotranspiration_model", "Estimates daily crop evapotranspiration", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"et0_mm_day": 5.2, "kc": 0.85, "etc_mm_day": 4.42}
			return ToolResponse{Content: "Estimated crop water use: 4.4 mm/day", Data: data}, nil
		}),
		newLookupTool("pest_disease", "Matches symptoms against the pest and disease index", func(req ToolRequest) (ToolResponse, error) {
			q := strings.ToLower(req.Query)
			data := map[string]any{"match": "none", "severity": "unknown"}
			content := "No clear pest or disease match from the described symptoms"
			switch {
			case strings.Contains(q, "yellow"):
				data = map[string]any{"match": "nitrogen deficiency or leaf curl virus", "severity": "moderate"}
				content = "Yellowing points to nitrogen deficiency or early leaf curl virus"
			case strings.Contains(q, "spots"), strings.Contains(q, "blight"):
				data = map[string]any{"match": "fungal leaf spot / blight", "severity": "high"}
				content = "Spot symptoms point to fungal leaf spot or blight"
			case strings.Contains(q, "wilting"), strings.Contains(q, "wilt"):
				data = map[string]any{"match": "fusarium wilt", "severity": "high"}
				content = "Wilting pattern is consistent with fusarium wilt"
			}
			return ToolResponse{Content: content, Data: data}, nil
		}),
		newLookupTool("growth_stage_prediction", "Predicts the current growth stage from sowing date", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"stage": "vegetative", "days_after_sowing": 34, "next_stage": "flowering"}
			return ToolResponse{Content: "Crop is in the vegetative stage; flowering expected next", Data: data}, nil
		}),
		newLookupTool("task_prioritization", "Orders pending farm tasks by urgency", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"tasks": []any{"scout for pests", "service drip lines", "arrange fertilizer stock"}}
			return ToolResponse{Content: "Priority tasks: pest scouting, drip line service, fertilizer procurement", Data: data}, nil
		}),
		newLookupTool("maintenance_tracker", "Tracks machinery service history and due dates", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"machine": "tractor", "hours_since_service": 180, "service_due_hours": 200}
			return ToolResponse{Content: "Tractor at 180 running hours; service due at 200", Data: data}, nil
		}),
		newLookupTool("predictive_maintenance", "Flags machinery wear patterns before failure", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"component": "drive belt", "wear_pct": 72, "action": "replace within 2 weeks"}
			return ToolResponse{Content: "Drive belt at 72% wear; replace within 2 weeks", Data: data}, nil
		}),
		newLookupTool("field_mapping", "Returns field boundary and block layout data", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"total_acres": 4.5, "blocks": 3, "slope_pct": 1.8, "irrigated_acres": 3.2}
			return ToolResponse{Content: "4.5 acres in 3 blocks, 1.8% slope, 3.2 acres irrigated", Data: data}, nil
		}),
		newLookupTool("profit_optimization", "Computes per-crop margin from cost and price data", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"cost_per_acre": 18500.0, "revenue_per_acre": 26400.0, "margin_pct": 29.9}
			return ToolResponse{Content: "Estimated margin 29.9% (cost ₹18,500/acre, revenue ₹26,400/acre)", Data: data}, nil
		}),
		newLookupTool("carbon_sustainability", "Estimates the farm's carbon footprint and credits", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"emissions_tco2e": 3.4, "sequestration_tco2e": 1.1, "credit_eligible": true}
			return ToolResponse{Content: "Net 2.3 tCO2e emitted; residue retention would qualify for credits", Data: data}, nil
		}),
		newLookupTool("procurement", "Compares input supplier prices and availability", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"item": "urea", "best_price_per_bag": 267.0, "suppliers": 3, "in_stock": true}
			return ToolResponse{Content: "Urea available from 3 suppliers, best price ₹267/bag", Data: data}, nil
		}),
		newLookupTool("compliance_cert", "Checks certification requirements and deadlines", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"scheme": "organic certification", "status": "documents pending", "deadline": "2026-10-15"}
			return ToolResponse{Content: "Organic certification documents pending; deadline 2026-10-15", Data: data}, nil
		}),
		newLookupTool("community", "Lists nearby farmer groups and extension events", func(req ToolRequest) (ToolResponse, error) {
			data := map[string]any{"fpo": "district farmer producer org", "next_event": "krishi mela", "event_in_days": 12}
			return ToolResponse{Content: "Nearest FPO accepts members; krishi mela in 12 days", Data: data}, nil
		}),
	})
}
