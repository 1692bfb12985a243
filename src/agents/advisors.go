package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/agrimind/agrimind/src/models"
	"github.com/agrimind/agrimind/src/tools"
)

// profile configures one advisor: its persona for the model prompt and the
// deterministic guidance used when a model answer is unavailable.
type profile struct {
	name            string
	role            string
	recommendations []string
	warnings        []string
	nextSteps       []string
}

// advisor is the single implementation behind every domain agent. The real
// expertise lives in the granted tools and the persona prompt; the advisor
// itself is thin plumbing around one text-generation call with a
// deterministic fallback.
type advisor struct {
	profile profile
	model   models.Model
}

func (a *advisor) Name() string { return a.profile.name }

func (a *advisor) Invoke(ctx context.Context, in Input) (map[string]any, error) {
	observations, data := a.observe(ctx, in)

	result := map[string]any{
		"agent":           a.profile.name,
		"data":            data,
		"recommendations": a.profile.recommendations,
		"warnings":        a.profile.warnings,
		"next_steps":      a.profile.nextSteps,
	}

	response := a.generateResponse(ctx, in, observations)
	if response == "" {
		response = a.deterministicResponse(observations)
	}
	result["response"] = response
	return result, nil
}

// observe runs every granted tool and collects its content lines and data.
// A single failing tool is skipped, not fatal.
func (a *advisor) observe(ctx context.Context, in Input) ([]string, map[string]any) {
	var observations []string
	data := make(map[string]any, len(in.Tools))

	names := make([]string, 0, len(in.Tools))
	for name := range in.Tools {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		resp, err := in.Tools[name].Invoke(ctx, tools.ToolRequest{
			SessionID: in.SessionID,
			Query:     in.Query,
			Arguments: toolArguments(in.Context),
		})
		if err != nil {
			continue
		}
		if resp.Content != "" {
			observations = append(observations, resp.Content)
		}
		if len(resp.Data) > 0 {
			data[name] = resp.Data
		}
	}
	return observations, data
}

func toolArguments(context map[string]any) map[string]any {
	args := make(map[string]any)
	if context == nil {
		return args
	}
	if crop, ok := context["crop"].(string); ok {
		args["crop"] = crop
	}
	if loc, ok := context["location"]; ok {
		args["location"] = loc
	}
	return args
}

func (a *advisor) generateResponse(ctx context.Context, in Input, observations []string) string {
	if a.model == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(a.profile.role)
	sb.WriteString("\n\nFarmer question:\n")
	sb.WriteString(strings.TrimSpace(in.Query))
	if len(in.Context) > 0 {
		if ctxJSON, err := json.Marshal(in.Context); err == nil {
			sb.WriteString("\n\nFarmer context (JSON):\n")
			sb.Write(ctxJSON)
		}
	}
	if len(observations) > 0 {
		sb.WriteString("\n\nField observations:\n")
		for _, obs := range observations {
			sb.WriteString("- ")
			sb.WriteString(obs)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\nAnswer the question in 2-3 concise sentences grounded in the observations.")

	out, err := a.model.Generate(ctx, sb.String())
	if err != nil {
		// Model failures are expected; the deterministic path takes over.
		return ""
	}
	return strings.TrimSpace(out)
}

func (a *advisor) deterministicResponse(observations []string) string {
	if len(observations) == 0 {
		return fmt.Sprintf("%s: no field data available yet; share crop and location details for precise advice.", a.profile.role)
	}
	return strings.Join(observations, " ")
}

var advisorProfiles = []profile{
	{
		name: "crop_selector",
		role: "You are a crop selection advisor matching crops to soil, weather, and market conditions.",
		recommendations: []string{
			"Match crop choice to the current season and local water availability.",
			"Compare expected mandi prices before committing acreage.",
		},
		nextSteps: []string{"Confirm soil test results before finalizing the crop plan."},
	},
	{
		name: "seed_selection",
		role: "You are a seed and variety advisor recommending certified seeds for the chosen crop.",
		recommendations: []string{
			"Prefer certified seed lots with stated germination above 85%.",
			"Pick varieties bred for your district's rainfall pattern.",
		},
		nextSteps: []string{"Source seeds from a licensed dealer and keep the batch receipt."},
	},
	{
		name: "soil_health",
		role: "You are a soil health advisor interpreting soil readings and lab tests.",
		recommendations: []string{
			"Maintain soil pH between 6.0 and 7.5 for most field crops.",
			"Add organic matter each season to improve water retention.",
		},
		warnings:  []string{"Salinity above 2 dS/m will suppress germination."},
		nextSteps: []string{"Collect a composite soil sample and send it for a full lab test."},
	},
	{
		name: "fertilizer_advisor",
		role: "You are a fertilizer advisor converting soil nutrient gaps into product doses.",
		recommendations: []string{
			"Split nitrogen application across sowing and tillering stages.",
			"Base phosphorus doses on the latest soil test, not habit.",
		},
		warnings:  []string{"Do not apply urea just before heavy rain; most of it will leach away."},
		nextSteps: []string{"Procure fertilizer stock at least one week before the application window."},
	},
	{
		name: "irrigation_planner",
		role: "You are an irrigation planner scheduling water from moisture readings and forecasts.",
		recommendations: []string{
			"Irrigate early morning to cut evaporation losses.",
			"Skip scheduled irrigation when 20 mm or more rain is forecast within 48 hours.",
		},
		nextSteps: []string{"Check drip emitters for clogging before the next cycle."},
	},
	{
		name: "pest_disease_diagnostic",
		role: "You are a pest and disease diagnostician mapping symptoms to treatments.",
		recommendations: []string{
			"Scout the field edges twice a week; infestations start there.",
			"Rotate modes of action to avoid pesticide resistance.",
		},
		warnings:  []string{"Confirm the diagnosis before spraying; wrong chemicals waste money and harm beneficials."},
		nextSteps: []string{"Photograph affected leaves in daylight for a confirmed diagnosis."},
	},
	{
		name: "weather_watcher",
		role: "You are a weather advisor translating forecasts into field decisions.",
		recommendations: []string{
			"Plan spraying for calm mornings with wind under 15 km/h.",
		},
		warnings:  []string{"Showers expected within 48 hours; postpone fertilizer top-dressing."},
		nextSteps: []string{"Re-check the forecast tomorrow morning before field operations."},
	},
	{
		name: "growth_stage_monitor",
		role: "You are a growth stage monitor tracking crop development and care windows.",
		recommendations: []string{
			"Match input timing to the current growth stage, not the calendar.",
		},
		nextSteps: []string{"Record the sowing date and stage observations for stage tracking."},
	},
	{
		name: "task_scheduler",
		role: "You are a farm task scheduler ordering operations by urgency and weather.",
		recommendations: []string{
			"Front-load weather-sensitive tasks before the next rain window.",
		},
		nextSteps: []string{"Review the prioritized task list each evening."},
	},
	{
		name: "machinery_equipment",
		role: "You are a machinery and equipment advisor covering selection, upkeep, and repair timing.",
		recommendations: []string{
			"Service engines and filters before the peak season, not during it.",
			"Log running hours per machine to catch wear before breakdowns.",
		},
		warnings:  []string{"A slipping belt or unusual vibration means stop and inspect, not push through."},
		nextSteps: []string{"Schedule the next service based on logged running hours."},
	},
	{
		name: "farm_layout_mapping",
		role: "You are a farm layout advisor designing field blocks, paths, and water lines.",
		recommendations: []string{
			"Align beds with the natural slope to limit erosion and waterlogging.",
			"Keep machinery turning space at the headlands of every block.",
		},
		nextSteps: []string{"Sketch current field boundaries with dimensions before replanning the layout."},
	},
	{
		name: "yield_predictor",
		role: "You are a yield analyst estimating harvest outcomes from field conditions.",
		recommendations: []string{
			"Track rainfall deviation from the seasonal normal; it is the strongest yield driver.",
		},
		nextSteps: []string{"Log weekly crop condition scores to refine the yield estimate."},
	},
	{
		name: "profit_optimization",
		role: "You are a profit optimization advisor balancing input costs against expected returns.",
		recommendations: []string{
			"Track cost per acre by input category; cuts start where spend is largest.",
			"Price produce against the best nearby mandi, not the closest one.",
		},
		nextSteps: []string{"Prepare a simple per-crop cost sheet for this season."},
	},
	{
		name: "carbon_sustainability",
		role: "You are a sustainability advisor on carbon footprint and regenerative practices.",
		recommendations: []string{
			"Retain crop residue as mulch instead of burning it.",
			"Rotate in a legume to fix nitrogen and cut fertilizer use.",
		},
		warnings:  []string{"Residue burning attracts penalties in many districts."},
		nextSteps: []string{"List current practices that could qualify for carbon credit programs."},
	},
	{
		name: "market_intelligence",
		role: "You are a market analyst reading mandi prices and demand trends.",
		recommendations: []string{
			"Compare prices across nearby mandis before selling.",
			"Stagger sales when the trend is rising.",
		},
		nextSteps: []string{"Check the daily mandi bulletin for your crop."},
	},
	{
		name: "logistics_storage",
		role: "You are a logistics and storage advisor planning post-harvest handling.",
		recommendations: []string{
			"Book transport before harvest week; rates spike at peak arrival.",
			"Dry grain to safe moisture before bagging for storage.",
		},
		nextSteps: []string{"Inspect storage bags and the warehouse floor for moisture."},
	},
	{
		name: "input_procurement",
		role: "You are an input procurement advisor sourcing seeds, fertilizer, and chemicals at fair prices.",
		recommendations: []string{
			"Buy inputs from licensed dealers and keep every invoice.",
			"Pool orders with neighboring farms for bulk discounts.",
		},
		warnings:  []string{"Unsealed or unbranded fertilizer bags are a common adulteration sign."},
		nextSteps: []string{"Compare dealer quotes for your next fertilizer purchase."},
	},
	{
		name: "crop_insurance_risk",
		role: "You are a crop insurance and risk advisor assessing exposure and cover options.",
		recommendations: []string{
			"Enroll before the seasonal cutoff date; late enrollment is not accepted.",
		},
		warnings:  []string{"Keep dated photos of crop damage; claims without evidence are rejected."},
		nextSteps: []string{"Verify your land records match the insurance application."},
	},
	{
		name: "farmer_coach",
		role: "You are a farming coach giving practical, encouraging guidance to farmers.",
		recommendations: []string{
			"Keep a simple daily log of operations, costs, and observations.",
		},
		nextSteps: []string{"Ask a follow-up question with your crop name and growth stage."},
	},
	{
		name: "compliance_certification",
		role: "You are a compliance advisor on regulations, subsidies, and certifications.",
		recommendations: []string{
			"Keep land records, input invoices, and spray logs filed by season.",
			"Start organic certification paperwork a full season before conversion.",
		},
		nextSteps: []string{"List the certifications your target buyers require."},
	},
	{
		name: "community_engagement",
		role: "You are a community engagement facilitator connecting farmers to local groups and shared knowledge.",
		recommendations: []string{
			"Join the nearest farmer producer organization for better input and sale terms.",
			"Share field outcomes at local meetings; pooled observations catch problems early.",
		},
		nextSteps: []string{"Find the next krishi mela or extension meeting in your block."},
	},
}
