package catalog

import (
	"fmt"
	"strings"
)

// Descriptor describes one advisory agent: its identity, what it does, and
// which capability tools it may be granted at invocation time.
type Descriptor struct {
	ID          string
	Name        string
	Description string
	Category    string
	Tools       []string
}

// Catalog is a static registry of agent descriptors. It is populated once at
// process start and read-only afterwards, so lookups need no locking.
type Catalog struct {
	byID  map[string]Descriptor
	order []string
}

// New builds a catalog from the provided descriptors. Duplicate or empty IDs
// return an error; registration order is preserved for deterministic listing.
func New(descriptors []Descriptor) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		id := strings.ToLower(strings.TrimSpace(d.ID))
		if id == "" {
			return nil, fmt.Errorf("agent descriptor has empty id (name %q)", d.Name)
		}
		if _, exists := c.byID[id]; exists {
			return nil, fmt.Errorf("agent %s already registered", id)
		}
		d.ID = id
		c.byID[id] = d
		c.order = append(c.order, id)
	}
	return c, nil
}

// Lookup returns the descriptor for the given agent ID.
func (c *Catalog) Lookup(id string) (Descriptor, bool) {
	d, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return d, ok
}

// Has reports whether the agent ID exists in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// IDs returns all agent IDs in registration order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// All returns every descriptor in registration order.
func (c *Catalog) All() []Descriptor {
	out := make([]Descriptor, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Categories returns the distinct category tags in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range c.order {
		cat := c.byID[id].Category
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}

// Len returns the number of registered agents.
func (c *Catalog) Len() int { return len(c.order) }

// Default returns the standard AgriMind agent catalog.
func Default() *Catalog {
	c, err := New(defaultDescriptors)
	if err != nil {
		// The default set is compiled in; a failure here is a programming error.
		panic(err)
	}
	return c
}

var defaultDescriptors = []Descriptor{
	{
		ID:          "crop_selector",
		Name:        "Crop Selector Agent",
		Description: "Helps select the best crops based on soil, weather, and market conditions",
		Category:    "crop_planning",
		Tools:       []string{"soil", "weather", "market", "crop"},
	},
	{
		ID:          "seed_selection",
		Name:        "Seed Selection Agent",
		Description: "Recommends the best seeds and varieties for selected crops",
		Category:    "crop_planning",
		Tools:       []string{"market", "crop"},
	},
	{
		ID:          "soil_health",
		Name:        "Soil Health Agent",
		Description: "Analyzes soil conditions and provides health recommendations",
		Category:    "crop_planning",
		Tools:       []string{"soil", "crop", "soil_sensor", "lab_test_analyzer"},
	},
	{
		ID:          "fertilizer_advisor",
		Name:        "Fertilizer Advisor Agent",
		Description: "Provides fertilizer recommendations based on soil analysis",
		Category:    "crop_planning",
		Tools:       []string{"soil", "fertilizer", "crop", "fertilizer_database", "weather_forecast"},
	},
	{
		ID:          "irrigation_planner",
		Name:        "Irrigation Planner Agent",
		Description: "Plans irrigation schedules based on weather and crop needs",
		Category:    "crop_planning",
		Tools:       []string{"weather", "irrigation", "crop", "evapotranspiration_model"},
	},
	{
		ID:          "pest_disease_diagnostic",
		Name:        "Pest & Disease Diagnostic Agent",
		Description: "Diagnoses pest and disease issues and provides treatment plans",
		Category:    "crop_planning",
		Tools:       []string{"pest_disease", "crop"},
	},
	{
		ID:          "weather_watcher",
		Name:        "Weather Watcher Agent",
		Description: "Monitors weather conditions and provides forecasts",
		Category:    "crop_planning",
		Tools:       []string{"weather", "crop", "weather_forecast"},
	},
	{
		ID:          "growth_stage_monitor",
		Name:        "Growth Stage Monitor Agent",
		Description: "Tracks crop growth stages and provides care recommendations",
		Category:    "crop_planning",
		Tools:       []string{"crop", "growth_stage_prediction"},
	},
	{
		ID:          "task_scheduler",
		Name:        "Task Scheduler Agent",
		Description: "Schedules farm tasks and operations efficiently",
		Category:    "farm_operations",
		Tools:       []string{"task_prioritization", "weather_forecast"},
	},
	{
		ID:          "machinery_equipment",
		Name:        "Machinery & Equipment Agent",
		Description: "Manages machinery and equipment recommendations",
		Category:    "farm_operations",
		Tools:       []string{"maintenance_tracker", "predictive_maintenance"},
	},
	{
		ID:          "farm_layout_mapping",
		Name:        "Farm Layout Mapping Agent",
		Description: "Helps design and optimize farm layout",
		Category:    "farm_operations",
		Tools:       []string{"field_mapping"},
	},
	{
		ID:          "yield_predictor",
		Name:        "Yield Predictor Agent",
		Description: "Predicts crop yields based on various factors",
		Category:    "analytics",
		Tools:       []string{"weather", "crop", "soil"},
	},
	{
		ID:          "profit_optimization",
		Name:        "Profit Optimization Agent",
		Description: "Optimizes farm profitability through various strategies",
		Category:    "analytics",
		Tools:       []string{"profit_optimization", "market", "crop"},
	},
	{
		ID:          "carbon_sustainability",
		Name:        "Carbon Sustainability Agent",
		Description: "Helps with carbon footprint and sustainability practices",
		Category:    "analytics",
		Tools:       []string{"carbon_sustainability"},
	},
	{
		ID:          "market_intelligence",
		Name:        "Market Intelligence Agent",
		Description: "Provides market insights and price trends",
		Category:    "supply_chain",
		Tools:       []string{"market", "crop"},
	},
	{
		ID:          "logistics_storage",
		Name:        "Logistics & Storage Agent",
		Description: "Manages logistics and storage recommendations",
		Category:    "supply_chain",
		Tools:       []string{"market", "weather"},
	},
	{
		ID:          "input_procurement",
		Name:        "Input Procurement Agent",
		Description: "Helps with procurement of farm inputs",
		Category:    "supply_chain",
		Tools:       []string{"procurement", "market"},
	},
	{
		ID:          "crop_insurance_risk",
		Name:        "Crop Insurance & Risk Agent",
		Description: "Provides risk assessment and insurance recommendations",
		Category:    "supply_chain",
		Tools:       []string{"weather", "market"},
	},
	{
		ID:          "farmer_coach",
		Name:        "Farmer Coach Agent",
		Description: "Provides coaching and educational support to farmers",
		Category:    "support",
		Tools:       []string{"crop"},
	},
	{
		ID:          "compliance_certification",
		Name:        "Compliance & Certification Agent",
		Description: "Helps with regulatory compliance and certifications",
		Category:    "support",
		Tools:       []string{"compliance_cert"},
	},
	{
		ID:          "community_engagement",
		Name:        "Community Engagement Agent",
		Description: "Facilitates community engagement and knowledge sharing",
		Category:    "support",
		Tools:       []string{"community"},
	},
}
