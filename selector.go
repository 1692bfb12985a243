package superagent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/agrimind/agrimind/src/catalog"
	"github.com/agrimind/agrimind/src/models"
)

// maxSelectedAgents bounds every selection stage's output.
const maxSelectedAgents = 5

// Selector decides which agents should handle a query. Stages are tried in
// strict order and the first non-empty result wins; stages never merge.
type Selector struct {
	catalog *catalog.Catalog
	model   models.Model
	log     *slog.Logger
	max     int
}

func NewSelector(cat *catalog.Catalog, model models.Model, log *slog.Logger, max int) *Selector {
	if max <= 0 {
		max = maxSelectedAgents
	}
	if log == nil {
		log = slog.Default()
	}
	return &Selector{catalog: cat, model: model, log: log, max: max}
}

// strategyAgents maps a caller-declared routing strategy to a fixed agent set.
// "auto" and unknown values defer to the later stages.
var strategyAgents = map[string][]string{
	"weather":          {"weather_watcher"},
	"weather_only":     {"weather_watcher"},
	"growth":           {"growth_stage_monitor"},
	"growth_only":      {"growth_stage_monitor"},
	"irrigation":       {"irrigation_planner"},
	"irrigation_only":  {"irrigation_planner"},
	"fertilizer":       {"fertilizer_advisor"},
	"fertilizer_only":  {"fertilizer_advisor"},
	"soil":             {"soil_health"},
	"soil_health":      {"soil_health"},
	"soil_health_only": {"soil_health"},
	"market":           {"market_intelligence"},
	"market_only":      {"market_intelligence"},
	"tasks":            {"task_scheduler"},
	"task_scheduler":   {"task_scheduler"},
	"task_scheduling":  {"task_scheduler"},
	"both":             {"weather_watcher", "growth_stage_monitor"},
	"comprehensive": {
		"weather_watcher", "soil_health", "irrigation_planner",
		"fertilizer_advisor", "market_intelligence", "task_scheduler",
	},
	"comprehensive_analysis": {
		"weather_watcher", "soil_health", "irrigation_planner",
		"fertilizer_advisor", "market_intelligence", "task_scheduler",
	},
}

// keywordRule pairs a word-boundary pattern with the agent it selects.
// Order fixes selection priority when several domains match.
type keywordRule struct {
	agent   string
	pattern *regexp.Regexp
}

func rule(agent, words string) keywordRule {
	return keywordRule{agent: agent, pattern: regexp.MustCompile(`\b(?:` + words + `)\b`)}
}

var keywordRules = []keywordRule{
	rule("crop_selector", `crop|crops|plant|sow|kharif|rabi|season`),
	rule("seed_selection", `seed|seeds|variety|varieties|hybrid|gmo`),
	rule("weather_watcher", `weather|rain|rainfall|temperature|forecast|humidity|wind|storm|drought`),
	rule("growth_stage_monitor", `growth|stage|seedling|vegetative|flowering|maturity|harvest|crop health|plant health`),
	rule("irrigation_planner", `irrigation|irrigate|watering|drip|sprinkler|pump`),
	rule("fertilizer_advisor", `fertilizer|nutrient|npk|urea|dap|mop|compost|manure`),
	rule("soil_health", `soil|ph|salinity|organic matter|soil test`),
	rule("pest_disease_diagnostic", `pest|disease|fungus|blight|leaf spot|insect|spots|yellow|yellowing|wilting|curl|mosaic|rot`),
	rule("market_intelligence", `market|price|sell|mandi|apmc|profit|revenue`),
	rule("task_scheduler", `task|schedule|plan|today|tomorrow|weekly|daily|reminder`),
	rule("crop_insurance_risk", `insurance|risk|claim`),
}

// Select runs the fallback chain and returns a validated, deduplicated list
// of catalog agent identifiers, never empty and never longer than the max.
func (s *Selector) Select(ctx context.Context, query string, qctx Context) []string {
	if ids := s.byStrategy(qctx); len(ids) > 0 {
		s.log.Debug("agents selected by strategy", "agents", ids)
		return ids
	}
	if ids := s.byKeywords(query); len(ids) > 0 {
		s.log.Debug("agents selected by keywords", "agents", ids)
		return ids
	}
	if ids := s.byPayload(qctx); len(ids) > 0 {
		s.log.Debug("agents selected by payload", "agents", ids)
		return ids
	}
	if ids := s.byModel(ctx, query, qctx); len(ids) > 0 {
		s.log.Debug("agents selected by model", "agents", ids)
		return ids
	}
	return s.safeList([]string{"crop_selector", "farmer_coach"})
}

func (s *Selector) byStrategy(qctx Context) []string {
	strategy := strategyFrom(qctx)
	if strategy == "" || strategy == "auto" {
		return nil
	}
	ids, ok := strategyAgents[strategy]
	if !ok {
		return nil
	}
	return s.safeList(ids)
}

// strategyFrom reads context["strategy"] or the nested context["routing"]["strategy"].
func strategyFrom(qctx Context) string {
	if qctx == nil {
		return ""
	}
	if v, ok := qctx["strategy"].(string); ok {
		return strings.ToLower(strings.TrimSpace(v))
	}
	if routing, ok := qctx["routing"].(map[string]any); ok {
		if v, ok := routing["strategy"].(string); ok {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}

func (s *Selector) byKeywords(query string) []string {
	lowered := strings.ToLower(query)
	var ids []string
	for _, r := range keywordRules {
		if r.pattern.MatchString(lowered) {
			ids = append(ids, r.agent)
		}
	}
	return s.safeList(ids)
}

func (s *Selector) byPayload(qctx Context) []string {
	hasLocation := hasCoordinates(qctx)
	hasCrop := false
	if qctx != nil {
		hasCrop = truthy(qctx["crop"]) || truthy(qctx["crop_data"])
	}
	switch {
	case hasLocation && hasCrop:
		return s.safeList([]string{
			"weather_watcher", "growth_stage_monitor", "irrigation_planner",
			"fertilizer_advisor", "soil_health",
		})
	case hasLocation:
		return s.safeList([]string{"weather_watcher"})
	case hasCrop:
		return s.safeList([]string{"growth_stage_monitor", "soil_health"})
	}
	return nil
}

// hasCoordinates reports whether the context carries a location object with
// both a latitude and a longitude, under either long or short key spellings.
// Keys holding empty or zero values do not count.
func hasCoordinates(qctx Context) bool {
	if qctx == nil {
		return false
	}
	loc, ok := qctx["location"].(map[string]any)
	if !ok {
		return false
	}
	lat := truthy(loc["latitude"]) || truthy(loc["lat"])
	lon := truthy(loc["longitude"]) || truthy(loc["lon"])
	return lat && lon
}

// truthy mirrors loose boolean coercion on decoded JSON values: nil, empty
// strings, zero numbers, false, and empty collections are all false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

func (s *Selector) byModel(ctx context.Context, query string, qctx Context) []string {
	if s.model == nil {
		return nil
	}
	out, err := s.model.Generate(ctx, s.selectionPrompt(query, qctx))
	if err != nil {
		s.log.Warn("model-assisted selection failed", "reason", models.Reason(err), "error", err)
		return nil
	}
	ids, err := parseAgentList(out)
	if err != nil {
		s.log.Warn("model-assisted selection returned malformed output", "error", err)
		return nil
	}
	return s.safeList(ids)
}

func (s *Selector) selectionPrompt(query string, qctx Context) string {
	var sb strings.Builder
	sb.WriteString("You route farmer questions to specialist agents. Available agents:\n")
	for _, d := range s.catalog.All() {
		fmt.Fprintf(&sb, "- %s (%s): %s [tools: %s]\n",
			d.ID, d.Name, d.Description, strings.Join(d.Tools, ", "))
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)
	if len(qctx) > 0 {
		if ctxJSON, err := json.Marshal(qctx); err == nil {
			sb.WriteString("\nContext: ")
			sb.Write(ctxJSON)
		}
	}
	fmt.Fprintf(&sb, "\n\nReply with ONLY a JSON array of at most %d agent ids, best match first. Example: [\"weather_watcher\",\"soil_health\"]", s.max)
	return sb.String()
}

// parseAgentList accepts a raw JSON array or one wrapped in a fenced code
// block; failing that it scans for the outermost bracket pair.
func parseAgentList(out string) ([]string, error) {
	text := strings.TrimSpace(out)
	if fenced, ok := stripFence(text); ok {
		text = fenced
	}
	if !strings.HasPrefix(text, "[") {
		start := strings.Index(text, "[")
		end := strings.LastIndex(text, "]")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("no JSON array in %q", out)
		}
		text = text[start : end+1]
	}
	var ids []string
	if err := json.Unmarshal([]byte(text), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func stripFence(text string) (string, bool) {
	if !strings.HasPrefix(text, "```") {
		return "", false
	}
	body := strings.TrimPrefix(text, "```json")
	body = strings.TrimPrefix(body, "```")
	if idx := strings.Index(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body), true
}

// safeList drops identifiers missing from the catalog, removes duplicates
// preserving first occurrence, and truncates to the selection limit.
func (s *Selector) safeList(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] || !s.catalog.Has(id) {
			continue
		}
		seen[id] = true
		out = append(out, id)
		if len(out) >= s.max {
			break
		}
	}
	return out
}
