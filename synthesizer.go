package superagent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agrimind/agrimind/src/models"
)

// Section caps for deterministic synthesis.
const (
	maxRecommendations = 3
	maxWarnings        = 2
	maxNextSteps       = 3
)

const (
	answerReady    = "Response ready."
	answerNeedInfo = "Please provide crop and location details for a precise recommendation."

	defaultRecommendation = "Provide crop name and current growth stage."
	defaultNextStep       = "Share location, crop, and growth stage for more precise advice."

	confidenceSuccess = 0.6
	confidenceFailure = 0.4
)

// Synthesizer reduces agent results into one SynthesizedAnswer. With a model
// it asks for a single JSON merge; without one, or on any model failure, it
// assembles the answer deterministically. It never returns an error.
type Synthesizer struct {
	model  models.Model
	log    *slog.Logger
	lowLLM bool
}

func NewSynthesizer(model models.Model, log *slog.Logger, lowLLM bool) *Synthesizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synthesizer{model: model, log: log, lowLLM: lowLLM}
}

// Synthesize merges the agent results for a query. locale drives an optional
// translation instruction in model-assisted mode.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []AgentResult, locale string) SynthesizedAnswer {
	if !s.lowLLM && s.model != nil {
		if answer, ok := s.modelAssisted(ctx, query, results, locale); ok {
			return answer
		}
	}
	return s.deterministic(results)
}

// successfulAgents lists the agents that produced a usable result, in
// execution order. Only these count toward the answer's metadata.
func successfulAgents(results []AgentResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		if r.Success {
			out = append(out, r.AgentName)
		}
	}
	return out
}

// deterministic walks the successful results in order, collecting the first
// usable answer text and capped recommendation, warning, and next-step lists.
func (s *Synthesizer) deterministic(results []AgentResult) SynthesizedAnswer {
	used := successfulAgents(results)
	answer := SynthesizedAnswer{
		Recommendations: []string{},
		Warnings:        []string{},
		NextSteps:       []string{},
		Meta:            Meta{AgentsUsed: used, Confidence: confidenceFailure},
	}

	anySuccess := len(used) > 0
	for _, r := range results {
		if !r.Success {
			continue
		}

		if answer.Answer == "" {
			answer.Answer = textField(r.Data, "response", "answer")
		}
		answer.Recommendations = appendCapped(answer.Recommendations, r.Data["recommendations"], maxRecommendations)
		answer.Warnings = appendCapped(answer.Warnings, r.Data["warnings"], maxWarnings)
		answer.NextSteps = appendCapped(answer.NextSteps, r.Data["next_steps"], maxNextSteps)
	}

	if answer.Answer == "" {
		if anySuccess {
			answer.Answer = answerReady
		} else {
			answer.Answer = answerNeedInfo
		}
	}
	if len(answer.Recommendations) == 0 {
		answer.Recommendations = []string{defaultRecommendation}
	}
	if len(answer.NextSteps) == 0 {
		answer.NextSteps = []string{defaultNextStep}
	}
	if anySuccess {
		answer.Meta.Confidence = confidenceSuccess
	}
	return answer
}

func (s *Synthesizer) modelAssisted(ctx context.Context, query string, results []AgentResult, locale string) (SynthesizedAnswer, bool) {
	out, err := s.model.Generate(ctx, s.synthesisPrompt(query, results, locale))
	if err != nil {
		s.log.Warn("model-assisted synthesis failed", "reason", models.Reason(err), "error", err)
		return SynthesizedAnswer{}, false
	}

	var parsed struct {
		Answer          string   `json:"answer"`
		Recommendations []string `json:"recommendations"`
		Warnings        []string `json:"warnings"`
		NextSteps       []string `json:"next_steps"`
	}
	text := strings.TrimSpace(out)
	if fenced, ok := stripFence(text); ok {
		text = fenced
	}
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || strings.TrimSpace(parsed.Answer) == "" {
		s.log.Warn("model-assisted synthesis returned unusable output", "error", err)
		return SynthesizedAnswer{}, false
	}

	used := successfulAgents(results)
	confidence := confidenceFailure
	if len(used) > 0 {
		confidence = confidenceSuccess
	}
	return SynthesizedAnswer{
		Answer:          strings.TrimSpace(parsed.Answer),
		Recommendations: nonEmpty(parsed.Recommendations),
		Warnings:        nonEmpty(parsed.Warnings),
		NextSteps:       nonEmpty(parsed.NextSteps),
		Meta:            Meta{AgentsUsed: used, Confidence: confidence},
	}, true
}

func (s *Synthesizer) synthesisPrompt(query string, results []AgentResult, locale string) string {
	var sb strings.Builder
	sb.WriteString("Merge the following specialist outputs into one advisory answer for a farmer.\n\n")
	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nSpecialist outputs:\n")
	for _, r := range results {
		if r.Success {
			body, _ := json.Marshal(r.Data)
			fmt.Fprintf(&sb, "- %s: %s\n", r.AgentName, body)
		} else {
			fmt.Fprintf(&sb, "- %s: FAILED (%s)\n", r.AgentName, r.Error)
		}
	}
	sb.WriteString("\nRespond with ONLY strict JSON: ")
	sb.WriteString(`{"answer": string, "recommendations": [string], "warnings": [string], "next_steps": [string]}`)
	if instr := translationInstruction(locale); instr != "" {
		sb.WriteString("\n")
		sb.WriteString(instr)
	}
	return sb.String()
}

// translationInstruction returns a directive to answer in the caller's
// language; English locales need none.
func translationInstruction(locale string) string {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "", "none", "en", "en-us", "en-in":
		return ""
	}
	return fmt.Sprintf("Write all prose in the language of locale %q.", locale)
}

// textField returns the first non-empty string under any of the keys.
func textField(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := data[key].(string); ok {
			if t := strings.TrimSpace(v); t != "" {
				return t
			}
		}
	}
	return ""
}

// appendCapped normalizes a result field (string, string list, or arbitrary
// structured items) into trimmed display strings, appending until the cap.
func appendCapped(dst []string, field any, limit int) []string {
	for _, item := range normalizeItems(field) {
		if len(dst) >= limit {
			break
		}
		dst = append(dst, item)
	}
	return dst
}

func normalizeItems(field any) []string {
	switch v := field.(type) {
	case nil:
		return nil
	case string:
		if t := strings.TrimSpace(v); t != "" {
			return []string{t}
		}
		return nil
	case []string:
		var out []string
		for _, item := range v {
			if t := strings.TrimSpace(item); t != "" {
				out = append(out, t)
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, normalizeItems(item)...)
		}
		return out
	default:
		// Structured items are serialized for display.
		body, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return []string{string(body)}
	}
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}
