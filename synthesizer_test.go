package superagent

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func success(name string, data map[string]any) AgentResult {
	return AgentResult{AgentName: name, Success: true, Data: data}
}

func failure(name, msg string) AgentResult {
	return AgentResult{AgentName: name, Error: msg}
}

func TestSynthesizer_DeterministicCaps(t *testing.T) {
	s := NewSynthesizer(nil, nil, true)

	many := []any{"r1", "r2", "r3", "r4", "r5"}
	results := []AgentResult{
		success("a", map[string]any{
			"response":        "first answer",
			"recommendations": many,
			"warnings":        many,
			"next_steps":      many,
		}),
		success("b", map[string]any{
			"recommendations": many,
			"warnings":        many,
			"next_steps":      many,
		}),
	}

	got := s.Synthesize(context.Background(), "q", results, "en")

	if len(got.Recommendations) > 3 {
		t.Errorf("recommendations = %d items, cap is 3", len(got.Recommendations))
	}
	if len(got.Warnings) > 2 {
		t.Errorf("warnings = %d items, cap is 2", len(got.Warnings))
	}
	if len(got.NextSteps) > 3 {
		t.Errorf("next steps = %d items, cap is 3", len(got.NextSteps))
	}
	if got.Answer != "first answer" {
		t.Errorf("answer = %q, want first successful response", got.Answer)
	}
	if got.Meta.Confidence != confidenceSuccess {
		t.Errorf("confidence = %v, want %v", got.Meta.Confidence, confidenceSuccess)
	}
}

func TestSynthesizer_DeterministicDefaults(t *testing.T) {
	s := NewSynthesizer(nil, nil, true)

	// Successful agent without any text fields.
	got := s.Synthesize(context.Background(), "q",
		[]AgentResult{success("a", map[string]any{"data": map[string]any{}})}, "en")

	if got.Answer != answerReady {
		t.Errorf("answer = %q, want %q", got.Answer, answerReady)
	}
	if !reflect.DeepEqual(got.Recommendations, []string{defaultRecommendation}) {
		t.Errorf("recommendations = %v, want default", got.Recommendations)
	}
	if !reflect.DeepEqual(got.NextSteps, []string{defaultNextStep}) {
		t.Errorf("next steps = %v, want default", got.NextSteps)
	}
}

func TestSynthesizer_AllFailed(t *testing.T) {
	s := NewSynthesizer(nil, nil, true)

	got := s.Synthesize(context.Background(), "q",
		[]AgentResult{failure("a", "timeout"), failure("b", "crash")}, "en")

	if got.Answer != answerNeedInfo {
		t.Errorf("answer = %q, want %q", got.Answer, answerNeedInfo)
	}
	if got.Meta.Confidence != confidenceFailure {
		t.Errorf("confidence = %v, want %v", got.Meta.Confidence, confidenceFailure)
	}
	if len(got.Meta.AgentsUsed) != 0 {
		t.Errorf("agents used = %v, want none when every agent failed", got.Meta.AgentsUsed)
	}
}

func TestSynthesizer_AgentsUsedExcludesFailures(t *testing.T) {
	s := NewSynthesizer(nil, nil, true)

	got := s.Synthesize(context.Background(), "q",
		[]AgentResult{
			success("weather_watcher", map[string]any{"response": "sunny"}),
			failure("soil_health", "timeout"),
			success("irrigation_planner", map[string]any{"response": "hold water"}),
		}, "en")

	want := []string{"weather_watcher", "irrigation_planner"}
	if !reflect.DeepEqual(got.Meta.AgentsUsed, want) {
		t.Errorf("agents used = %v, want %v", got.Meta.AgentsUsed, want)
	}
}

func TestSynthesizer_ModelAssistedAgentsUsedExcludesFailures(t *testing.T) {
	model := &stubModel{output: `{"answer":"merged","recommendations":[],"warnings":[],"next_steps":[]}`}
	s := NewSynthesizer(model, nil, false)

	got := s.Synthesize(context.Background(), "q",
		[]AgentResult{
			success("weather_watcher", map[string]any{"response": "sunny"}),
			failure("soil_health", "timeout"),
		}, "en")

	want := []string{"weather_watcher"}
	if !reflect.DeepEqual(got.Meta.AgentsUsed, want) {
		t.Errorf("agents used = %v, want %v", got.Meta.AgentsUsed, want)
	}
}

func TestSynthesizer_StructuredItemsSerialized(t *testing.T) {
	s := NewSynthesizer(nil, nil, true)

	got := s.Synthesize(context.Background(), "q",
		[]AgentResult{success("a", map[string]any{
			"recommendations": []any{map[string]any{"dose": "50kg/ha"}},
		})}, "en")

	if len(got.Recommendations) != 1 || !strings.Contains(got.Recommendations[0], "50kg/ha") {
		t.Fatalf("structured item not serialized for display: %v", got.Recommendations)
	}
}

func TestSynthesizer_ModelAssisted(t *testing.T) {
	model := &stubModel{output: `{"answer":"use urea at tillering","recommendations":["split the dose"],"warnings":[],"next_steps":["recheck in a week"]}`}
	s := NewSynthesizer(model, nil, false)

	got := s.Synthesize(context.Background(), "q",
		[]AgentResult{success("fertilizer_advisor", map[string]any{"response": "x"})}, "en")

	if got.Answer != "use urea at tillering" {
		t.Fatalf("answer = %q", got.Answer)
	}
	if !reflect.DeepEqual(got.Recommendations, []string{"split the dose"}) {
		t.Fatalf("recommendations = %v", got.Recommendations)
	}
}

func TestSynthesizer_ModelFailureDegrades(t *testing.T) {
	model := &stubModel{err: errors.New("rate limited")}
	s := NewSynthesizer(model, nil, false)

	got := s.Synthesize(context.Background(), "q",
		[]AgentResult{success("a", map[string]any{"response": "det answer"})}, "en")

	if got.Answer != "det answer" {
		t.Fatalf("expected deterministic fallback, got %q", got.Answer)
	}
}

func TestSynthesizer_MalformedModelOutputDegrades(t *testing.T) {
	model := &stubModel{output: "this is not json at all"}
	s := NewSynthesizer(model, nil, false)

	got := s.Synthesize(context.Background(), "q",
		[]AgentResult{success("a", map[string]any{"response": "det answer"})}, "en")

	if got.Answer != "det answer" {
		t.Fatalf("expected deterministic fallback, got %q", got.Answer)
	}
}

func TestSynthesizer_LowLLMSkipsModel(t *testing.T) {
	model := &stubModel{output: `{"answer":"model answer"}`}
	s := NewSynthesizer(model, nil, true)

	got := s.Synthesize(context.Background(), "q",
		[]AgentResult{success("a", map[string]any{"response": "det answer"})}, "en")

	if model.calls != 0 {
		t.Fatalf("model called %d times in low-LLM mode", model.calls)
	}
	if got.Answer != "det answer" {
		t.Fatalf("answer = %q", got.Answer)
	}
}

func TestTranslationInstruction(t *testing.T) {
	for _, locale := range []string{"", "none", "en", "en-US", "en-IN"} {
		if got := translationInstruction(locale); got != "" {
			t.Errorf("locale %q should need no instruction, got %q", locale, got)
		}
	}
	if got := translationInstruction("hi-IN"); !strings.Contains(got, "hi-IN") {
		t.Errorf("non-English locale should produce an instruction, got %q", got)
	}
}
