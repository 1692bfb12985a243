package superagent

import (
	"context"
	"strings"
	"testing"

	"github.com/agrimind/agrimind/src/agents"
	"github.com/agrimind/agrimind/src/catalog"
	"github.com/agrimind/agrimind/src/models"
	"github.com/agrimind/agrimind/src/tools"
)

func newTestAgent(factory AgentFactory, opts Options) *SuperAgent {
	return New(catalog.Default(), factory, tools.Default(), opts)
}

func TestSuperAgent_GreetingShortCircuit(t *testing.T) {
	factory := &fakeFactory{agents: map[string]*fakeAgent{
		"crop_selector": {name: "crop_selector", data: map[string]any{"response": "x"}},
	}}
	sa := newTestAgent(factory, Options{LowLLM: true})

	resp := sa.ProcessQuery(context.Background(), "namaste", nil, "s1")

	if factory.created != 0 {
		t.Fatalf("greeting invoked %d agents, want 0", factory.created)
	}
	if len(resp.SelectedAgents) != 0 {
		t.Fatalf("greeting selected agents: %v", resp.SelectedAgents)
	}
	if resp.NaturalText == "" {
		t.Fatal("greeting produced empty text")
	}
	if !resp.Success {
		t.Fatal("greeting response should report success")
	}
}

func TestSuperAgent_FertilizerQueryEndToEnd(t *testing.T) {
	registry := agents.NewRegistry(nil)
	sa := New(catalog.Default(), registry, tools.Default(), Options{LowLLM: true})

	resp := sa.ProcessQuery(context.Background(),
		"What fertilizer should I use for cotton?", nil, "s1")

	if !resp.Success {
		t.Fatal("completed query should report success")
	}
	if !contains(resp.SelectedAgents, "fertilizer_advisor") {
		t.Fatalf("selected %v, want fertilizer_advisor included", resp.SelectedAgents)
	}
	if len(resp.AgentResults) == 0 {
		t.Fatal("no agent results")
	}
	if strings.TrimSpace(resp.Answer.Answer) == "" {
		t.Fatal("empty synthesized answer")
	}
	if strings.TrimSpace(resp.NaturalText) == "" {
		t.Fatal("empty formatted text")
	}
	for _, marker := range []string{"%s", "%v", "{{"} {
		if strings.Contains(resp.NaturalText, marker) {
			t.Fatalf("unresolved placeholder %q in:\n%s", marker, resp.NaturalText)
		}
	}
}

func TestSuperAgent_ResultsMatchSelection(t *testing.T) {
	registry := agents.NewRegistry(nil)
	sa := New(catalog.Default(), registry, tools.Default(), Options{LowLLM: true})

	resp := sa.ProcessQuery(context.Background(),
		"rainfall and irrigation plan for my wheat", nil, "s1")

	if len(resp.AgentResults) != len(resp.SelectedAgents) {
		t.Fatalf("%d results for %d selected agents",
			len(resp.AgentResults), len(resp.SelectedAgents))
	}
	for i, r := range resp.AgentResults {
		if r.AgentName != resp.SelectedAgents[i] {
			t.Fatalf("result %d is %s, want %s", i, r.AgentName, resp.SelectedAgents[i])
		}
	}
}

func TestSuperAgent_FactoryPanicContained(t *testing.T) {
	sa := newTestAgent(panickyFactory{}, Options{LowLLM: true})

	resp := sa.ProcessQuery(context.Background(), "what crop should I sow", nil, "s1")

	for _, r := range resp.AgentResults {
		if r.Success {
			t.Fatalf("panicking factory should fail every agent: %+v", r)
		}
	}
	if resp.NaturalText == "" {
		t.Fatal("pipeline should still render a response")
	}
	if resp.SessionID != "s1" {
		t.Fatalf("session id lost: %q", resp.SessionID)
	}
}

type panickyFactory struct{}

func (panickyFactory) Create(string) (agents.Agent, bool) { panic("registry corrupted") }

// panicModel simulates a broken model client that takes down whatever
// goroutine calls it.
type panicModel struct{}

func (panicModel) Generate(context.Context, string) (string, error) {
	panic("model client corrupted")
}

func (panicModel) GenerateStream(context.Context, string) (<-chan models.StreamChunk, error) {
	panic("model client corrupted")
}

func TestSuperAgent_PipelineFaultReportsFailure(t *testing.T) {
	sa := newTestAgent(&fakeFactory{}, Options{Model: panicModel{}})

	// No keywords and no payload, so selection reaches the broken model.
	resp := sa.ProcessQuery(context.Background(), "zxqy gibberish", nil, "s1")

	if resp.Success {
		t.Fatal("faulted pipeline must not report success")
	}
	if strings.TrimSpace(resp.NaturalText) == "" {
		t.Fatal("faulted pipeline should still apologize in text")
	}
	if resp.SessionID != "s1" {
		t.Fatalf("session id lost: %q", resp.SessionID)
	}
}

func TestSuperAgent_StreamGreeting(t *testing.T) {
	sa := newTestAgent(&fakeFactory{}, Options{LowLLM: true})

	ch, err := sa.StreamQuery(context.Background(), "hello", nil)
	if err != nil {
		t.Fatal(err)
	}
	var full string
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatal(chunk.Err)
		}
		full += chunk.Delta
	}
	if full == "" {
		t.Fatal("greeting stream produced no text")
	}
}

func TestSuperAgent_StreamPassthrough(t *testing.T) {
	model := &stubModel{output: "rain is expected tomorrow"}
	sa := newTestAgent(&fakeFactory{}, Options{Model: model})

	ch, err := sa.StreamQuery(context.Background(), "will it rain tomorrow?", nil)
	if err != nil {
		t.Fatal(err)
	}
	var full string
	for chunk := range ch {
		full += chunk.Delta
	}
	if !strings.Contains(full, "rain is expected tomorrow") {
		t.Fatalf("stream text = %q", full)
	}
}

func TestSuperAgent_StreamWithoutModel(t *testing.T) {
	sa := newTestAgent(&fakeFactory{}, Options{})

	if _, err := sa.StreamQuery(context.Background(), "not a greeting", nil); err == nil {
		t.Fatal("streaming without a model should error")
	}
}
