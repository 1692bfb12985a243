// Package superagent orchestrates a panel of agricultural advisory agents
// behind a single query entrypoint: it selects the relevant agents for a
// farmer's question, runs them concurrently, synthesizes their outputs into
// one structured answer, and renders that answer as natural language.
package superagent

import "time"

// Context carries optional structured hints alongside a query, such as
// location coordinates, crop details, or a preferred response language
// under the "language" key.
type Context map[string]any

// AgentResult records the outcome of one agent invocation during fan-out.
// Exactly one of Data and Error is meaningful, keyed by Success.
type AgentResult struct {
	AgentName     string         `json:"agent_name"`
	Success       bool           `json:"success"`
	Data          map[string]any `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime time.Duration  `json:"execution_time"`
}

// Meta describes how an answer was produced.
type Meta struct {
	AgentsUsed []string `json:"agents_used"`
	Confidence float64  `json:"confidence"`
}

// SynthesizedAnswer is the structured result of merging agent outputs.
type SynthesizedAnswer struct {
	Answer          string   `json:"answer"`
	Recommendations []string `json:"recommendations"`
	Warnings        []string `json:"warnings"`
	NextSteps       []string `json:"next_steps"`
	Meta            Meta     `json:"meta"`
}

// Response is the envelope returned for every processed query. Success is
// false only when the pipeline itself faulted and the answer is the generic
// apology; degraded-but-assembled answers still report true.
type Response struct {
	Success        bool              `json:"success"`
	SessionID      string            `json:"session_id"`
	Query          string            `json:"query"`
	Answer         SynthesizedAnswer `json:"answer"`
	NaturalText    string            `json:"natural_text"`
	SelectedAgents []string          `json:"selected_agents"`
	AgentResults   []AgentResult     `json:"agent_results,omitempty"`
	ProcessingTime time.Duration     `json:"processing_time"`
}
