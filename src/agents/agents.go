// Package agents holds the domain advisors: a closed set of units that each
// answer one slice of an agricultural query (soil, weather, market, ...)
// behind a uniform invocation contract.
package agents

import (
	"context"
	"strings"

	"github.com/agrimind/agrimind/src/models"
	"github.com/agrimind/agrimind/src/tools"
)

// Input carries everything a single advisor run receives. Context is shared
// read-only across concurrently running advisors and must not be mutated.
type Input struct {
	Query     string
	Context   map[string]any
	Tools     map[string]tools.Tool
	SessionID string
}

// Agent is the uniform invocation contract for domain advisors. The result
// payload is free-form, but downstream synthesis only reads the well-known
// keys: response, recommendations, warnings, next_steps.
type Agent interface {
	Name() string
	Invoke(ctx context.Context, in Input) (map[string]any, error)
}

// Registry constructs advisors by catalog identifier. The set is closed and
// built once at startup.
type Registry struct {
	model    models.Model
	advisors map[string]*advisor
}

// NewRegistry builds the advisor set on top of the given model client.
func NewRegistry(model models.Model) *Registry {
	r := &Registry{model: model, advisors: make(map[string]*advisor, len(advisorProfiles))}
	for _, p := range advisorProfiles {
		r.advisors[p.name] = &advisor{profile: p, model: model}
	}
	return r
}

// Create returns the advisor registered under id.
func (r *Registry) Create(id string) (Agent, bool) {
	a, ok := r.advisors[strings.ToLower(strings.TrimSpace(id))]
	return a, ok
}

// IDs returns the identifiers of every registered advisor.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.advisors))
	for _, p := range advisorProfiles {
		ids = append(ids, p.name)
	}
	return ids
}
