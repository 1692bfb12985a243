package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ToolSpec describes a capability for prompt rendering and discovery.
type ToolSpec struct {
	Name        string
	Description string
}

// ToolRequest carries the invocation input for a capability tool.
type ToolRequest struct {
	SessionID string
	Query     string
	Arguments map[string]any
}

// ToolResponse is a tool's structured result.
type ToolResponse struct {
	Content string
	Data    map[string]any
}

// Tool is a scoped helper capability an agent may call during its run.
type Tool interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
}

// Provider resolves tool identifiers into capability objects.
type Provider interface {
	Lookup(name string) (Tool, bool)
	// Grant returns the subset of tools named in ids as a keyed map.
	// Unknown identifiers are skipped.
	Grant(ids []string) map[string]Tool
}

// StaticProvider is an in-memory Provider seeded once at startup.
type StaticProvider struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewStaticProvider constructs a provider seeded with the given tools.
// Invalid entries are skipped silently.
func NewStaticProvider(tools []Tool) *StaticProvider {
	p := &StaticProvider{tools: make(map[string]Tool)}
	for _, t := range tools {
		_ = p.Register(t)
	}
	return p
}

// Register adds a tool under its lower-cased spec name.
func (p *StaticProvider) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	key := strings.ToLower(strings.TrimSpace(t.Spec().Name))
	if key == "" {
		return fmt.Errorf("tool name is empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.tools[key]; exists {
		return fmt.Errorf("tool %s already registered", key)
	}
	p.tools[key] = t
	p.order = append(p.order, key)
	return nil
}

// Lookup returns the tool registered under name.
func (p *StaticProvider) Lookup(name string) (Tool, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.tools[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Grant returns the subset of registered tools named in ids.
func (p *StaticProvider) Grant(ids []string) map[string]Tool {
	granted := make(map[string]Tool, len(ids))
	for _, id := range ids {
		if t, ok := p.Lookup(id); ok {
			granted[strings.ToLower(strings.TrimSpace(id))] = t
		}
	}
	return granted
}

// Specs returns registered tool specs in registration order.
func (p *StaticProvider) Specs() []ToolSpec {
	p.mu.RLock()
	defer p.mu.RUnlock()
	specs := make([]ToolSpec, 0, len(p.order))
	for _, key := range p.order {
		specs = append(specs, p.tools[key].Spec())
	}
	return specs
}
