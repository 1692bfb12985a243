package superagent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agrimind/agrimind/src/agents"
	"github.com/agrimind/agrimind/src/catalog"
	"github.com/agrimind/agrimind/src/concurrent"
	"github.com/agrimind/agrimind/src/tools"
)

// defaultAgentTimeout bounds a single agent invocation during fan-out.
const defaultAgentTimeout = 30 * time.Second

// AgentFactory instantiates an agent for an identifier. *agents.Registry is
// the production implementation.
type AgentFactory interface {
	Create(id string) (agents.Agent, bool)
}

// Executor runs selected agents concurrently and collects one AgentResult
// per agent in selection order. A slow or failing agent never disturbs its
// siblings; it is recorded as a failed result.
type Executor struct {
	catalog  *catalog.Catalog
	registry AgentFactory
	tools    tools.Provider
	log      *slog.Logger
	timeout  time.Duration
}

func NewExecutor(cat *catalog.Catalog, reg AgentFactory, provider tools.Provider, log *slog.Logger, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = defaultAgentTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Executor{catalog: cat, registry: reg, tools: provider, log: log, timeout: timeout}
}

// Execute fans the agent invocations out concurrently. The returned slice
// always has len(agentIDs) entries in the same order.
func (e *Executor) Execute(ctx context.Context, agentIDs []string, query string, qctx Context, sessionID string) []AgentResult {
	results, _ := concurrent.ParallelMap(ctx, agentIDs, func(id string) (AgentResult, error) {
		return e.runOne(ctx, id, query, qctx, sessionID), nil
	}, len(agentIDs))
	return results
}

type invocation struct {
	data map[string]any
	err  error
}

func (e *Executor) runOne(ctx context.Context, id, query string, qctx Context, sessionID string) (result AgentResult) {
	start := time.Now()
	result = AgentResult{AgentName: id}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("agent setup panicked", "agent", id, "panic", r)
			result.Success = false
			result.Data = nil
			result.Error = fmt.Sprintf("agent panicked: %v", r)
			result.ExecutionTime = time.Since(start)
		}
	}()

	agent, ok := e.registry.Create(id)
	if !ok {
		result.Error = fmt.Sprintf("unknown agent %q", id)
		result.ExecutionTime = time.Since(start)
		return result
	}

	granted := map[string]tools.Tool{}
	if desc, ok := e.catalog.Lookup(id); ok && e.tools != nil {
		granted = e.tools.Grant(desc.Tools)
	}

	invCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// The invocation runs in its own goroutine so an agent that ignores
	// context cancellation still cannot hold up the fan-out join.
	done := make(chan invocation, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.log.Error("agent invocation panicked", "agent", id, "panic", r)
				done <- invocation{err: fmt.Errorf("agent panicked: %v", r)}
			}
		}()
		data, err := agent.Invoke(invCtx, agents.Input{
			Query:     query,
			Context:   qctx,
			Tools:     granted,
			SessionID: sessionID,
		})
		done <- invocation{data: data, err: err}
	}()

	select {
	case inv := <-done:
		result.ExecutionTime = time.Since(start)
		if inv.err != nil {
			result.Error = inv.err.Error()
			e.log.Warn("agent invocation failed", "agent", id, "error", inv.err, "duration", result.ExecutionTime)
			return result
		}
		result.Success = true
		result.Data = inv.data
	case <-invCtx.Done():
		result.ExecutionTime = time.Since(start)
		result.Error = invCtx.Err().Error()
		e.log.Warn("agent invocation timed out", "agent", id, "timeout", e.timeout)
	}
	return result
}
