package superagent

import (
	"context"
	"log/slog"
	"time"

	"github.com/agrimind/agrimind/src/catalog"
	"github.com/agrimind/agrimind/src/models"
	"github.com/agrimind/agrimind/src/tools"
)

// Options configure a SuperAgent. Zero values fall back to sane defaults.
type Options struct {
	// Model backs agent selection, synthesis, and the advisors themselves.
	// A nil model forces fully deterministic operation.
	Model models.Model
	// LowLLM forces deterministic synthesis even when a model is present.
	LowLLM bool
	// AgentTimeout bounds each agent invocation. Defaults to 30s.
	AgentTimeout time.Duration
	// MaxAgents bounds every selection stage's output. Defaults to 5.
	MaxAgents int
	// Locale drives translation in model-assisted synthesis, e.g. "hi-IN".
	Locale string
	// Conversational switches the formatter to spoken-register headers.
	Conversational bool
	Logger         *slog.Logger
}

// SuperAgent is the query pipeline: greeting shortcut, agent selection,
// concurrent execution, synthesis, and formatting.
type SuperAgent struct {
	catalog     *catalog.Catalog
	selector    *Selector
	executor    *Executor
	synthesizer *Synthesizer
	formatter   Formatter
	model       models.Model
	locale      string
	log         *slog.Logger
}

func New(cat *catalog.Catalog, reg AgentFactory, provider tools.Provider, opts Options) *SuperAgent {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &SuperAgent{
		catalog:     cat,
		selector:    NewSelector(cat, opts.Model, log, opts.MaxAgents),
		executor:    NewExecutor(cat, reg, provider, log, opts.AgentTimeout),
		synthesizer: NewSynthesizer(opts.Model, log, opts.LowLLM),
		formatter:   Formatter{Conversational: opts.Conversational},
		model:       opts.Model,
		locale:      opts.Locale,
		log:         log,
	}
}

// Catalog exposes the agent registry backing this instance.
func (sa *SuperAgent) Catalog() *catalog.Catalog { return sa.catalog }

// ProcessQuery runs the full pipeline for one validated query. It never
// returns an error; any internal fault degrades to an apologetic response.
func (sa *SuperAgent) ProcessQuery(ctx context.Context, query string, qctx Context, sessionID string) (resp Response) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			sa.log.Error("query pipeline panicked", "session", sessionID, "panic", r)
			resp = sa.apologeticResponse(query, sessionID, start)
		}
	}()

	if reply, ok := GreetingResponse(query); ok {
		sa.log.Info("greeting shortcut", "session", sessionID)
		return Response{
			Success:        true,
			SessionID:      sessionID,
			Query:          query,
			Answer:         SynthesizedAnswer{Answer: reply, Meta: Meta{AgentsUsed: []string{}, Confidence: 1.0}},
			NaturalText:    reply,
			SelectedAgents: []string{},
			ProcessingTime: time.Since(start),
		}
	}

	selected := sa.selector.Select(ctx, query, qctx)
	sa.log.Info("agents selected", "session", sessionID, "agents", selected)

	results := sa.executor.Execute(ctx, selected, query, qctx, sessionID)

	answer := sa.synthesizer.Synthesize(ctx, query, results, sa.queryLocale(qctx))
	text := sa.formatter.Format(answer)

	resp = Response{
		Success:        true,
		SessionID:      sessionID,
		Query:          query,
		Answer:         answer,
		NaturalText:    text,
		SelectedAgents: selected,
		AgentResults:   results,
		ProcessingTime: time.Since(start),
	}
	sa.log.Info("query processed", "session", sessionID,
		"agents", len(selected), "confidence", answer.Meta.Confidence,
		"duration", resp.ProcessingTime)
	return resp
}

// queryLocale lets a per-query language hint override the configured locale.
func (sa *SuperAgent) queryLocale(qctx Context) string {
	if qctx != nil {
		if v, ok := qctx["language"].(string); ok && v != "" {
			return v
		}
	}
	return sa.locale
}

func (sa *SuperAgent) apologeticResponse(query, sessionID string, start time.Time) Response {
	const msg = "Sorry, something went wrong while preparing your answer. Please try asking again in a moment."
	return Response{
		Success:        false,
		SessionID:      sessionID,
		Query:          query,
		Answer:         SynthesizedAnswer{Answer: msg, Meta: Meta{AgentsUsed: []string{}, Confidence: 0}},
		NaturalText:    msg,
		SelectedAgents: []string{},
		ProcessingTime: time.Since(start),
	}
}
