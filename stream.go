package superagent

import (
	"context"
	"fmt"

	"github.com/agrimind/agrimind/src/models"
)

// StreamQuery relays incremental text from the model for one query. It is a
// direct passthrough: no selection or synthesis happens in streaming mode.
// A greeting still short-circuits as a single chunk.
func (sa *SuperAgent) StreamQuery(ctx context.Context, query string, qctx Context) (<-chan models.StreamChunk, error) {
	if reply, ok := GreetingResponse(query); ok {
		ch := make(chan models.StreamChunk, 2)
		ch <- models.StreamChunk{Delta: reply, FullText: reply}
		ch <- models.StreamChunk{FullText: reply, Done: true}
		close(ch)
		return ch, nil
	}
	if sa.model == nil {
		return nil, fmt.Errorf("streaming requires a configured model")
	}
	return sa.model.GenerateStream(ctx, sa.streamPrompt(query, qctx))
}

func (sa *SuperAgent) streamPrompt(query string, qctx Context) string {
	prompt := "You are an agricultural advisor for farmers. Answer practically and concisely.\n\nQuestion: " + query
	if instr := translationInstruction(sa.queryLocale(qctx)); instr != "" {
		prompt += "\n" + instr
	}
	return prompt
}
