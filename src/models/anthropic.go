package models

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicModel implements Model on Anthropic's Messages API.
type AnthropicModel struct {
	Client       *anthropic.Client
	ModelName    string
	Params       GenParams
	PromptPrefix string
}

func NewAnthropicModel(apiKey, model string, params GenParams, promptPrefix string) *AnthropicModel {
	cl := anthropic.NewClient(anthropicopt.WithAPIKey(apiKey))
	return &AnthropicModel{
		Client:       &cl,
		ModelName:    model,
		Params:       params,
		PromptPrefix: promptPrefix,
	}
}

func (a *AnthropicModel) Generate(ctx context.Context, prompt string) (string, error) {
	full := prompt
	if a.PromptPrefix != "" {
		full = a.PromptPrefix + "\n\n" + prompt
	}

	maxTokens := int64(a.Params.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	callCtx, cancel := context.WithTimeout(ctx, a.Params.timeout())
	defer cancel()

	msg, err := a.Client.Messages.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.ModelName),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(full)),
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &GenerateError{Reason: ReasonTimeout, Err: err}
		}
		return "", &GenerateError{Reason: ReasonUnavailable, Err: err}
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", &GenerateError{Reason: ReasonMalformed, Err: errors.New("anthropic: empty response")}
	}
	return out, nil
}

// GenerateStream wraps the completed generation into a single chunk.
func (a *AnthropicModel) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	text, err := a.Generate(ctx, prompt)
	return singleChunkStream(text, err), nil
}

var _ Model = (*AnthropicModel)(nil)
