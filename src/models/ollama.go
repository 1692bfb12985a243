package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// OllamaModel implements Model against a local Ollama daemon.
type OllamaModel struct {
	Client       *ollama.Client
	ModelName    string
	Params       GenParams
	PromptPrefix string
}

func NewOllamaModel(host, model string, params GenParams, promptPrefix string) (*OllamaModel, error) {
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	httpClient := &http.Client{Timeout: params.timeout()}
	return &OllamaModel{
		Client:       ollama.NewClient(u, httpClient),
		ModelName:    model,
		Params:       params,
		PromptPrefix: promptPrefix,
	}, nil
}

func (o *OllamaModel) fullPrompt(prompt string) string {
	if o.PromptPrefix != "" {
		return o.PromptPrefix + "\n\n" + prompt
	}
	return prompt
}

func (o *OllamaModel) options() map[string]any {
	opts := map[string]any{"temperature": float64(o.Params.Temperature)}
	if o.Params.TopP > 0 {
		opts["top_p"] = float64(o.Params.TopP)
	}
	if o.Params.TopK > 0 {
		opts["top_k"] = int(o.Params.TopK)
	}
	if o.Params.MaxOutputTokens > 0 {
		opts["num_predict"] = int(o.Params.MaxOutputTokens)
	}
	return opts
}

func (o *OllamaModel) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.Params.timeout())
	defer cancel()

	var text strings.Builder
	req := &ollama.GenerateRequest{
		Model:   o.ModelName,
		Prompt:  o.fullPrompt(prompt),
		Options: o.options(),
	}
	err := o.Client.Generate(callCtx, req, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &GenerateError{Reason: ReasonTimeout, Err: err}
		}
		return "", &GenerateError{Reason: ReasonUnavailable, Err: err}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", &GenerateError{Reason: ReasonMalformed, Err: errors.New("ollama: empty response")}
	}
	return out, nil
}

func (o *OllamaModel) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	ch := make(chan StreamChunk, 16)
	go func() {
		defer close(ch)
		var full strings.Builder
		req := &ollama.GenerateRequest{
			Model:   o.ModelName,
			Prompt:  o.fullPrompt(prompt),
			Options: o.options(),
		}
		err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
			if gr.Response != "" {
				full.WriteString(gr.Response)
				ch <- StreamChunk{Delta: gr.Response}
			}
			return nil
		})
		if err != nil {
			ch <- StreamChunk{Err: &GenerateError{Reason: ReasonUnavailable, Err: err}, Done: true, FullText: full.String()}
			return
		}
		ch <- StreamChunk{Done: true, FullText: full.String()}
	}()
	return ch, nil
}

var _ Model = (*OllamaModel)(nil)
