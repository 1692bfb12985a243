package models

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIModel implements Model on the OpenAI chat completions API.
type OpenAIModel struct {
	Client       *openai.Client
	ModelName    string
	Params       GenParams
	PromptPrefix string
}

func NewOpenAIModel(apiKey, model string, params GenParams, promptPrefix string) *OpenAIModel {
	return &OpenAIModel{
		Client:       openai.NewClient(apiKey),
		ModelName:    model,
		Params:       params,
		PromptPrefix: promptPrefix,
	}
}

func (o *OpenAIModel) request(prompt string) openai.ChatCompletionRequest {
	full := prompt
	if o.PromptPrefix != "" {
		full = o.PromptPrefix + "\n" + prompt
	}
	return openai.ChatCompletionRequest{
		Model:       o.ModelName,
		Temperature: o.Params.Temperature,
		TopP:        o.Params.TopP,
		MaxTokens:   int(o.Params.MaxOutputTokens),
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: full,
		}},
	}
}

func classifyOpenAIErr(err error) *GenerateError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &GenerateError{Reason: ReasonTimeout, Err: err}
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return &GenerateError{Reason: ReasonQuota, Err: err}
	}
	return &GenerateError{Reason: ReasonUnavailable, Err: err}
}

func (o *OpenAIModel) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.Params.timeout())
	defer cancel()

	resp, err := o.Client.CreateChatCompletion(callCtx, o.request(prompt))
	if err != nil {
		return "", classifyOpenAIErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", &GenerateError{Reason: ReasonMalformed, Err: errors.New("no response from OpenAI")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (o *OpenAIModel) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	req := o.request(prompt)
	req.Stream = true
	stream, err := o.Client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, classifyOpenAIErr(err)
	}

	ch := make(chan StreamChunk, 16)
	go func() {
		defer close(ch)
		defer stream.Close()
		var full strings.Builder
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				ch <- StreamChunk{Done: true, FullText: full.String()}
				return
			}
			if err != nil {
				ch <- StreamChunk{Err: classifyOpenAIErr(err), Done: true, FullText: full.String()}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			full.WriteString(delta)
			ch <- StreamChunk{Delta: delta}
		}
	}()
	return ch, nil
}

var _ Model = (*OpenAIModel)(nil)
