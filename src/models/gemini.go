package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// maxTransientRetries bounds the per-call retry loop for quota and 5xx
// failures. Retries are local to one external call; the orchestration layers
// above never retry a whole agent.
const maxTransientRetries = 2

// GeminiModel talks to the Gemini API. It carries an ordered fallback list of
// model names: when the active model is rejected by the API, the next name in
// the list is tried and remembered.
type GeminiModel struct {
	client       *genai.Client
	modelNames   []string
	params       GenParams
	promptPrefix string

	mu     sync.Mutex
	active int
}

// NewGeminiModel constructs a Gemini client. modelNames is the ordered
// fallback list; the first entry is tried first.
func NewGeminiModel(ctx context.Context, apiKey string, modelNames []string, params GenParams, promptPrefix string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if len(modelNames) == 0 {
		return nil, errors.New("no Gemini model names configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiModel{
		client:       client,
		modelNames:   modelNames,
		params:       params,
		promptPrefix: promptPrefix,
	}, nil
}

// Close releases the underlying API client.
func (g *GeminiModel) Close() error { return g.client.Close() }

func (g *GeminiModel) fullPrompt(prompt string) string {
	if prefix := strings.TrimSpace(g.promptPrefix); prefix != "" {
		return prefix + "\n\n" + prompt
	}
	return prompt
}

func (g *GeminiModel) generativeModel(name string) *genai.GenerativeModel {
	gm := g.client.GenerativeModel(name)
	gm.SetTemperature(g.params.Temperature)
	if g.params.TopP > 0 {
		gm.SetTopP(g.params.TopP)
	}
	if g.params.TopK > 0 {
		gm.SetTopK(g.params.TopK)
	}
	if g.params.MaxOutputTokens > 0 {
		gm.SetMaxOutputTokens(g.params.MaxOutputTokens)
	}
	return gm
}

func (g *GeminiModel) activeIndex() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *GeminiModel) setActive(i int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = i
}

// classifyGeminiErr maps API failures onto the shared failure taxonomy.
func classifyGeminiErr(err error) *GenerateError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &GenerateError{Reason: ReasonTimeout, Err: err}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return &GenerateError{Reason: ReasonQuota, Err: err}
		case apiErr.Code >= 500:
			return &GenerateError{Reason: ReasonQuota, Err: err} // transient, retryable
		}
	}
	return &GenerateError{Reason: ReasonUnavailable, Err: err}
}

// Generate issues a completion, walking the fallback model list on rejection
// and retrying transient failures with backoff.
func (g *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	full := g.fullPrompt(prompt)

	var lastErr error
	for i := g.activeIndex(); i < len(g.modelNames); i++ {
		out, err := g.generateWith(ctx, g.modelNames[i], full)
		if err == nil {
			g.setActive(i)
			return out, nil
		}
		lastErr = err
		// Quota and timeout failures are not the model name's fault;
		// advancing the fallback list will not help.
		if Reason(err) != ReasonUnavailable {
			break
		}
	}
	return "", lastErr
}

func (g *GeminiModel) generateWith(ctx context.Context, modelName, fullPrompt string) (string, error) {
	gm := g.generativeModel(modelName)

	backoff := 400 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= maxTransientRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", classifyGeminiErr(ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		callCtx, cancel := context.WithTimeout(ctx, g.params.timeout())
		resp, err := gm.GenerateContent(callCtx, genai.Text(fullPrompt))
		cancel()
		if err != nil {
			classified := classifyGeminiErr(err)
			lastErr = classified
			if classified.Reason == ReasonQuota {
				continue
			}
			return "", classified
		}

		text := strings.TrimSpace(extractGeminiText(resp))
		if text == "" {
			return "", &GenerateError{Reason: ReasonMalformed, Err: errors.New("gemini: empty response")}
		}
		return text, nil
	}
	return "", lastErr
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

// GenerateStream relays the provider's streaming mode chunk by chunk.
func (g *GeminiModel) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	gm := g.generativeModel(g.modelNames[g.activeIndex()])
	iter := gm.GenerateContentStream(ctx, genai.Text(g.fullPrompt(prompt)))

	ch := make(chan StreamChunk, 16)
	go func() {
		defer close(ch)
		var full strings.Builder
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				ch <- StreamChunk{Done: true, FullText: full.String()}
				return
			}
			if err != nil {
				ch <- StreamChunk{Err: classifyGeminiErr(err), Done: true, FullText: full.String()}
				return
			}
			delta := extractGeminiText(resp)
			if delta == "" {
				continue
			}
			full.WriteString(delta)
			ch <- StreamChunk{Delta: delta}
		}
	}()
	return ch, nil
}

var _ Model = (*GeminiModel)(nil)
