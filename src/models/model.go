package models

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// StreamChunk is one increment of a streaming completion.
type StreamChunk struct {
	Delta    string
	FullText string
	Done     bool
	Err      error
}

// Model generates text completions for prompts. Implementations must treat
// failures as expected outcomes: callers always pattern-match on the failure
// reason and fall back rather than propagate.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error)
}

// FailureReason classifies why a generation call produced no usable output.
type FailureReason string

const (
	ReasonUnavailable FailureReason = "unavailable"
	ReasonQuota       FailureReason = "quota"
	ReasonTimeout     FailureReason = "timeout"
	ReasonMalformed   FailureReason = "malformed_output"
)

// GenerateError wraps a provider failure with its classified reason.
type GenerateError struct {
	Reason FailureReason
	Err    error
}

func (e *GenerateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generate failed: %s", e.Reason)
	}
	return fmt.Sprintf("generate failed (%s): %v", e.Reason, e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// Reason extracts the failure reason from an error chain. Unclassified errors
// report ReasonUnavailable.
func Reason(err error) FailureReason {
	var ge *GenerateError
	if errors.As(err, &ge) {
		return ge.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return ReasonUnavailable
}

// GenParams holds the generation knobs shared by all providers.
type GenParams struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
	RequestTimeout  time.Duration
}

// Fingerprint renders the parameters into a stable string for cache keys.
func (p GenParams) Fingerprint() string {
	return fmt.Sprintf("t=%.2f|p=%.2f|k=%d|m=%d", p.Temperature, p.TopP, p.TopK, p.MaxOutputTokens)
}

func (p GenParams) timeout() time.Duration {
	if p.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return p.RequestTimeout
}

// singleChunkStream wraps a completed generation into a one-chunk stream.
func singleChunkStream(text string, err error) <-chan StreamChunk {
	ch := make(chan StreamChunk, 1)
	if err != nil {
		ch <- StreamChunk{Err: err, Done: true}
	} else {
		ch <- StreamChunk{Delta: text, FullText: text, Done: true}
	}
	close(ch)
	return ch
}
