package models

import (
	"context"
	"fmt"
	"strings"
)

// DummyModel is a lightweight model implementation useful for local testing
// without API calls. It echoes the last non-empty prompt line.
type DummyModel struct {
	Prefix string
}

func NewDummyModel(prefix string) *DummyModel {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy response:"
	}
	return &DummyModel{Prefix: prefix}
}

func (d *DummyModel) Generate(_ context.Context, prompt string) (string, error) {
	lines := strings.Split(prompt, "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(lines[i])
		if candidate != "" {
			last = candidate
			break
		}
	}
	if last == "" {
		last = "<empty prompt>"
	}
	return fmt.Sprintf("%s %s", d.Prefix, last), nil
}

// GenerateStream simulates streaming by splitting the response into
// word-level chunks.
func (d *DummyModel) GenerateStream(_ context.Context, prompt string) (<-chan StreamChunk, error) {
	text, _ := d.Generate(context.Background(), prompt)

	ch := make(chan StreamChunk, 16)
	go func() {
		defer close(ch)
		words := strings.Fields(text)
		var sb strings.Builder
		for i, word := range words {
			if i > 0 {
				word = " " + word
			}
			sb.WriteString(word)
			ch <- StreamChunk{Delta: word}
		}
		ch <- StreamChunk{Done: true, FullText: sb.String()}
	}()
	return ch, nil
}

var _ Model = (*DummyModel)(nil)
