package models

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// countingModel records how many times Generate reaches the backend.
type countingModel struct {
	output string
	calls  int
}

func (m *countingModel) Generate(context.Context, string) (string, error) {
	m.calls++
	return m.output, nil
}

func (m *countingModel) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	text, _ := m.Generate(ctx, prompt)
	return singleChunkStream(text, nil), nil
}

func TestCachedModel_SecondCallHitsCache(t *testing.T) {
	backend := &countingModel{output: "use drip irrigation"}
	cm := NewCachedModel(backend, 16, time.Hour, "fp", "")

	first, err := cm.Generate(context.Background(), "how to water tomatoes")
	if err != nil {
		t.Fatal(err)
	}
	second, err := cm.Generate(context.Background(), "how to water tomatoes")
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Fatalf("cached call diverged: %q vs %q", first, second)
	}
	if backend.calls != 1 {
		t.Fatalf("backend called %d times, want 1", backend.calls)
	}
}

func TestCachedModel_DistinctPromptsMiss(t *testing.T) {
	backend := &countingModel{output: "answer"}
	cm := NewCachedModel(backend, 16, time.Hour, "fp", "")

	cm.Generate(context.Background(), "prompt one")
	cm.Generate(context.Background(), "prompt two")

	if backend.calls != 2 {
		t.Fatalf("backend called %d times, want 2", backend.calls)
	}
}

func TestCachedModel_FingerprintSeparatesEntries(t *testing.T) {
	backend := &countingModel{output: "answer"}
	a := NewCachedModel(backend, 16, time.Hour, "model-a|t=0.70", "")
	b := NewCachedModel(backend, 16, time.Hour, "model-b|t=0.20", "")

	a.Generate(context.Background(), "same prompt")
	b.Generate(context.Background(), "same prompt")

	if backend.calls != 2 {
		t.Fatalf("different fingerprints must not share entries; backend called %d times", backend.calls)
	}
}

func TestCachedModel_PersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	backend := &countingModel{output: "sow in early june"}
	cm := NewCachedModel(backend, 16, time.Hour, "fp", path)
	if _, err := cm.Generate(context.Background(), "when to sow cotton"); err != nil {
		t.Fatal(err)
	}

	reopened := NewCachedModel(backend, 16, time.Hour, "fp", path)
	got, err := reopened.Generate(context.Background(), "when to sow cotton")
	if err != nil {
		t.Fatal(err)
	}
	if got != "sow in early june" {
		t.Fatalf("got %q", got)
	}
	if backend.calls != 1 {
		t.Fatalf("persisted entry should avoid a second backend call, got %d calls", backend.calls)
	}
}

func TestCachedModel_StreamCachesFullText(t *testing.T) {
	backend := &countingModel{output: "full streamed answer"}
	cm := NewCachedModel(backend, 16, time.Hour, "fp", "")

	ch, err := cm.GenerateStream(context.Background(), "prompt")
	if err != nil {
		t.Fatal(err)
	}
	for range ch {
	}

	got, err := cm.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "full streamed answer" {
		t.Fatalf("got %q", got)
	}
	if backend.calls != 1 {
		t.Fatalf("backend called %d times, want 1", backend.calls)
	}
}
