package models

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want FailureReason
	}{
		{&GenerateError{Reason: ReasonQuota}, ReasonQuota},
		{&GenerateError{Reason: ReasonMalformed, Err: errors.New("bad json")}, ReasonMalformed},
		{context.DeadlineExceeded, ReasonTimeout},
		{errors.New("plain failure"), ReasonUnavailable},
	}
	for _, tt := range tests {
		if got := Reason(tt.err); got != tt.want {
			t.Errorf("Reason(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestReason_Wrapped(t *testing.T) {
	inner := &GenerateError{Reason: ReasonQuota, Err: errors.New("429")}
	wrapped := errors.Join(errors.New("outer"), inner)
	if got := Reason(wrapped); got != ReasonQuota {
		t.Fatalf("Reason(wrapped) = %s, want quota", got)
	}
}

func TestGenParams_Fingerprint(t *testing.T) {
	a := GenParams{Temperature: 0.7, TopP: 0.9, TopK: 40, MaxOutputTokens: 1024}
	b := GenParams{Temperature: 0.2, TopP: 0.9, TopK: 40, MaxOutputTokens: 1024}
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("different parameters must fingerprint differently")
	}
	if a.Fingerprint() != a.Fingerprint() {
		t.Fatal("fingerprint must be stable")
	}
}

func TestDummyModel_EchoesLastLine(t *testing.T) {
	m := NewDummyModel("Echo:")
	out, err := m.Generate(context.Background(), "system stuff\n\nQuestion: when to sow wheat\n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "when to sow wheat") {
		t.Fatalf("got %q", out)
	}
}

func TestDummyModel_StreamReassembles(t *testing.T) {
	m := NewDummyModel("")
	ch, err := m.GenerateStream(context.Background(), "one two three")
	if err != nil {
		t.Fatal(err)
	}
	var deltas strings.Builder
	var full string
	for chunk := range ch {
		deltas.WriteString(chunk.Delta)
		if chunk.Done {
			full = chunk.FullText
		}
	}
	if deltas.String() != full {
		t.Fatalf("deltas %q do not reassemble to full text %q", deltas.String(), full)
	}
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	if _, err := NewProvider(context.Background(), ProviderOptions{Provider: "mystery"}); err == nil {
		t.Fatal("unknown provider should error")
	}
}
