package superagent

import (
	"strings"
	"testing"
)

func TestFormatter_SectionOrder(t *testing.T) {
	answer := SynthesizedAnswer{
		Answer:          "Apply urea in split doses.",
		Recommendations: []string{"Split nitrogen across stages", "Base doses on a soil test"},
		Warnings:        []string{"Avoid application before heavy rain"},
		NextSteps:       []string{"Procure stock this week"},
	}

	got := Formatter{}.Format(answer)

	positions := []int{
		strings.Index(got, "Apply urea in split doses."),
		strings.Index(got, "**Recommendations:**"),
		strings.Index(got, "**Important Warnings:**"),
		strings.Index(got, "**Next Steps:**"),
	}
	for i, pos := range positions {
		if pos == -1 {
			t.Fatalf("section %d missing from output:\n%s", i, got)
		}
		if i > 0 && positions[i-1] >= pos {
			t.Fatalf("sections out of order at %d:\n%s", i, got)
		}
	}
	if !strings.Contains(got, "1. Split nitrogen across stages") {
		t.Errorf("recommendations not numbered:\n%s", got)
	}
	if !strings.Contains(got, "• Avoid application before heavy rain") {
		t.Errorf("warnings not bulleted:\n%s", got)
	}
}

func TestFormatter_ConversationalHeaders(t *testing.T) {
	answer := SynthesizedAnswer{
		Answer:          "Water early morning.",
		Recommendations: []string{"Check the drip lines"},
		Warnings:        []string{"Wind is high today"},
		NextSteps:       []string{"Recheck tomorrow"},
	}

	got := Formatter{Conversational: true}.Format(answer)

	for _, header := range []string{"Here's what I recommend:", "⚠️ Important things to note:", "Next, you should:"} {
		if !strings.Contains(got, header) {
			t.Errorf("missing conversational header %q:\n%s", header, got)
		}
	}
	if strings.Contains(got, "**") {
		t.Errorf("conversational output should not use bold headers:\n%s", got)
	}
}

func TestFormatter_EmptySections(t *testing.T) {
	got := Formatter{}.Format(SynthesizedAnswer{Answer: "Just an answer."})
	if got != "Just an answer." {
		t.Fatalf("got %q", got)
	}

	got = Formatter{}.Format(SynthesizedAnswer{})
	if got != emptyAnswerFallback {
		t.Fatalf("empty answer should use the fallback, got %q", got)
	}
}

func TestFormatter_NoTemplatePlaceholders(t *testing.T) {
	answer := SynthesizedAnswer{
		Answer:          "Use certified seeds.",
		Recommendations: []string{"Check germination rate"},
	}
	got := Formatter{}.Format(answer)
	for _, marker := range []string{"%s", "%d", "%v", "{{", "}}"} {
		if strings.Contains(got, marker) {
			t.Fatalf("unresolved placeholder %q in output:\n%s", marker, got)
		}
	}
}
