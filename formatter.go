package superagent

import (
	"fmt"
	"strings"
)

const emptyAnswerFallback = "I understand your question, but I need more information to provide a helpful answer. Could you please provide more details about your crop, location, or specific concern?"

// Formatter renders a SynthesizedAnswer as one display string. It is a pure
// function of its input and cannot fail.
type Formatter struct {
	// Conversational switches the section headers from bold markdown to a
	// spoken register.
	Conversational bool
}

func (f Formatter) Format(a SynthesizedAnswer) string {
	var sections []string

	if answer := strings.TrimSpace(a.Answer); answer != "" {
		sections = append(sections, answer)
	}
	if len(a.Recommendations) > 0 {
		sections = append(sections, f.numbered(f.header("Here's what I recommend:", "**Recommendations:**"), a.Recommendations))
	}
	if len(a.Warnings) > 0 {
		sections = append(sections, f.bulleted(f.header("⚠️ Important things to note:", "**Important Warnings:**"), a.Warnings))
	}
	if len(a.NextSteps) > 0 {
		sections = append(sections, f.numbered(f.header("Next, you should:", "**Next Steps:**"), a.NextSteps))
	}

	if len(sections) == 0 {
		return emptyAnswerFallback
	}
	return strings.Join(sections, "\n\n")
}

func (f Formatter) header(conversational, bold string) string {
	if f.Conversational {
		return conversational
	}
	return bold
}

func (f Formatter) numbered(header string, items []string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for i, item := range items {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, item)
	}
	return sb.String()
}

func (f Formatter) bulleted(header string, items []string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, item := range items {
		sb.WriteString("\n• ")
		sb.WriteString(item)
	}
	return sb.String()
}
