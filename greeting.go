package superagent

import "strings"

// Phrase sets for the small-talk shortcut. Exact sets match the whole
// trimmed query; contains sets match anywhere in it.
var (
	greetingExact   = []string{"hi", "hello", "hey", "namaste", "namaskar"}
	smalltalkPhrase = []string{"how are you", "what's up", "whats up"}
	thanksPhrase    = []string{"thank you", "thanks", "dhanyavaad"}
	farewellPhrase  = []string{"bye", "goodbye", "see you", "good night"}
)

const (
	greetingReply  = "Namaste! I'm your farming assistant. Ask me anything about your crops, soil, weather, irrigation, or market prices."
	smalltalkReply = "I'm doing great and ready to help with your farm! What would you like to know about your crops today?"
	thanksReply    = "You're most welcome! Happy to help anytime. Wishing you a great harvest!"
	farewellReply  = "Goodbye! Come back whenever you need farming advice. Wishing you healthy crops!"
)

// GreetingResponse returns a canned reply when the query is pure small talk,
// letting the pipeline skip selection, execution, and synthesis entirely.
func GreetingResponse(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.Trim(q, "!.?")
	if q == "" {
		return "", false
	}

	for _, phrase := range greetingExact {
		if q == phrase {
			return greetingReply, true
		}
	}
	for _, phrase := range smalltalkPhrase {
		if strings.Contains(q, phrase) {
			return smalltalkReply, true
		}
	}
	for _, phrase := range thanksPhrase {
		if q == phrase || strings.HasPrefix(q, phrase+" ") {
			return thanksReply, true
		}
	}
	for _, phrase := range farewellPhrase {
		if q == phrase {
			return farewellReply, true
		}
	}
	return "", false
}
