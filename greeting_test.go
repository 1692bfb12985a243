package superagent

import "testing"

func TestGreetingResponse(t *testing.T) {
	tests := []struct {
		query string
		match bool
	}{
		{"hi", true},
		{"Hello", true},
		{"  NAMASTE  ", true},
		{"hey!", true},
		{"how are you doing", true},
		{"thanks", true},
		{"thank you so much", true},
		{"bye", true},
		{"good night", true},
		{"hi, what fertilizer for cotton?", false},
		{"goodbye my wheat crop is dying", false},
		{"What is the weather like?", false},
		{"", false},
	}
	for _, tt := range tests {
		reply, ok := GreetingResponse(tt.query)
		if ok != tt.match {
			t.Errorf("GreetingResponse(%q) matched = %v, want %v", tt.query, ok, tt.match)
		}
		if ok && reply == "" {
			t.Errorf("GreetingResponse(%q) returned empty reply", tt.query)
		}
	}
}

func TestGreetingResponse_DistinctReplies(t *testing.T) {
	greet, _ := GreetingResponse("hi")
	thanks, _ := GreetingResponse("thanks")
	bye, _ := GreetingResponse("bye")
	small, _ := GreetingResponse("how are you")

	replies := map[string]bool{greet: true, thanks: true, bye: true, small: true}
	if len(replies) != 4 {
		t.Fatalf("expected four distinct canned replies, got %d", len(replies))
	}
}
