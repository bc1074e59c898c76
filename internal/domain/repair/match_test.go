package repair

import "testing"

func TestMatchStrategy_Matches(t *testing.T) {
	tests := []struct {
		name     string
		strategy MatchStrategy
		stdout   string
		expected string
		want     bool
	}{
		{"contains substring", MatchContains, "The answer is 5\n", "5", true},
		{"contains miss", MatchContains, "4\n", "5", false},
		{"contains empty expectation", MatchContains, "", "", true},
		{"exact trims whitespace", MatchExact, "  5\n", "5", true},
		{"exact rejects extra text", MatchExact, "answer 5", "5", false},
		{"exact NFC equivalence", MatchExact, "caf\u00e9", "cafe\u0301", true},
		{"normalized folds case", MatchNormalized, "HELLO   World", "hello world", true},
		{"normalized fullwidth digits", MatchNormalized, "５", "5", true},
		{"contains is case sensitive", MatchContains, "HELLO", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.strategy.Matches(tt.stdout, tt.expected); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.stdout, tt.expected, got, tt.want)
			}
		})
	}
}

func TestParseMatchStrategy(t *testing.T) {
	for in, want := range map[string]MatchStrategy{
		"":           MatchContains,
		"contains":   MatchContains,
		" EXACT ":    MatchExact,
		"normalized": MatchNormalized,
	} {
		got, err := ParseMatchStrategy(in)
		if err != nil {
			t.Fatalf("ParseMatchStrategy(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseMatchStrategy(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseMatchStrategy("fuzzy"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestExtractExpectation(t *testing.T) {
	tests := []struct {
		intent string
		want   string
	}{
		{"the sum is wrong, it should print 5", "5"},
		{"It should print 5.", "5"},
		{`should output "hello world" but prints nothing`, "hello world"},
		{"Fix @calc.py, should return 42 not 41", "42"},
		{"expected output: [[19, 22], [43, 50]]", "[[19, 22], [43, 50]]"},
		{"it should print the total", ""},
		{"fix the recursion error in @script.py", ""},
	}

	for _, tt := range tests {
		t.Run(tt.intent, func(t *testing.T) {
			if got := ExtractExpectation(tt.intent); got != tt.want {
				t.Errorf("ExtractExpectation(%q) = %q, want %q", tt.intent, got, tt.want)
			}
		})
	}
}
