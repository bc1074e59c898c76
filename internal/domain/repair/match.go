package repair

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MatchStrategy decides whether captured stdout satisfies an expectation
type MatchStrategy string

const (
	MatchContains   MatchStrategy = "contains"   // NFC, trimmed, substring
	MatchExact      MatchStrategy = "exact"      // NFC, trimmed, equality
	MatchNormalized MatchStrategy = "normalized" // NFKC, case folded, whitespace collapsed, substring
)

// DefaultMatchStrategy is used when none is configured
const DefaultMatchStrategy = MatchContains

// ParseMatchStrategy parses a configured strategy name
func ParseMatchStrategy(s string) (MatchStrategy, error) {
	switch MatchStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchContains:
		return MatchContains, nil
	case MatchExact:
		return MatchExact, nil
	case MatchNormalized:
		return MatchNormalized, nil
	default:
		return "", fmt.Errorf("unknown match strategy %q (allowed: contains, exact, normalized)", s)
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Matches reports whether stdout satisfies expected under the strategy.
// An empty expectation is always satisfied.
func (m MatchStrategy) Matches(stdout, expected string) bool {
	want := strings.TrimSpace(expected)
	if want == "" {
		return true
	}
	got := strings.TrimSpace(stdout)

	switch m {
	case MatchExact:
		return norm.NFC.String(got) == norm.NFC.String(want)
	case MatchNormalized:
		return strings.Contains(foldForMatch(got), foldForMatch(want))
	default:
		return strings.Contains(norm.NFC.String(got), norm.NFC.String(want))
	}
}

func foldForMatch(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// expectationPatterns pull a stated output out of free-form intent text,
// e.g. `should print 5` or `expected output: "hello"`.
var expectationPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?i)\\bshould\\s+(?:print|output|display|show|return)\\s+[\"'`]([^\"'`]+)[\"'`]"),
	regexp.MustCompile(`(?i)\bshould\s+(?:print|output|display|show|return)\s+([^\s,;!?]+)`),
	regexp.MustCompile("(?i)\\bexpected\\s+output\\s*(?:is|:|=)\\s*[\"'`]?([^\"'`\\n]+?)[\"'`]?\\s*$"),
}

// vagueWords are bare captures that describe rather than state an output
var vagueWords = map[string]bool{
	"the": true, "a": true, "an": true, "correct": true, "right": true,
	"its": true, "their": true, "something": true, "nothing": true,
}

// ExtractExpectation returns the expected output stated in intent, or "".
// Quoted forms win over bare words; a trailing period is dropped.
func ExtractExpectation(intent string) string {
	for _, re := range expectationPatterns {
		m := re.FindStringSubmatch(intent)
		if m == nil {
			continue
		}
		got := strings.TrimRight(strings.TrimSpace(m[1]), ".")
		if got == "" || vagueWords[strings.ToLower(got)] {
			continue
		}
		return got
	}
	return ""
}
