package repair

import (
	"strings"
	"time"
)

// Classification is a verdict plus the text that should be forwarded to
// the repair prompt.
type Classification struct {
	Verdict     Verdict `json:"verdict"`
	Diagnostic  string  `json:"diagnostic,omitempty"`
	Expectation string  `json:"expectation,omitempty"`
}

// Classify turns a raw execution result into a verdict. Rules, in order:
//
//  1. killed by timeout                          -> timeout
//  2. abnormal exit with non-empty stderr        -> crash (stderr forwarded)
//  3. clean exit, expectation not met            -> logic_mismatch (stdout forwarded)
//  4. clean exit, expectation absent or met      -> success
//  5. anything else (abnormal exit, empty stderr) -> unknown
func Classify(result ExecutionResult, expectation string, strategy MatchStrategy) Classification {
	c := Classification{Expectation: expectation}

	switch {
	case result.TimedOut():
		c.Verdict = VerdictTimeout
		c.Diagnostic = timeoutDiagnostic(result)
	case !result.ExitedCleanly() && hasText(result.Stderr):
		c.Verdict = VerdictCrash
		c.Diagnostic = result.Stderr
	case result.ExitedCleanly() && !strategy.Matches(result.Stdout, expectation):
		c.Verdict = VerdictLogicMismatch
		c.Diagnostic = result.Stdout
	case result.ExitedCleanly():
		c.Verdict = VerdictSuccess
	default:
		c.Verdict = VerdictUnknown
	}
	return c
}

func timeoutDiagnostic(result ExecutionResult) string {
	msg := "Execution timed out after " + result.Duration.Round(time.Millisecond).String() + " (possible infinite loop)"
	if hasText(result.Stderr) {
		msg += "\n" + result.Stderr
	}
	return msg
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Excerpt returns the last non-empty line of a diagnostic, capped at max runes.
func Excerpt(diagnostic string, max int) string {
	lines := strings.Split(diagnostic, "\n")
	line := ""
	for i := len(lines) - 1; i >= 0; i-- {
		if hasText(lines[i]) {
			line = strings.TrimSpace(lines[i])
			break
		}
	}
	runes := []rune(line)
	if max > 0 && len(runes) > max {
		return string(runes[:max-1]) + "…"
	}
	return line
}
