package repair

// Outcome is the terminal result of a session
type Outcome string

const (
	OutcomePending       Outcome = "pending"        // Session still running
	OutcomeSuccess       Outcome = "success"        // A run met the expectation
	OutcomeExhausted     Outcome = "exhausted"      // Attempt budget used without success
	OutcomeAdapterFailed Outcome = "adapter_failed" // Patch service failed; no retry
	OutcomeFailed        Outcome = "failed"         // Sandbox start, backup or apply I/O failure
	OutcomeCancelled     Outcome = "cancelled"      // Stopped by the caller
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	return string(o)
}

// IsTerminal returns true once the session has finished
func (o Outcome) IsTerminal() bool {
	return o != OutcomePending && o != ""
}

// IsSuccess returns true only for OutcomeSuccess
func (o Outcome) IsSuccess() bool {
	return o == OutcomeSuccess
}

// Stop reasons recorded next to a terminal outcome
const (
	StopReasonBudget         = "attempt_budget_used"
	StopReasonUnchangedPatch = "unchanged_patch"
)
