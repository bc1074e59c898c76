package repair

// Verdict is the classified outcome of one execution
type Verdict string

const (
	VerdictSuccess       Verdict = "success"        // Ran cleanly and met the expectation
	VerdictCrash         Verdict = "crash"          // Abnormal exit with a stderr signal
	VerdictTimeout       Verdict = "timeout"        // Killed by the sandbox deadline
	VerdictLogicMismatch Verdict = "logic_mismatch" // Ran cleanly but printed the wrong thing
	VerdictUnknown       Verdict = "unknown"        // No usable diagnostic signal
)

// String returns the string representation of the verdict
func (v Verdict) String() string {
	return string(v)
}

// IsSuccess returns true only for VerdictSuccess
func (v Verdict) IsSuccess() bool {
	return v == VerdictSuccess
}

// IsValid returns true if the verdict is one of the known values
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictSuccess, VerdictCrash, VerdictTimeout, VerdictLogicMismatch, VerdictUnknown:
		return true
	default:
		return false
	}
}

// ErrorCode maps a failing verdict onto the error taxonomy.
// Success and unknown have no code.
func (v Verdict) ErrorCode() string {
	switch v {
	case VerdictCrash:
		return CodeSandboxCrash
	case VerdictTimeout:
		return CodeSandboxTimeout
	case VerdictLogicMismatch:
		return CodeLogicMismatch
	default:
		return ""
	}
}
