package repair

import "fmt"

// State is a node of the repair loop state machine
type State string

const (
	StateInit          State = "init"
	StateExecuting     State = "executing"
	StateClassifying   State = "classifying"
	StateNeedsPatch    State = "needs_patch"
	StatePatching      State = "patching"
	StateApplying      State = "applying"
	StateSuccess       State = "success"
	StateExhausted     State = "exhausted"
	StateAdapterFailed State = "adapter_failed"
	StateFailed        State = "failed"
	StateCancelled     State = "cancelled"
)

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsTerminal returns true for states without outgoing transitions
func (s State) IsTerminal() bool {
	switch s {
	case StateSuccess, StateExhausted, StateAdapterFailed, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// Outcome maps a terminal state to the session outcome
func (s State) Outcome() Outcome {
	switch s {
	case StateSuccess:
		return OutcomeSuccess
	case StateExhausted:
		return OutcomeExhausted
	case StateAdapterFailed:
		return OutcomeAdapterFailed
	case StateFailed:
		return OutcomeFailed
	case StateCancelled:
		return OutcomeCancelled
	default:
		return OutcomePending
	}
}

// EventKind is an input to the state machine
type EventKind string

const (
	EventStarted        EventKind = "started"         // Original captured
	EventExecuted       EventKind = "executed"        // Sandbox returned a result
	EventExecFailed     EventKind = "exec_failed"     // Sandbox could not run the code
	EventClassified     EventKind = "classified"      // Carries the verdict
	EventProceed        EventKind = "proceed"         // Budget check acknowledged
	EventPatchReady     EventKind = "patch_ready"     // Service returned a usable candidate
	EventPatchUnchanged EventKind = "patch_unchanged" // Candidate equals the current code
	EventAdapterFailed  EventKind = "adapter_failed"  // Service returned AdapterError
	EventApplied        EventKind = "applied"         // Candidate written to the target
	EventApplyFailed    EventKind = "apply_failed"    // Backup or write failed
	EventCancelled      EventKind = "cancelled"       // Caller stopped the session
)

// Event is one state machine input
type Event struct {
	Kind    EventKind
	Verdict Verdict
}

// Effect is the side effect the driver must perform after a transition
type Effect string

const (
	EffectNone           Effect = "none"
	EffectExecute        Effect = "execute"
	EffectClassify       Effect = "classify"
	EffectCheckBudget    Effect = "check_budget"
	EffectRequestPatch   Effect = "request_patch"
	EffectBackupAndApply Effect = "backup_and_apply"
	EffectApply          Effect = "apply"
	EffectFinish         Effect = "finish"
)

// Machine is the pure state of the repair loop. Attempt is the index of the
// attempt currently in progress (0 before the first execution).
type Machine struct {
	State       State
	Attempt     int
	MaxAttempts int
	BackupTaken bool
	StopReason  string
}

// NewMachine returns a machine in StateInit
func NewMachine(maxAttempts int) Machine {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return Machine{State: StateInit, MaxAttempts: maxAttempts}
}

// Next applies ev and returns the new machine plus the effect to perform.
// It never mutates m. Invalid (state, event) pairs return an error.
func (m Machine) Next(ev Event) (Machine, Effect, error) {
	if m.State.IsTerminal() {
		return m, EffectNone, m.invalid(ev)
	}
	if ev.Kind == EventCancelled {
		m.State = StateCancelled
		return m, EffectFinish, nil
	}

	switch m.State {
	case StateInit:
		if ev.Kind == EventStarted {
			m.State = StateExecuting
			m.Attempt = 1
			return m, EffectExecute, nil
		}

	case StateExecuting:
		switch ev.Kind {
		case EventExecuted:
			m.State = StateClassifying
			return m, EffectClassify, nil
		case EventExecFailed:
			m.State = StateFailed
			return m, EffectFinish, nil
		}

	case StateClassifying:
		if ev.Kind == EventClassified {
			if !ev.Verdict.IsValid() {
				return m, EffectNone, fmt.Errorf("classified event without a valid verdict: %q", ev.Verdict)
			}
			if ev.Verdict.IsSuccess() {
				m.State = StateSuccess
				return m, EffectFinish, nil
			}
			m.State = StateNeedsPatch
			return m, EffectCheckBudget, nil
		}

	case StateNeedsPatch:
		if ev.Kind == EventProceed {
			// The next attempt would exceed the budget: stop without asking
			// for a patch that could never be verified.
			if m.Attempt+1 > m.MaxAttempts {
				m.State = StateExhausted
				m.StopReason = StopReasonBudget
				return m, EffectFinish, nil
			}
			m.State = StatePatching
			return m, EffectRequestPatch, nil
		}

	case StatePatching:
		switch ev.Kind {
		case EventPatchReady:
			m.State = StateApplying
			if !m.BackupTaken {
				m.BackupTaken = true
				return m, EffectBackupAndApply, nil
			}
			return m, EffectApply, nil
		case EventPatchUnchanged:
			m.State = StateExhausted
			m.StopReason = StopReasonUnchangedPatch
			return m, EffectFinish, nil
		case EventAdapterFailed:
			m.State = StateAdapterFailed
			return m, EffectFinish, nil
		}

	case StateApplying:
		switch ev.Kind {
		case EventApplied:
			m.State = StateExecuting
			m.Attempt++
			return m, EffectExecute, nil
		case EventApplyFailed:
			m.State = StateFailed
			return m, EffectFinish, nil
		}
	}

	return m, EffectNone, m.invalid(ev)
}

func (m Machine) invalid(ev Event) error {
	return NewError(CodeInvalidTransition, fmt.Sprintf("no transition from %s on %s", m.State, ev.Kind), nil)
}
