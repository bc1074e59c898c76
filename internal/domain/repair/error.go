package repair

import (
	"errors"
	"fmt"
)

// Error codes of the repair taxonomy. Sandbox and classifier codes describe
// expected loop inputs; the rest are infrastructure failures that end a session.
const (
	CodeSandboxTimeout       = "SANDBOX_TIMEOUT"
	CodeSandboxCrash         = "SANDBOX_CRASH"
	CodeLogicMismatch        = "LOGIC_MISMATCH"
	CodeSandboxStart         = "SANDBOX_START_FAILURE"
	CodeAdapterUnreachable   = "ADAPTER_UNREACHABLE"
	CodeAdapterMalformed     = "ADAPTER_MALFORMED_RESPONSE"
	CodeApplyIOFailure       = "APPLY_IO_FAILURE"
	CodeBackupIOFailure      = "BACKUP_IO_FAILURE"
	CodeTargetBusy           = "TARGET_BUSY"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeAttemptOutOfSequence = "ATTEMPT_OUT_OF_SEQUENCE"
)

// Error is a coded repair error
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a coded error wrapping cause
func NewError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// IsCode reports whether err carries the given taxonomy code
func IsCode(err error, code string) bool {
	var rerr *Error
	if errors.As(err, &rerr) && rerr.Code == code {
		return true
	}
	var aerr *AdapterError
	if errors.As(err, &aerr) && aerr.Code() == code {
		return true
	}
	return false
}

// AdapterErrorKind distinguishes patch service failures
type AdapterErrorKind string

const (
	ServiceUnreachable AdapterErrorKind = "service_unreachable"
	NoCodeBlockFound   AdapterErrorKind = "no_code_block_found"
	EmptyPatch         AdapterErrorKind = "empty_patch"
)

// AdapterError is returned by the patch service instead of a candidate
type AdapterError struct {
	Kind AdapterErrorKind
	Err  error
}

// Error implements the error interface
func (e *AdapterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("patch service: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("patch service: %s", e.Kind)
}

// Unwrap returns the underlying cause
func (e *AdapterError) Unwrap() error {
	return e.Err
}

// Code maps the adapter kind onto the error taxonomy
func (e *AdapterError) Code() string {
	if e.Kind == ServiceUnreachable {
		return CodeAdapterUnreachable
	}
	return CodeAdapterMalformed
}
