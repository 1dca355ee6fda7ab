package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInternal ErrorCode = "INTERNAL_ERROR"
	ErrorUpstream ErrorCode = "UPSTREAM_ERROR"
)

// Error is the typed error surfaced to the entry point when a request
// cannot be handled at all. Collaborator failures that have a
// user-facing recovery (generation hiccups, record reads) are converted
// to apology messages inside the mode handlers instead and never reach
// this type.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
