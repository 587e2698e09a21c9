package selector

import (
	"errors"
	"fmt"
)

type Code string

const (
	// CodeInternalDB is a failed store lookup; retryable.
	CodeInternalDB Code = "internal-db"
	// CodeEndOfQuestions means no tier produced a question; the session must stop.
	CodeEndOfQuestions Code = "end-of-questions"
	// CodeInternalAlgo is a malformed session configuration or an aborted run.
	CodeInternalAlgo Code = "internal-algo"
	// CodeNoMoreLinkQuestions means every question of a link was attempted.
	CodeNoMoreLinkQuestions Code = "no-more-link-questions"
)

// Error is the {code, message} failure returned by every selection call.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so callers can compare against
// the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrInternalDB          = &Error{Code: CodeInternalDB, Message: "question store unavailable"}
	ErrEndOfQuestions      = &Error{Code: CodeEndOfQuestions, Message: "no eligible question left"}
	ErrInternalAlgo        = &Error{Code: CodeInternalAlgo, Message: "selection algorithm misconfigured"}
	ErrNoMoreLinkQuestions = &Error{Code: CodeNoMoreLinkQuestions, Message: "no more questions for this link"}
)

func dbError(op string, err error) *Error {
	return &Error{Code: CodeInternalDB, Message: "failed to " + op, Err: err}
}

func algoError(message string, err error) *Error {
	return &Error{Code: CodeInternalAlgo, Message: message, Err: err}
}

func endOfQuestions(strategy string) *Error {
	return &Error{Code: CodeEndOfQuestions, Message: "no eligible question for strategy " + strategy}
}

// CodeOf extracts the code of a selection error; empty for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
