package recurrence

import (
	"errors"
	"fmt"
)

// ErrorType classifies why a configuration or date was rejected.
type ErrorType string

const (
	ErrMalformedDate       ErrorType = "malformed_date"
	ErrMissingPrerequisite ErrorType = "missing_prerequisite"
	ErrOutOfRange          ErrorType = "out_of_range"
	ErrUnsupportedType     ErrorType = "unsupported_type"
	ErrUnresolvableName    ErrorType = "unresolvable_name"
	ErrUnknownRule         ErrorType = "unknown_rule"
)

// Error is returned for every rejected input. Rule names the configuration
// key at fault and is empty for dates passed to the Matches family.
type Error struct {
	Type    ErrorType
	Rule    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Type)
	if e.Rule != "" {
		msg += ": " + e.Rule
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsType reports whether err, or any error it wraps, is an *Error of type t.
func IsType(err error, t ErrorType) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Type == t
}

func newError(t ErrorType, rule, format string, args ...any) *Error {
	return &Error{Type: t, Rule: rule, Message: fmt.Sprintf(format, args...)}
}
