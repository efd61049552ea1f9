package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures at stage boundaries
type ErrorKind string

const (
	KindInputValidation     ErrorKind = "INVALID_INPUT"
	KindUnreachableSource   ErrorKind = "UNREACHABLE"
	KindInsufficientContent ErrorKind = "INSUFFICIENT_CONTENT"
	KindTranscriptionFailed ErrorKind = "TRANSCRIPTION_FAILED"
	KindOracleUnavailable   ErrorKind = "ORACLE_UNAVAILABLE"
	KindMalformedResponse   ErrorKind = "MALFORMED_RESPONSE"
	KindConfiguration       ErrorKind = "CONFIGURATION"
	KindInternal            ErrorKind = "INTERNAL" // a stage crashed
)

// Error is a typed failure raised by adapters, the oracle client, or construction
type Error struct {
	Kind    ErrorKind
	Op      string // component that failed, e.g. "url-adapter"
	Message string // stable, user-facing
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: k}) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// NewError creates a typed error
func NewError(kind ErrorKind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// MessageOf returns the user-facing message of a typed error, or err.Error() otherwise
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ConfigError is shorthand for a configuration failure detected at construction
func ConfigError(op, format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Message: fmt.Sprintf(format, args...)}
}
