package apperr

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Kind classifies an application error for callers and the HTTP layer.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindDuplicateReport Kind = "duplicate_report"
	KindParse           Kind = "parse"
	KindPersistence     Kind = "persistence"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindInternal        Kind = "internal"
)

// Error is the base error type returned across service boundaries.
type Error struct {
	Kind       Kind
	Message    string
	Suggestion string
	Cause      error
	stack      errors.StackTrace
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StackTrace exposes where the error was created.
func (e *Error) StackTrace() errors.StackTrace {
	return e.stack
}

// Format prints the stack with %+v, mirroring pkg/errors.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			io.WriteString(s, e.Error())
			e.stack.Format(s, verb)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// WithSuggestion adds a hint for fixing the error.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

func newError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
		stack:   errors.New("").(stackTracer).StackTrace()[1:],
	}
}

func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, nil, format, args...)
}

func Duplicate(format string, args ...interface{}) *Error {
	return newError(KindDuplicateReport, nil, format, args...)
}

func Parse(format string, args ...interface{}) *Error {
	return newError(KindParse, nil, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, nil, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, nil, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, nil, format, args...)
}

// Wrap attaches a kind and message to an underlying failure.
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return newError(kind, err, format, args...)
}

// Persistence wraps a storage failure.
func Persistence(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindPersistence, format, args...)
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// SuggestionOf returns the suggestion of the first *Error in the chain.
func SuggestionOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Suggestion
	}
	return ""
}
