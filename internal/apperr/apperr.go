package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindState             Kind = "state"
	KindNotFound          Kind = "not_found"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindForbidden         Kind = "forbidden"
	KindInternal          Kind = "internal"
)

// Error is the typed failure returned by every command. Two errors are the
// same for errors.Is when their codes match, so a sentinel can be returned
// with extra detail and still be compared against.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// ErrInternal is what callers see for engine bugs; the detail goes to the log.
var ErrInternal = New(KindInternal, "INTERNAL", "internal error, retry")

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Withf returns a copy of e whose message carries the formatted detail.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message + ": " + fmt.Sprintf(format, args...),
		Err:     e.Err,
	}
}

// Wrap returns a copy of e that wraps cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: cause}
}

// KindOf reports the kind of the first *Error in err's chain. Anything that
// is not an *Error is treated as internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
