package bracketry

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the §7 error kinds. These are surfaced to the caller
// unchanged — the core never silently discards a failure.
type ErrorKind string

const (
	ErrInvalidInput                   ErrorKind = "InvalidInput"
	ErrInvalidOpponent                ErrorKind = "InvalidOpponent"
	ErrInvalidScore                   ErrorKind = "InvalidScore"
	ErrInvalidResult                  ErrorKind = "InvalidResult"
	ErrInvalidTransition              ErrorKind = "InvalidTransition"
	ErrCannotResetDownstreamCompleted ErrorKind = "CannotResetDownstreamCompleted"
	ErrUseMatchGameUpdate             ErrorKind = "UseMatchGameUpdate"
	ErrNotFound                       ErrorKind = "NotFound"
	ErrStorageError                   ErrorKind = "StorageError"
)

// Error is the single exported error type the core library returns. Callers
// use errors.As to recover the Kind rather than matching on message text.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError constructs a bracketry.Error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError constructs a bracketry.Error wrapping a lower-level cause, used
// at the storage boundary (§6.2: "the core never inspects storage-specific
// error shapes; any failure is surfaced as StorageError").
func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the ErrorKind from err, if err is (or wraps) a *Error.
func KindOf(err error) (ErrorKind, bool) {
	var be *Error
	if !errors.As(err, &be) {
		return "", false
	}
	return be.Kind, true
}
