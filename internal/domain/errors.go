package domain

import "fmt"

// ErrorCode classifies every refusal the engine can produce. Handlers map
// codes to transport status; services never return raw sentinel errors for
// guard failures.
type ErrorCode string

const (
	ErrUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED"
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrInvalidState     ErrorCode = "INVALID_STATE"
	ErrInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	ErrAlreadyDone      ErrorCode = "ALREADY_DONE"
	ErrExternalFailure  ErrorCode = "EXTERNAL_FAILURE"
	ErrInternal         ErrorCode = "INTERNAL"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a cause while keeping the classification.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the classification from an error chain, defaulting to
// ErrInternal for anything unclassified.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	for {
		if de, ok := err.(*Error); ok {
			return de.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ErrInternal
		}
		err = u.Unwrap()
		if err == nil {
			return ErrInternal
		}
	}
}

// IsAlreadyDone reports whether err is the idempotent-repeat signal, which
// callers surface as a non-alarming message rather than a failure.
func IsAlreadyDone(err error) bool {
	return CodeOf(err) == ErrAlreadyDone
}
