package errors

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
)

// ErrorCode represents a specific error type for recognition requests.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates an unknown route.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnsupportedCulture indicates no language pack serves the culture.
	ErrCodeUnsupportedCulture ErrorCode = "UNSUPPORTED_CULTURE"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeContextCanceled indicates the caller went away.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StatusClientClosedRequest is the non-standard status for requests the
// client abandoned.
const StatusClientClosedRequest = 499

// HTTPStatus returns the response status for the code.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeInvalidArgument, ErrCodeUnsupportedCulture:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeContextCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// RecognizerError represents a structured error for recognition requests.
type RecognizerError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *RecognizerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RecognizerError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *RecognizerError) WithContext(key string, value any) *RecognizerError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *RecognizerError {
	return &RecognizerError{Code: ErrCodeInvalidArgument, Message: msg}
}

// UnsupportedCulture creates an unsupported culture error.
func UnsupportedCulture(culture string, cause error) *RecognizerError {
	return &RecognizerError{
		Code:    ErrCodeUnsupportedCulture,
		Message: fmt.Sprintf("culture not supported: %s", culture),
		Cause:   cause,
	}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *RecognizerError {
	return &RecognizerError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// Timeout creates a timeout error.
func Timeout(cause error) *RecognizerError {
	return &RecognizerError{Code: ErrCodeTimeout, Message: "request timed out", Cause: cause}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *RecognizerError {
	return &RecognizerError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Internal creates an internal error.
func Internal(cause error) *RecognizerError {
	return &RecognizerError{Code: ErrCodeInternal, Message: "internal error", Cause: cause}
}

// Wrap wraps an existing error with a code.
func Wrap(cause error, code ErrorCode, msg string) *RecognizerError {
	return &RecognizerError{Code: code, Message: msg, Cause: cause}
}

// From classifies any error returned by the recognizer. A RecognizerError
// anywhere in the chain is returned as is.
func From(err error) *RecognizerError {
	if err == nil {
		return nil
	}
	var re *RecognizerError
	if pkgerrors.As(err, &re) {
		return re
	}
	switch {
	case pkgerrors.Is(err, langpack.ErrUnsupportedCulture):
		return &RecognizerError{Code: ErrCodeUnsupportedCulture, Message: "culture not supported", Cause: err}
	case pkgerrors.Is(err, context.DeadlineExceeded):
		return Timeout(err)
	case pkgerrors.Is(err, context.Canceled):
		return ContextCanceled(err)
	default:
		return Internal(err)
	}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var re *RecognizerError
	if pkgerrors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a RecognizerError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var re *RecognizerError
	if pkgerrors.As(err, &re) {
		return re.Code
	}
	return defaultCode
}
