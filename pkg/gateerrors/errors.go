// Package gateerrors provides the structured error system for mediagate with
// error codes, categories, and HTTP status mapping.
package gateerrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode identifies a gateway failure class.
type ErrorCode string

// Error code constants organized by category.
const (
	// Request outcomes (client input)
	ErrCodeNotHandled         ErrorCode = "NOT_HANDLED"
	ErrCodeObjectNotFound     ErrorCode = "OBJECT_NOT_FOUND"
	ErrCodeRangeUnsatisfiable ErrorCode = "RANGE_UNSATISFIABLE"

	// Limits
	ErrCodeRateLimited    ErrorCode = "RATE_LIMITED"
	ErrCodeQuotaExhausted ErrorCode = "QUOTA_EXHAUSTED"

	// Upstream / streaming
	ErrCodeUpstreamError     ErrorCode = "UPSTREAM_ERROR"
	ErrCodeStreamInterrupted ErrorCode = "STREAM_INTERRUPTED"

	// Durable store
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// Configuration
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	ErrCodeConfigLoad    ErrorCode = "CONFIG_LOAD"

	// Internal
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorCategory represents the general category of an error.
type ErrorCategory string

const (
	CategoryClient        ErrorCategory = "client"
	CategoryLimit         ErrorCategory = "limit"
	CategoryUpstream      ErrorCategory = "upstream"
	CategoryStore         ErrorCategory = "store"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// GatewayError is a structured error carrying code, category, and context.
type GatewayError struct {
	Code     ErrorCode     `json:"code"`
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`

	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`

	Component string `json:"component,omitempty"`
	Operation string `json:"operation,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.Component != "" {
		if e.Operation != "" {
			return fmt.Sprintf("[%s:%s] %s: %s", e.Component, e.Operation, e.Code, e.Message)
		}
		return fmt.Sprintf("[%s] %s: %s", e.Component, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error wrapping compatibility.
func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// Is checks error identity by code (for errors.Is compatibility).
func (e *GatewayError) Is(target error) bool {
	if ge, ok := target.(*GatewayError); ok {
		return e.Code == ge.Code
	}
	return false
}

// New creates a new gateway error with defaults derived from the code.
func New(code ErrorCode, message string) *GatewayError {
	return &GatewayError{
		Code:      code,
		Category:  GetCategory(code),
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates a new gateway error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *GatewayError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code ErrorCode, message string) *GatewayError {
	ge := New(code, message)
	ge.Cause = err
	return ge
}

// WithComponent sets the component for an error.
func (e *GatewayError) WithComponent(component string) *GatewayError {
	e.Component = component
	return e
}

// WithOperation sets the operation for an error.
func (e *GatewayError) WithOperation(operation string) *GatewayError {
	e.Operation = operation
	return e
}

// WithRequestID sets the request ID for an error.
func (e *GatewayError) WithRequestID(id string) *GatewayError {
	e.RequestID = id
	return e
}

// GetCategory determines the category based on the error code.
func GetCategory(code ErrorCode) ErrorCategory {
	switch code {
	case ErrCodeNotHandled, ErrCodeObjectNotFound, ErrCodeRangeUnsatisfiable:
		return CategoryClient
	case ErrCodeRateLimited, ErrCodeQuotaExhausted:
		return CategoryLimit
	case ErrCodeUpstreamError, ErrCodeStreamInterrupted:
		return CategoryUpstream
	case ErrCodeStoreUnavailable:
		return CategoryStore
	default:
		codeStr := string(code)
		if strings.Contains(codeStr, "CONFIG") {
			return CategoryConfiguration
		}
		return CategoryInternal
	}
}

// HTTPStatus returns the HTTP status the gateway answers with for a code.
// NotHandled has no status of its own: the surrounding router decides.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeObjectNotFound, ErrCodeNotHandled:
		return http.StatusNotFound
	case ErrCodeRangeUnsatisfiable:
		return http.StatusRequestedRangeNotSatisfiable
	case ErrCodeRateLimited, ErrCodeQuotaExhausted:
		return http.StatusTooManyRequests
	case ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf extracts the error code from an error chain. Unclassified errors
// report ErrCodeInternalError.
func CodeOf(err error) ErrorCode {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ErrCodeInternalError
}

// IsCode reports whether any error in the chain carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}
