// Package errors provides standardized error handling for the bridge.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidPayload ErrorCode = "INVALID_PAYLOAD"
	ErrCodeMissingFields  ErrorCode = "MISSING_FIELDS"
	ErrCodeConfigMissing  ErrorCode = "CONFIG_MISSING"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"

	ErrCodeDispatchFailed    ErrorCode = "DISPATCH_FAILED"
	ErrCodeChannelSendFailed ErrorCode = "CHANNEL_SEND_FAILED"

	ErrCodeUpstreamUnreachable ErrorCode = "UPSTREAM_UNREACHABLE"

	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewInvalidPayloadError creates a non-retryable inbound payload error.
func NewInvalidPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   "Inbound payload could not be parsed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingFieldsError creates a non-retryable error for a webhook body
// from which no message or phone number could be resolved.
func NewMissingFieldsError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingFields,
		Message:   "Required webhook fields are missing",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigMissingError creates a non-retryable server-side configuration error.
func NewConfigMissingError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigMissing,
		Message:   "Required tenant configuration is absent",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session store error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDispatchFailedError creates a retryable order-creation error. A retry
// with the same correlation key attempts creation again because no dispatch
// record was written.
func NewDispatchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDispatchFailed,
		Message:   "Order creation against the dispatch API failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChannelSendFailedError creates a retryable outbound channel error,
// distinct from a dispatch failure: the order may already exist.
func NewChannelSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChannelSendFailed,
		Message:   "Outbound channel delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamUnreachableError creates a retryable timeout/network error.
func NewUpstreamUnreachableError(upstream string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamUnreachable,
		Message:   "Upstream service unreachable",
		Details:   fmt.Sprintf("upstream: %s, error: %s", upstream, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError creates a non-retryable admin auth error.
func NewUnauthorizedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Missing or invalid admin key",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
