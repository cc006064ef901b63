// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler maps application errors onto HTTP responses. The customer
// never sees raw transport errors; the integration caller always gets a
// structured payload.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Respond writes err as a JSON error body with the status implied by its code.
func (h *ErrorHandler) Respond(w http.ResponseWriter, requestID string, err error) {
	stdErr := h.normalizeError(err)
	status := StatusFor(stdErr.Code)

	h.logger.Error("request failed", map[string]interface{}{
		"requestId": requestID,
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
		"status":    status,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":     string(stdErr.Code),
		"message":   stdErr.Message,
		"requestId": requestID,
	})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidPayload, ErrCodeMissingFields:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeConfigMissing:
		return http.StatusInternalServerError
	case ErrCodeDispatchFailed, ErrCodeChannelSendFailed, ErrCodeUpstreamUnreachable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
