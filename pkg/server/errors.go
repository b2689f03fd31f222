package server

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/machinestate/pkg/collector"
	"github.com/NVIDIA/machinestate/pkg/infogroup"
	"github.com/NVIDIA/machinestate/pkg/serializer"
)

// Error codes as constants
const (
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	ErrCodeTimeout              = "TIMEOUT"
	ErrCodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	ErrCodeInvalidConfiguration = "INVALID_CONFIGURATION"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// HTTPStatusFromCode maps an error code onto an HTTP status.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code string) bool {
	switch code {
	case ErrCodeTimeout, ErrCodeServiceUnavailable, ErrCodeRateLimitExceeded, ErrCodeInternalError:
		return true
	default:
		return false
	}
}

// codeFromErr classifies errors returned by the collection pipeline.
func codeFromErr(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		return ErrCodeServiceUnavailable
	case errors.Is(err, collector.ErrUnknownGroup):
		return ErrCodeInvalidRequest
	case errors.Is(err, infogroup.ErrConfiguration):
		return ErrCodeInvalidConfiguration
	default:
		return ErrCodeInternalError
	}
}

// WriteError writes an ErrorResponse.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code, message string, retryable bool, details map[string]any) {

	requestID, _ := r.Context().Value(contextKeyRequestID).(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr classifies err and writes the matching ErrorResponse.
// The error text is added to details under "error".
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, message string, details map[string]any) {
	code := codeFromErr(err)
	WriteError(w, r, HTTPStatusFromCode(code), code, message, retryableFromCode(code),
		mergeDetails(details, map[string]any{"error": err.Error()}))
}

// mergeDetails returns a merged copy, b overwriting a, or nil when both are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}
