// Package errors carries the JSON envelope shared by every dashboard API
// endpoint: {"success": true, "data": ...} or {"success": false, "error": ...}.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-dashboard/internal/observability"
)

type ErrorCode string

const (
	CodeInternal  ErrorCode = "INTERNAL_ERROR"
	CodeNotFound  ErrorCode = "NOT_FOUND"
	CodeNoData    ErrorCode = "NO_DATA"
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"
)

var statusByCode = map[ErrorCode]int{
	CodeInternal:  http.StatusInternalServerError,
	CodeNotFound:  http.StatusNotFound,
	CodeNoData:    http.StatusNotFound,
	CodeRateLimit: http.StatusTooManyRequests,
}

// AppError is the client-visible half of a failure. Cause stays server side.
type AppError struct {
	Code       ErrorCode     `json:"code"`
	Message    string        `json:"message"`
	Details    string        `json:"details,omitempty"`
	RequestID  string        `json:"request_id,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	StatusCode int           `json:"-"`
	RetryAfter time.Duration `json:"-"`
	Cause      error         `json:"-"`
}

func (e *AppError) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Details != "" {
		msg += " [" + e.Details + "]"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Cause }

func newAppError(code ErrorCode, cause error, message string) *AppError {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: status,
		Timestamp:  time.Now().UTC(),
		Cause:      cause,
	}
}

// NotFound reports a missing resource such as a figure or chart file.
func NotFound(resource, name string, cause error) *AppError {
	e := newAppError(CodeNotFound, cause, resource+" not found")
	e.Details = name
	return e
}

// NoData reports a known figure whose backing dataset cannot be drawn.
func NoData(name string, cause error) *AppError {
	e := newAppError(CodeNoData, cause, "figure has no data")
	e.Details = name
	return e
}

func RateLimited(retryAfter time.Duration) *AppError {
	e := newAppError(CodeRateLimit, nil, "too many requests")
	e.RetryAfter = retryAfter
	return e
}

func Internal(cause error, message string) *AppError {
	return newAppError(CodeInternal, cause, message)
}

// As unwraps err to an *AppError, wrapping anything else as an internal error.
func As(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err, "an unexpected error occurred")
}

type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *AppError `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// WriteError writes err as a JSON error envelope and logs it. Server faults
// are logged at error level, client faults at warn.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	appErr := As(err)
	appErr.RequestID = observability.GetRequestID(r.Context())

	if appErr.RetryAfter > 0 {
		secs := int(appErr.RetryAfter.Round(time.Second) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
	}
	if encErr := writeJSON(w, appErr.StatusCode, ErrorResponse{Error: appErr}); encErr != nil {
		logger.Error("encode error response", "error", encErr, "request_id", appErr.RequestID)
		return
	}

	level := slog.LevelWarn
	if appErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs := []any{
		"code", appErr.Code,
		"status", appErr.StatusCode,
		"path", r.URL.Path,
		"request_id", appErr.RequestID,
	}
	if appErr.Details != "" {
		attrs = append(attrs, "details", appErr.Details)
	}
	if appErr.Cause != nil {
		attrs = append(attrs, "cause", appErr.Cause)
	}
	logger.Log(r.Context(), level, appErr.Message, attrs...)
}

// ResponseOption adjusts the headers of a success response.
type ResponseOption func(http.Header)

// Cached marks the response as publicly cacheable for maxAge.
func Cached(maxAge time.Duration) ResponseOption {
	return func(h http.Header) {
		h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge/time.Second)))
	}
}

func WriteSuccess(w http.ResponseWriter, data any, opts ...ResponseOption) {
	for _, opt := range opts {
		opt(w.Header())
	}
	// Headers are already sent; nothing useful can be done with the error.
	_ = writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
