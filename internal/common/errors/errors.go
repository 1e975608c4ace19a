// Package errors provides the standardized error taxonomy of the photo pipeline
// and its mapping onto HTTP statuses and BPMN errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Client input errors
const (
	ErrCodeImageMissing   ErrorCode = "IMAGE_MISSING"
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Fatal pipeline errors
const (
	ErrCodeImageDecodeFailed   ErrorCode = "IMAGE_DECODE_FAILED"
	ErrCodeStorageUploadFailed ErrorCode = "STORAGE_UPLOAD_FAILED"
	ErrCodeTextDetectionFailed ErrorCode = "TEXT_DETECTION_FAILED"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// Collaborator errors, absorbed by the pipeline
const (
	ErrCodeGeocodingFailed        ErrorCode = "GEOCODING_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewImageMissingError reports a request without an image payload.
func NewImageMissingError(field string) *StandardError {
	e := newError(ErrCodeImageMissing, "image is missing", nil, false)
	e.Details = fmt.Sprintf("field '%s' is missing", field)
	e.Metadata = map[string]interface{}{"field": field}
	return e
}

// NewInvalidRequestError reports a malformed request body.
func NewInvalidRequestError(details string, cause error) *StandardError {
	e := newError(ErrCodeInvalidRequest, "invalid request", cause, false)
	if details != "" {
		e.Details = details
	}
	return e
}

// NewImageDecodeFailedError reports an image container that could not be decoded.
func NewImageDecodeFailedError(filename string, err error) *StandardError {
	e := newError(ErrCodeImageDecodeFailed, "image could not be decoded", err, false)
	e.Metadata = map[string]interface{}{"filename": filename}
	return e
}

// NewStorageUploadFailedError reports a failed blob upload.
func NewStorageUploadFailedError(key string, err error) *StandardError {
	e := newError(ErrCodeStorageUploadFailed, "image upload failed", err, true)
	e.Metadata = map[string]interface{}{"key": key}
	return e
}

// NewTextDetectionFailedError reports a failed text detection call.
func NewTextDetectionFailedError(key string, err error) *StandardError {
	e := newError(ErrCodeTextDetectionFailed, "text detection failed", err, true)
	e.Metadata = map[string]interface{}{"key": key}
	return e
}

// NewGeocodingFailedError reports a failed reverse geocoding call.
func NewGeocodingFailedError(err error) *StandardError {
	return newError(ErrCodeGeocodingFailed, "reverse geocoding failed", err, true)
}

// NewNotificationSendFailedError reports a failed notification sink.
func NewNotificationSendFailedError(sink string, err error) *StandardError {
	e := newError(ErrCodeNotificationSendFailed, fmt.Sprintf("notification to %s failed", sink), err, true)
	e.Metadata = map[string]interface{}{"sink": sink}
	return e
}

// NewInternalError wraps any unexpected error.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "unexpected error", err, false)
}

// ==========================
// 4. Conversion
// ==========================

// Normalize returns err as a StandardError, wrapping unknown errors as internal.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// IsClientError reports whether the code is caused by the caller's input.
func IsClientError(code ErrorCode) bool {
	return code == ErrCodeImageMissing || code == ErrCodeInvalidRequest
}

// HTTPStatus maps an error to the response status: 400 for caller input
// errors, 500 for everything else.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if IsClientError(Normalize(err).Code) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStorageUploadFailed,
		ErrCodeTextDetectionFailed:
		return 3

	case ErrCodeGeocodingFailed,
		ErrCodeNotificationSendFailed:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case IsClientError(code):
		return "VALIDATION"
	case strings.Contains(codeStr, "IMAGE"):
		return "IMAGE"
	case strings.Contains(codeStr, "STORAGE"):
		return "STORAGE"
	case strings.Contains(codeStr, "TEXT_DETECTION"), strings.Contains(codeStr, "GEOCODING"):
		return "ENRICHMENT"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
