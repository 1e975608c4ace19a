package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"image missing", NewImageMissingError("image_base64"), http.StatusBadRequest},
		{"invalid request", NewInvalidRequestError("bad json", cause), http.StatusBadRequest},
		{"wrapped client error", fmt.Errorf("parse: %w", NewImageMissingError("file")), http.StatusBadRequest},
		{"decode failed", NewImageDecodeFailedError("a.heic", cause), http.StatusInternalServerError},
		{"upload failed", NewStorageUploadFailedError("k", cause), http.StatusInternalServerError},
		{"plain error", cause, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	cause := stderrors.New("socket closed")
	std := Normalize(cause)
	assert.Equal(t, ErrCodeInternal, std.Code)
	assert.Equal(t, "socket closed", std.Details)
	assert.True(t, stderrors.Is(std, cause))

	upload := NewStorageUploadFailedError("2024-01-01/a.jpg", cause)
	assert.Same(t, upload, Normalize(fmt.Errorf("wrapped: %w", upload)))
	assert.Equal(t, "image upload failed: socket closed", upload.Error())
}

func TestImageMissingError(t *testing.T) {
	err := NewImageMissingError("image_base64")
	assert.Equal(t, ErrCodeImageMissing, err.Code)
	assert.Equal(t, "image is missing: field 'image_base64' is missing", err.Error())
	assert.Equal(t, "image_base64", err.Metadata["field"])
}

func TestConvertToBPMNError(t *testing.T) {
	retryable := ConvertToBPMNError(NewTextDetectionFailedError("k", stderrors.New("throttled")))
	assert.Equal(t, "TEXT_DETECTION_FAILED", retryable.Code)
	assert.Equal(t, 3, retryable.Retries)
	assert.True(t, retryable.Retryable)

	vars := retryable.ToErrorVariables()
	assert.Equal(t, "TEXT_DETECTION_FAILED", vars["errorCode"])
	assert.Equal(t, "TEXT_DETECTION_FAILED", vars["originalErrorCode"])

	business := ConvertToBPMNError(NewImageMissingError("image_base64"))
	assert.Equal(t, 0, business.Retries)
	assert.False(t, business.Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeImageMissing))
	assert.Equal(t, "IMAGE", GetErrorCategory(ErrCodeImageDecodeFailed))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeStorageUploadFailed))
	assert.Equal(t, "ENRICHMENT", GetErrorCategory(ErrCodeGeocodingFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
