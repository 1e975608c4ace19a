package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	commonerrors "listing-photos/internal/common/errors"
	"listing-photos/internal/common/logger"
	"listing-photos/internal/models"
	parseupload "listing-photos/internal/workers/photo/parse-upload"
	processphoto "listing-photos/internal/workers/photo/process-photo"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambdaHandler_Success(t *testing.T) {
	processor := &MockPhotoProcessor{
		ProcessFunc: func(ctx context.Context, req *parseupload.Request, entrypoint string) (*models.OutputRecord, error) {
			return sampleRecord(), nil
		},
	}
	h := NewLambdaHandler(processor, logger.NewTestLogger(t))

	body := base64.StdEncoding.EncodeToString([]byte(`{"image_base64":"eA=="}`))
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		Headers:               map[string]string{"content-type": "application/json"},
		Body:                  body,
		IsBase64Encoded:       true,
		QueryStringParameters: map[string]string{"lat": "-23.5", "lon": "-46.6"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var got models.OutputRecord
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &got))
	assert.Equal(t, sampleRecord().PhotoURL, got.PhotoURL)

	assert.Equal(t, processphoto.EntrypointLambda, processor.lastEntry)
	assert.True(t, processor.lastRequest.IsBase64Encoded)
	assert.Equal(t, body, string(processor.lastRequest.Body))
	assert.Equal(t, "application/json", processor.lastRequest.Header("Content-Type"))
	assert.Equal(t, "-46.6", processor.lastRequest.Query["lon"])
}

func TestLambdaHandler_ErrorsAreResponses(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "missing image", err: commonerrors.NewImageMissingError("file"), expected: http.StatusBadRequest},
		{name: "decode failure", err: commonerrors.NewImageDecodeFailedError("x.heic", assert.AnError), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := &MockPhotoProcessor{
				ProcessFunc: func(ctx context.Context, req *parseupload.Request, entrypoint string) (*models.OutputRecord, error) {
					return nil, tt.err
				},
			}
			h := NewLambdaHandler(processor, logger.NewTestLogger(t))

			resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: "{}"})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.StatusCode)
			assert.NotEmpty(t, decodeError(t, []byte(resp.Body)))
		})
	}
}

func TestRequestFromEvent_MultiValueHeaders(t *testing.T) {
	req := RequestFromEvent(events.APIGatewayProxyRequest{
		Headers:           map[string]string{"X-Single": "a"},
		MultiValueHeaders: map[string][]string{"X-Single": {"b"}, "Content-Type": {"multipart/form-data; boundary=xyz", "ignored"}},
	})

	assert.Equal(t, "a", req.Header("x-single"))
	assert.Equal(t, "multipart/form-data; boundary=xyz", req.Header("content-type"))
	assert.Empty(t, req.Query)
}
