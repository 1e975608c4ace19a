// internal/api/lambda.go
package api

import (
	"context"

	"listing-photos/internal/common/logger"
	parseupload "listing-photos/internal/workers/photo/parse-upload"
	processphoto "listing-photos/internal/workers/photo/process-photo"

	"github.com/aws/aws-lambda-go/events"
)

// LambdaHandler adapts API Gateway proxy events to the pipeline.
type LambdaHandler struct {
	processor PhotoProcessor
	logger    logger.Logger
}

func NewLambdaHandler(processor PhotoProcessor, log logger.Logger) *LambdaHandler {
	return &LambdaHandler{
		processor: processor,
		logger:    log,
	}
}

// Handle never returns an error: failures are answered as 400 or 500 responses.
func (h *LambdaHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.logger.Debug("lambda event received", map[string]interface{}{
		"requestId":       event.RequestContext.RequestID,
		"isBase64Encoded": event.IsBase64Encoded,
		"bodyLength":      len(event.Body),
	})

	record, err := h.processor.Process(ctx, RequestFromEvent(event), processphoto.EntrypointLambda)
	status, body := Render(record, err)

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}

// RequestFromEvent maps an API Gateway proxy event onto the transport-neutral request.
func RequestFromEvent(event events.APIGatewayProxyRequest) *parseupload.Request {
	headers := make(map[string]string, len(event.Headers))
	for k, v := range event.Headers {
		headers[k] = v
	}
	for k, vs := range event.MultiValueHeaders {
		if _, ok := headers[k]; !ok && len(vs) > 0 {
			headers[k] = vs[0]
		}
	}

	query := make(map[string]string, len(event.QueryStringParameters))
	for k, v := range event.QueryStringParameters {
		query[k] = v
	}

	return &parseupload.Request{
		Headers:         headers,
		Body:            []byte(event.Body),
		IsBase64Encoded: event.IsBase64Encoded,
		Query:           query,
	}
}
