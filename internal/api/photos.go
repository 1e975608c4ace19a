// internal/api/photos.go
package api

import (
	"errors"
	"io"
	"net/http"

	commonerrors "listing-photos/internal/common/errors"
	"listing-photos/internal/common/logger"
	parseupload "listing-photos/internal/workers/photo/parse-upload"
	processphoto "listing-photos/internal/workers/photo/process-photo"
)

// PhotoHandler serves POST /photos.
type PhotoHandler struct {
	processor    PhotoProcessor
	maxBodyBytes int64
	logger       logger.Logger
}

func NewPhotoHandler(processor PhotoProcessor, maxBodyBytes int64, log logger.Logger) *PhotoHandler {
	return &PhotoHandler{
		processor:    processor,
		maxBodyBytes: maxBodyBytes,
		logger:       log,
	}
}

// Upload accepts a multipart form or a JSON body and answers with the
// processed record.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reader := io.Reader(r.Body)
	if h.maxBodyBytes > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, commonerrors.NewInvalidRequestError("request body too large", err))
			return
		}
		respondError(w, commonerrors.NewInvalidRequestError("request body could not be read", err))
		return
	}

	record, err := h.processor.Process(r.Context(), RequestFromHTTP(r, body), processphoto.EntrypointHTTP)
	status, payload := Render(record, err)
	writeBody(w, status, payload)
}

// RequestFromHTTP flattens an HTTP request into the transport-neutral form.
// Only the first value of each header and query parameter is kept.
func RequestFromHTTP(r *http.Request, body []byte) *parseupload.Request {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	query := make(map[string]string)
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			query[name] = values[0]
		}
	}

	return &parseupload.Request{
		Headers: headers,
		Body:    body,
		Query:   query,
	}
}
