// internal/workers/photo/parse-upload/models.go
package parseupload

import (
	"strings"

	"listing-photos/internal/models"
)

// Request is an inbound upload independent of the transport it came from.
type Request struct {
	Headers         map[string]string
	Body            []byte
	IsBase64Encoded bool
	Query           map[string]string
}

// Header looks name up case-insensitively.
func (r *Request) Header(name string) string {
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

type Input struct {
	Request *Request
}

type Output struct {
	Image *models.UploadedImage
	// ManualCoordinate is set only when both lat and lon query parameters
	// parse to a valid coordinate.
	ManualCoordinate *models.GeoCoordinate
}

type jsonBody struct {
	ImageBase64 string `json:"image_base64"`
	Filename    string `json:"filename"`
}

// InputError is a caller mistake. Kind is ErrImageMissing or ErrInvalidRequest.
type InputError struct {
	Kind   error
	Field  string
	Detail string
}

func (e *InputError) Error() string {
	return e.Kind.Error() + ": " + e.Detail
}

func (e *InputError) Unwrap() error {
	return e.Kind
}
