// internal/workers/photo/process-photo/models.go
package processphoto

import (
	"context"

	"listing-photos/internal/models"
	classifytext "listing-photos/internal/workers/photo/classify-text"
	extractgps "listing-photos/internal/workers/photo/extract-gps"
	normalizeimage "listing-photos/internal/workers/photo/normalize-image"
	notifysheet "listing-photos/internal/workers/photo/notify-sheet"
	parseupload "listing-photos/internal/workers/photo/parse-upload"
	reversegeocode "listing-photos/internal/workers/photo/reverse-geocode"
)

// Entrypoints label runs in metrics and logs.
const (
	EntrypointHTTP   = "http"
	EntrypointLambda = "lambda"
	EntrypointZeebe  = "zeebe"
)

// BlobStore persists the normalized image and exposes it publicly.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	PublicURL(key string) string
	Bucket() string
}

// TextDetector reads text from an image already in the blob store.
type TextDetector interface {
	DetectText(ctx context.Context, bucket, key string) ([]string, error)
}

type UploadParser interface {
	Execute(ctx context.Context, input *parseupload.Input) (*parseupload.Output, error)
}

type ImageNormalizer interface {
	Execute(ctx context.Context, input *normalizeimage.Input) (*normalizeimage.Output, error)
}

type GPSExtractor interface {
	Execute(ctx context.Context, input *extractgps.Input) (*extractgps.Output, error)
}

type TextClassifier interface {
	Execute(ctx context.Context, input *classifytext.Input) (*classifytext.Output, error)
}

type Geocoder interface {
	Execute(ctx context.Context, input *reversegeocode.Input) (*reversegeocode.Output, error)
}

type Notifier interface {
	Execute(ctx context.Context, input *notifysheet.Input) (*notifysheet.Output, error)
}

// Output is what a completed Zeebe job hands back to the process.
type Output struct {
	Record *models.OutputRecord `json:"photoRecord"`
}
