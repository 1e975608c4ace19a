// internal/workers/photo/normalize-image/models.go
package normalizeimage

import (
	"image"
	"io"

	"listing-photos/internal/models"
)

type Input struct {
	Image *models.UploadedImage
}

type Output struct {
	Image     *models.UploadedImage
	Converted bool
}

// Decoder turns an encoded HEIC container into pixels.
type Decoder func(r io.Reader) (image.Image, error)

// ExifExtractor returns the raw EXIF item of a HEIC container.
type ExifExtractor func(ra io.ReaderAt) ([]byte, error)
