// internal/workers/photo/normalize-image/handler.go
package normalizeimage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path"
	"strings"

	"listing-photos/internal/common/logger"
	"listing-photos/internal/models"

	"github.com/jdeng/goheif"
)

const (
	TaskType = "normalize-image"
)

var (
	ErrImageDecodeFailed = errors.New("IMAGE_DECODE_FAILED")
	ErrImageEncodeFailed = errors.New("IMAGE_ENCODE_FAILED")
)

const maxSegmentPayload = 0xFFFF - 2

var exifMarker = []byte("Exif\x00\x00")

type Handler struct {
	config      *Config
	decode      Decoder
	extractExif ExifExtractor
	logger      logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return NewHandlerWithDecoder(config, goheif.Decode, goheif.ExtractExif, log)
}

func NewHandlerWithDecoder(config *Config, decode Decoder, extractExif ExifExtractor, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		decode:      decode,
		extractExif: extractExif,
		logger:      log.WithFields(map[string]interface{}{"stage": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	img := input.Image
	if img.Format != models.FormatHEIC {
		return &Output{Image: img}, nil
	}

	pixels, err := h.safeDecode(img.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecodeFailed, img.Filename, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, pixels, &jpeg.Options{Quality: h.config.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageEncodeFailed, err)
	}
	data := buf.Bytes()

	if h.config.KeepExif {
		data = h.attachExif(img, data)
	}

	name := jpegName(img.Filename)
	bounds := pixels.Bounds()
	h.logger.Info("heic converted to jpeg", map[string]interface{}{
		"filename": name,
		"width":    bounds.Dx(),
		"height":   bounds.Dy(),
		"bytesIn":  len(img.Data),
		"bytesOut": len(data),
	})

	return &Output{
		Image: &models.UploadedImage{
			Filename: name,
			Data:     data,
			Format:   models.FormatJPEG,
		},
		Converted: true,
	}, nil
}

// safeDecode turns decoder panics on malformed containers into errors.
func (h *Handler) safeDecode(data []byte) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	img, err = h.decode(bytes.NewReader(data))
	if err == nil && img == nil {
		err = errors.New("decoder returned no image")
	}
	return img, err
}

// attachExif carries the HEIC EXIF block over; the image is still returned
// when the block is missing or unusable.
func (h *Handler) attachExif(img *models.UploadedImage, jpegData []byte) []byte {
	raw, err := h.extractExif(bytes.NewReader(img.Data))
	if err != nil || len(raw) == 0 {
		fields := map[string]interface{}{"filename": img.Filename}
		if err != nil {
			fields["error"] = err.Error()
		}
		h.logger.Debug("heic has no exif block", fields)
		return jpegData
	}

	out, err := InsertExif(jpegData, raw)
	if err != nil {
		h.logger.Warn("exif not carried over", map[string]interface{}{
			"filename": img.Filename,
			"error":    err.Error(),
		})
		return jpegData
	}
	return out
}

// InsertExif places raw EXIF data in an APP1 segment directly after the SOI
// marker of jpegData. raw may start with the "Exif\0\0" header, with a TIFF
// header, or with the 4-byte offset HEIF stores before either.
func InsertExif(jpegData, raw []byte) ([]byte, error) {
	if len(jpegData) < 2 || jpegData[0] != 0xFF || jpegData[1] != 0xD8 {
		return nil, errors.New("not a jpeg stream")
	}
	payload := exifPayload(raw)
	if payload == nil {
		return nil, errors.New("no exif or tiff header in block")
	}
	if len(payload) > maxSegmentPayload {
		return nil, fmt.Errorf("exif block too large: %d bytes", len(payload))
	}

	seg := make([]byte, 4, 4+len(payload))
	seg[0], seg[1] = 0xFF, 0xE1
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := make([]byte, 0, len(jpegData)+len(seg))
	out = append(out, jpegData[:2]...)
	out = append(out, seg...)
	out = append(out, jpegData[2:]...)
	return out, nil
}

func exifPayload(raw []byte) []byte {
	head := raw
	if len(head) > 16 {
		head = head[:16]
	}
	if i := bytes.Index(head, exifMarker); i >= 0 {
		return raw[i:]
	}
	for _, tiffHeader := range [][]byte{[]byte("II*\x00"), []byte("MM\x00*")} {
		if i := bytes.Index(head, tiffHeader); i >= 0 {
			return append(append([]byte{}, exifMarker...), raw[i:]...)
		}
	}
	return nil
}

func jpegName(filename string) string {
	return strings.TrimSuffix(filename, path.Ext(filename)) + ".jpg"
}
