// internal/workers/photo/extract-gps/handler.go
package extractgps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"listing-photos/internal/common/logger"
	"listing-photos/internal/models"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

const (
	TaskType = "extract-gps"
)

var (
	ErrExifUnreadable  = errors.New("EXIF_UNREADABLE")
	ErrGPSMalformed    = errors.New("GPS_MALFORMED")
	ErrCoordinateRange = errors.New("COORDINATE_OUT_OF_RANGE")
)

var (
	exifHeader       = []byte("Exif\x00\x00")
	tiffHeaderLittle = []byte("II*\x00")
	tiffHeaderBig    = []byte("MM\x00*")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"stage": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	result := h.extract(input.Data)

	fields := map[string]interface{}{
		"filename": input.Filename,
		"status":   string(result.Status),
	}
	switch result.Status {
	case models.StepFound:
		fields["lat"] = result.Coordinate.Lat
		fields["lon"] = result.Coordinate.Lon
		h.logger.Info("gps coordinate extracted", fields)
	case models.StepFailed:
		fields["error"] = result.Reason.Error()
		h.logger.Warn("gps extraction failed", fields)
	default:
		h.logger.Debug("no gps data in image", fields)
	}

	return &Output{Result: result}, nil
}

func (h *Handler) extract(data []byte) Result {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil && x != nil && !exif.IsCriticalError(err) {
		h.logger.Debug("exif decoded with sub-IFD errors", map[string]interface{}{"error": err.Error()})
		err = nil
	}
	if err != nil {
		if !hasExif(data) {
			return Result{Status: models.StepAbsent}
		}
		return Result{Status: models.StepFailed, Reason: fmt.Errorf("%w: %v", ErrExifUnreadable, err)}
	}

	lat, latPresent, err := readAxis(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	if err != nil {
		return Result{Status: models.StepFailed, Reason: err}
	}
	lon, lonPresent, err := readAxis(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	if err != nil {
		return Result{Status: models.StepFailed, Reason: err}
	}
	if !latPresent || !lonPresent {
		return Result{Status: models.StepAbsent}
	}

	coord := models.GeoCoordinate{Lat: lat, Lon: lon}
	if h.config.RejectOutOfRange && !coord.Valid() {
		return Result{
			Status: models.StepFailed,
			Reason: fmt.Errorf("%w: (%f, %f)", ErrCoordinateRange, lat, lon),
		}
	}
	return Result{Coordinate: &coord, Status: models.StepFound}
}

// readAxis returns present=false when either the value or its reference tag
// is missing.
func readAxis(x *exif.Exif, valueField, refField exif.FieldName) (float64, bool, error) {
	valueTag, err := x.Get(valueField)
	if err != nil {
		if exif.IsTagNotPresentError(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: %s: %v", ErrGPSMalformed, valueField, err)
	}
	refTag, err := x.Get(refField)
	if err != nil {
		if exif.IsTagNotPresentError(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: %s: %v", ErrGPSMalformed, refField, err)
	}

	dms, err := rationals(valueTag)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s: %v", ErrGPSMalformed, valueField, err)
	}
	ref, err := refTag.StringVal()
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s: %v", ErrGPSMalformed, refField, err)
	}

	return DMSToDecimal(dms[0], dms[1], dms[2], ref), true, nil
}

func rationals(tag *tiff.Tag) ([3]float64, error) {
	var out [3]float64
	if tag.Count < 3 {
		return out, fmt.Errorf("expected 3 rationals, got %d", tag.Count)
	}
	for i := 0; i < 3; i++ {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return out, err
		}
		if den == 0 {
			return out, fmt.Errorf("zero denominator at index %d", i)
		}
		out[i] = float64(num) / float64(den)
	}
	return out, nil
}

// DMSToDecimal converts degrees, minutes and seconds to signed decimal
// degrees. The reference is case-sensitive: anything other than "N" or "E"
// yields a negative value.
func DMSToDecimal(degrees, minutes, seconds float64, ref string) float64 {
	decimal := degrees + minutes/60 + seconds/3600
	switch strings.Trim(ref, "\x00 ") {
	case "N", "E":
		return decimal
	default:
		return -decimal
	}
}

func hasExif(data []byte) bool {
	return bytes.Contains(data, exifHeader) ||
		bytes.HasPrefix(data, tiffHeaderLittle) ||
		bytes.HasPrefix(data, tiffHeaderBig)
}
