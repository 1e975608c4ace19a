// internal/models/photo.go
package models

import (
	"encoding/json"
	"path"
	"strings"
)

// ImageFormat is the container format inferred from an upload's filename extension.
type ImageFormat string

const (
	FormatJPEG    ImageFormat = "jpeg"
	FormatPNG     ImageFormat = "png"
	FormatHEIC    ImageFormat = "heic"
	FormatUnknown ImageFormat = "unknown"
)

// FormatFromFilename infers the image format from the extension, case-insensitively.
func FormatFromFilename(filename string) ImageFormat {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".png":
		return FormatPNG
	case ".heic", ".heif":
		return FormatHEIC
	default:
		return FormatUnknown
	}
}

// UploadedImage is the raw photo as received from the caller.
type UploadedImage struct {
	Filename string
	Data     []byte
	Format   ImageFormat
}

// NewUploadedImage builds an UploadedImage, inferring the format from filename.
func NewUploadedImage(filename string, data []byte) *UploadedImage {
	return &UploadedImage{
		Filename: filename,
		Data:     data,
		Format:   FormatFromFilename(filename),
	}
}

// GeoCoordinate is a pair of signed decimal degrees.
type GeoCoordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are within their ranges.
func (c GeoCoordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// StepStatus is the outcome of an optional enrichment step.
type StepStatus string

const (
	StepFound  StepStatus = "found"
	StepAbsent StepStatus = "absent"
	StepFailed StepStatus = "failed"
)

// StatusTag marks a listing as offered for sale or for rent.
type StatusTag string

const (
	StatusForSale StatusTag = "for_sale"
	StatusForRent StatusTag = "for_rent"
)

// ClassifiedSignals is derived from the detected text of one photo.
type ClassifiedSignals struct {
	StatusTags   []StatusTag
	HouseNumber  *int
	PhoneNumbers []string
}

// OutputRecord is returned to the caller and forwarded to the notification sinks.
type OutputRecord struct {
	GPS          *GeoCoordinate `json:"gps"`
	Address      *string        `json:"endereco"`
	Status       []StatusTag    `json:"status"`
	HouseNumber  *int           `json:"numero_casa"`
	PhoneNumbers []string       `json:"telefones"`
	PhotoURL     string         `json:"foto_url"`
}

// NewOutputRecord merges the pipeline results into one record.
func NewOutputRecord(gps *GeoCoordinate, address *string, signals ClassifiedSignals, photoURL string) *OutputRecord {
	return &OutputRecord{
		GPS:          gps,
		Address:      address,
		Status:       signals.StatusTags,
		HouseNumber:  signals.HouseNumber,
		PhoneNumbers: signals.PhoneNumbers,
		PhotoURL:     photoURL,
	}
}

// MarshalJSON keeps status and telefones as arrays even when empty.
func (r OutputRecord) MarshalJSON() ([]byte, error) {
	type alias OutputRecord
	out := alias(r)
	if out.Status == nil {
		out.Status = []StatusTag{}
	}
	if out.PhoneNumbers == nil {
		out.PhoneNumbers = []string{}
	}
	return json.Marshal(out)
}

// StatusStrings returns the status tags as plain strings.
func (r *OutputRecord) StatusStrings() []string {
	out := make([]string, len(r.Status))
	for i, s := range r.Status {
		out[i] = string(s)
	}
	return out
}
