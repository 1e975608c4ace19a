// internal/workers/photo/parse-upload/handler.go
package parseupload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"strconv"
	"strings"

	"listing-photos/internal/common/logger"
	"listing-photos/internal/common/validation"
	"listing-photos/internal/models"

	"github.com/google/uuid"
)

const (
	TaskType = "parse-upload"
)

var (
	ErrImageMissing   = errors.New("IMAGE_MISSING")
	ErrInvalidRequest = errors.New("INVALID_REQUEST")
)

const (
	imageField = "image_base64"
	fileField  = "file"
)

var uploadSchema = validation.MustSchema(validation.UploadRequestSchema)

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
	req := input.Request

	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(string(body))
		if err != nil {
			return nil, invalid("", "body is not valid base64")
		}
		body = decoded
	}

	var (
		filename string
		data     []byte
		err      error
	)
	if boundary, ok := multipartBoundary(req.Header("Content-Type")); ok {
		filename, data, err = parseMultipart(body, boundary)
	} else {
		filename, data, err = parseJSON(body)
	}
	if err != nil {
		return nil, err
	}

	if h.config.MaxBytes > 0 && int64(len(data)) > h.config.MaxBytes {
		return nil, invalid("", fmt.Sprintf("image exceeds %d bytes", h.config.MaxBytes))
	}

	filename = cleanFilename(filename)
	out := &Output{
		Image:            models.NewUploadedImage(filename, data),
		ManualCoordinate: ParseManualCoordinate(req.Query),
	}

	h.logger.Info("upload parsed", map[string]interface{}{
		"filename":     filename,
		"format":       string(out.Image.Format),
		"bytes":        len(data),
		"manualCoords": out.ManualCoordinate != nil,
	})
	return out, nil
}

func multipartBoundary(contentType string) (string, bool) {
	if contentType == "" {
		return "", false
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.EqualFold(mediaType, "multipart/form-data") {
		return "", false
	}
	boundary := params["boundary"]
	return boundary, boundary != ""
}

// parseMultipart returns the first part that carries a filename.
func parseMultipart(body []byte, boundary string) (string, []byte, error) {
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return "", nil, missing(fileField, "no file part in multipart body")
		}
		if err != nil {
			return "", nil, invalid(fileField, "multipart: "+err.Error())
		}
		if part.FileName() == "" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return "", nil, invalid(fileField, "multipart: "+err.Error())
		}
		if len(data) == 0 {
			return "", nil, missing(fileField, "file part is empty")
		}
		return part.FileName(), data, nil
	}
}

func parseJSON(body []byte) (string, []byte, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil, missing(imageField, "request body is empty")
	}

	result, err := uploadSchema.ValidateBytes(body)
	if err != nil {
		return "", nil, invalid("", "body is not valid JSON")
	}
	if !result.Valid {
		if result.HasCode(imageField, "required") || result.HasCode(imageField, "string_gte") {
			return "", nil, missing(imageField, fmt.Sprintf("field '%s' is missing", imageField))
		}
		return "", nil, invalid("", strings.Join(result.Messages(), "; "))
	}

	var payload jsonBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil, invalid("", err.Error())
	}

	data, err := decodeBase64(payload.ImageBase64)
	if err != nil {
		return "", nil, invalid(imageField, fmt.Sprintf("field '%s' is not valid base64", imageField))
	}
	if len(data) == 0 {
		return "", nil, missing(imageField, fmt.Sprintf("field '%s' is missing", imageField))
	}
	return payload.Filename, data, nil
}

func missing(field, detail string) error {
	return &InputError{Kind: ErrImageMissing, Field: field, Detail: detail}
}

func invalid(field, detail string) error {
	return &InputError{Kind: ErrInvalidRequest, Field: field, Detail: detail}
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	// some clients strip the padding
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

// cleanFilename drops any directory part and falls back to a generated
// upload-<uuid>.jpg name.
func cleanFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name != "" {
		name = path.Base(name)
	}
	if name == "" || name == "." || name == "/" {
		return "upload-" + uuid.NewString() + ".jpg"
	}
	return name
}

// ParseManualCoordinate reads the lat/lon fallback. Any missing, unparsable
// or out-of-range value yields nil.
func ParseManualCoordinate(query map[string]string) *models.GeoCoordinate {
	latStr, lonStr := strings.TrimSpace(query["lat"]), strings.TrimSpace(query["lon"])
	if latStr == "" || lonStr == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil
	}
	coord := models.GeoCoordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return nil
	}
	return &coord
}
