package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadRequestSchema(t *testing.T) {
	schema := MustSchema(UploadRequestSchema)

	tests := []struct {
		name      string
		doc       string
		valid     bool
		field     string
		errorCode string
	}{
		{name: "image and filename", doc: `{"image_base64":"aGVsbG8=","filename":"a.jpg"}`, valid: true},
		{name: "image only", doc: `{"image_base64":"aGVsbG8="}`, valid: true},
		{name: "coordinates as strings", doc: `{"image_base64":"aGVsbG8=","lat":"-23.5","lon":"-46.6"}`, valid: true},
		{name: "null filename", doc: `{"image_base64":"aGVsbG8=","filename":null}`, valid: true},
		{name: "null coordinates", doc: `{"image_base64":"aGVsbG8=","lat":null,"lon":null}`, valid: true},
		{name: "missing image", doc: `{"filename":"a.jpg"}`, field: "image_base64", errorCode: "required"},
		{name: "empty image", doc: `{"image_base64":""}`, field: "image_base64", errorCode: "string_gte"},
		{name: "filename wrong type", doc: `{"image_base64":"aGVsbG8=","filename":12}`, field: "filename", errorCode: "invalid_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.ValidateBytes([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.True(t, result.HasCode(tt.field, tt.errorCode), "errors: %v", result.Messages())
			}
		})
	}
}

func TestSchema_ValidateBytes_NotJSON(t *testing.T) {
	schema := MustSchema(UploadRequestSchema)
	_, err := schema.ValidateBytes([]byte("{not json"))
	assert.Error(t, err)
}

func TestSchema_ValidateInput(t *testing.T) {
	schema := MustSchema(UploadRequestSchema)

	result, err := schema.ValidateInput(map[string]interface{}{
		"image_base64": "aGVsbG8=",
		"lat":          -23.5,
		"lon":          -46.6,
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = schema.ValidateInput(map[string]interface{}{"lat": -23.5})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.HasCode("image_base64", "required"))
}

func TestNewSchema_Invalid(t *testing.T) {
	_, err := NewSchema(`{"type": 12}`)
	assert.Error(t, err)
}
