package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"listing-photos/internal/common/config"
	"listing-photos/internal/common/logger"
	"listing-photos/internal/models"
	"listing-photos/internal/testutil"
	parseupload "listing-photos/internal/workers/photo/parse-upload"
	processphoto "listing-photos/internal/workers/photo/process-photo"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	objects map[string][]byte
}

func (m *memoryStore) Put(_ context.Context, key string, data []byte) error {
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	return nil
}

func (m *memoryStore) PublicURL(key string) string {
	return "https://photos.s3.sa-east-1.amazonaws.com/" + key
}

func (m *memoryStore) Bucket() string { return "photos" }

type staticDetector []string

func (d staticDetector) DetectText(context.Context, string, string) ([]string, error) {
	return append([]string(nil), d...), nil
}

func createTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "listing-photos-test"
	cfg.Server.RequestTimeout = 5000
	cfg.AWS.Region = "sa-east-1"
	cfg.AWS.S3.Bucket = "photos"
	cfg.Classifier = config.ClassifierConfig{
		SaleTokens:   []string{"vende"},
		RentTokens:   []string{"aluga"},
		PhonePattern: config.DefaultPhonePattern,
	}
	cfg.Normalizer = config.NormalizerConfig{JPEGQuality: 90, KeepExif: true}
	return cfg
}

func testCollaborators(texts ...string) (Collaborators, *memoryStore) {
	store := &memoryStore{}
	return Collaborators{Store: store, Detector: staticDetector(texts)}, store
}

func TestBuildWith_ProcessesUpload(t *testing.T) {
	c, store := testCollaborators("VENDE", "42")
	a, err := BuildWith(context.Background(), createTestConfig(), c, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	body, err := json.Marshal(map[string]string{
		"image_base64": base64.StdEncoding.EncodeToString(testutil.JPEG(8, 8)),
		"filename":     "casa.jpg",
	})
	require.NoError(t, err)

	record, err := a.Handler.Process(context.Background(), &parseupload.Request{
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}, processphoto.EntrypointHTTP)
	require.NoError(t, err)

	assert.Equal(t, []models.StatusTag{models.StatusForSale}, record.Status)
	require.NotNil(t, record.HouseNumber)
	assert.Equal(t, 42, *record.HouseNumber)
	assert.Nil(t, record.GPS)
	assert.Nil(t, record.Address)
	assert.Len(t, store.objects, 1)
	assert.Contains(t, record.PhotoURL, "/casa.jpg")
}

func TestBuildWith_RedisReadiness(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := createTestConfig()
	cfg.Database.Redis.Address = mr.Addr()
	cfg.Geocoding.Cache.Enabled = true

	c, _ := testCollaborators()
	a, err := BuildWith(context.Background(), cfg, c, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Redis)
	assert.NoError(t, a.Ready(context.Background()))

	mr.Close()
	assert.Error(t, a.Ready(context.Background()))
}

func TestBuildWith_RedisDownDisablesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := createTestConfig()
	cfg.Database.Redis.Address = addr

	c, _ := testCollaborators()
	a, err := BuildWith(context.Background(), cfg, c, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	assert.NoError(t, a.Ready(context.Background()))
}

func TestBuildWith_InvalidPhonePattern(t *testing.T) {
	cfg := createTestConfig()
	cfg.Classifier.PhonePattern = "("

	c, _ := testCollaborators()
	_, err := BuildWith(context.Background(), cfg, c, logger.NewTestLogger(t))
	assert.Error(t, err)
}

func TestCollaborators_NeedsAWS(t *testing.T) {
	c, _ := testCollaborators()
	var awsCfg config.AWSConfig
	assert.False(t, c.needsAWS(awsCfg))

	awsCfg.SNS.Enabled = true
	assert.True(t, c.needsAWS(awsCfg))

	assert.True(t, Collaborators{}.needsAWS(config.AWSConfig{}))
}
