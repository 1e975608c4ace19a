// internal/app/app.go
package app

import (
	"context"
	"fmt"

	commonaws "listing-photos/internal/common/aws"
	"listing-photos/internal/common/config"
	"listing-photos/internal/common/database"
	"listing-photos/internal/common/logger"
	"listing-photos/internal/common/observability"
	classifytext "listing-photos/internal/workers/photo/classify-text"
	extractgps "listing-photos/internal/workers/photo/extract-gps"
	normalizeimage "listing-photos/internal/workers/photo/normalize-image"
	notifysheet "listing-photos/internal/workers/photo/notify-sheet"
	parseupload "listing-photos/internal/workers/photo/parse-upload"
	processphoto "listing-photos/internal/workers/photo/process-photo"
	reversegeocode "listing-photos/internal/workers/photo/reverse-geocode"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/redis/go-redis/v9"
)

// App holds the fully wired pipeline shared by every entrypoint.
type App struct {
	Config        *config.Config
	Handler       *processphoto.Handler
	Redis         *database.RedisClient
	Observability *observability.Observability
	logger        logger.Logger
}

// Collaborators overrides the AWS-backed parts of the pipeline. Nil fields
// are built from the AWS configuration.
type Collaborators struct {
	Store     processphoto.BlobStore
	Detector  processphoto.TextDetector
	Publisher notifysheet.Publisher
	Mailer    notifysheet.Mailer
}

// Build wires the pipeline from configuration. Redis is optional: when it is
// not configured or does not answer, the geocode cache is disabled.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	return BuildWith(ctx, cfg, Collaborators{}, log)
}

func BuildWith(ctx context.Context, cfg *config.Config, c Collaborators, log logger.Logger) (*App, error) {
	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("observability disabled", map[string]interface{}{"error": err.Error()})
	}

	if c.needsAWS(cfg.AWS) {
		awsCfg, err := commonaws.LoadConfig(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		fillFromAWS(&c, awsCfg, cfg.AWS)
	}

	a := &App{
		Config:        cfg,
		Observability: obs,
		logger:        log,
	}

	var redisClient *redis.Client
	if cfg.Database.Redis.Address != "" {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err == nil {
			err = rc.Ping(ctx)
		}
		if err != nil {
			log.Warn("redis unavailable, geocode cache disabled", map[string]interface{}{
				"address": cfg.Database.Redis.Address,
				"error":   err.Error(),
			})
			if rc != nil {
				_ = rc.Close()
			}
		} else {
			a.Redis = rc
			redisClient = rc.Client
		}
	}

	classifier, err := classifytext.NewHandler(classifytext.FromAppConfig(cfg.Classifier), log)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := processphoto.Dependencies{
		Parser:        parseupload.NewHandler(parseupload.FromAppConfig(cfg.Server), log),
		Normalizer:    normalizeimage.NewHandler(normalizeimage.FromAppConfig(cfg.Normalizer), log),
		GPS:           extractgps.NewHandler(extractgps.LoadConfig(), log),
		Classifier:    classifier,
		Geocoder:      reversegeocode.NewHandler(reversegeocode.FromAppConfig(cfg.Geocoding), redisClient, log),
		Notifier:      notifysheet.NewHandler(notifysheet.FromAppConfig(cfg.Notification, cfg.AWS), c.Publisher, c.Mailer, log),
		Store:         c.Store,
		Detector:      c.Detector,
		Observability: obs,
	}
	a.Handler = processphoto.NewHandler(processphoto.FromAppConfig(cfg), deps, log)

	log.Info("pipeline wired", map[string]interface{}{
		"bucket":       cfg.AWS.S3.Bucket,
		"geocodeCache": redisClient != nil && cfg.Geocoding.Cache.Enabled,
		"snsEnabled":   cfg.AWS.SNS.Enabled,
		"sesEnabled":   cfg.AWS.SES.Enabled,
	})
	return a, nil
}

func (c Collaborators) needsAWS(cfg config.AWSConfig) bool {
	return c.Store == nil || c.Detector == nil ||
		(cfg.SNS.Enabled && c.Publisher == nil) ||
		(cfg.SES.Enabled && c.Mailer == nil)
}

// fillFromAWS builds the missing collaborators. Disabled sinks stay nil.
func fillFromAWS(c *Collaborators, awsCfg aws.Config, cfg config.AWSConfig) {
	if c.Store == nil {
		c.Store = commonaws.NewS3BlobStore(awsCfg, cfg.S3.Bucket, cfg.S3.PublicRegion, cfg.S3.ContentType)
	}
	if c.Detector == nil {
		c.Detector = commonaws.NewRekognitionTextDetector(awsCfg, cfg.Rekognition.MinConfidence)
	}
	if c.Publisher == nil && cfg.SNS.Enabled {
		c.Publisher = commonaws.NewSNSClient(awsCfg, cfg.SNS.TopicARN)
	}
	if c.Mailer == nil && cfg.SES.Enabled {
		c.Mailer = commonaws.NewSESClient(awsCfg, cfg.SES.FromEmail)
	}
}

// Ready reports whether the optional dependencies answer.
func (a *App) Ready(ctx context.Context) error {
	if a.Redis != nil {
		return a.Redis.Ping(ctx)
	}
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", map[string]interface{}{"error": err.Error()})
		}
	}
	a.Observability.Shutdown()
}
