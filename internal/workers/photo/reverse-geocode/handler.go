// internal/workers/photo/reverse-geocode/handler.go
package reversegeocode

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	commonhttp "listing-photos/internal/common/http"
	"listing-photos/internal/common/logger"
	"listing-photos/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	TaskType = "reverse-geocode"
)

var (
	ErrGeocodingFailed      = errors.New("GEOCODING_FAILED")
	ErrGeocodingRateLimited = errors.New("GEOCODING_RATE_LIMITED")
)

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

type Handler struct {
	config  *Config
	client  *commonhttp.Client
	redis   *redis.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewHandler builds the geocoder. redisClient may be nil, in which case
// lookups are never cached.
func NewHandler(config *Config, redisClient *redis.Client, log logger.Logger) *Handler {
	h := &Handler{
		config: config,
		client: commonhttp.NewClient(config.Timeout),
		redis:  redisClient,
		logger: log.WithFields(map[string]interface{}{"stage": TaskType}),
	}
	if config.RateLimit > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}
	return h
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	coord := input.Coordinate
	key := h.cacheKey(coord)

	if address, ok := h.cached(ctx, key); ok {
		h.logger.Debug("address served from cache", map[string]interface{}{"key": key})
		return &Output{Result: Result{Address: &address, Status: models.StepFound, Cached: true}}, nil
	}

	result := h.lookup(ctx, coord)

	fields := map[string]interface{}{
		"lat":    coord.Lat,
		"lon":    coord.Lon,
		"status": string(result.Status),
	}
	switch result.Status {
	case models.StepFound:
		h.store(ctx, key, *result.Address)
		h.logger.Info("address resolved", fields)
	case models.StepFailed:
		fields["error"] = result.Reason.Error()
		h.logger.Warn("reverse geocoding failed", fields)
	default:
		h.logger.Info("no address for coordinate", fields)
	}

	return &Output{Result: result}, nil
}

func (h *Handler) lookup(ctx context.Context, coord models.GeoCoordinate) Result {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return Result{Status: models.StepFailed, Reason: fmt.Errorf("%w: %v", ErrGeocodingRateLimited, err)}
		}
	}

	var resp geocodeResponse
	if err := h.client.GetJSON(ctx, h.buildURL(coord), &resp); err != nil {
		return Result{Status: models.StepFailed, Reason: fmt.Errorf("%w: %v", ErrGeocodingFailed, err)}
	}

	switch resp.Status {
	case statusOK, "":
	case statusZeroResults:
		return Result{Status: models.StepAbsent}
	default:
		return Result{
			Status: models.StepFailed,
			Reason: fmt.Errorf("%w: %s: %s", ErrGeocodingFailed, resp.Status, resp.ErrorMessage),
		}
	}

	if len(resp.Results) == 0 || resp.Results[0].FormattedAddress == "" {
		return Result{Status: models.StepAbsent}
	}
	address := resp.Results[0].FormattedAddress
	return Result{Address: &address, Status: models.StepFound}
}

func (h *Handler) buildURL(coord models.GeoCoordinate) string {
	params := url.Values{}
	params.Set("latlng", formatCoord(coord.Lat)+","+formatCoord(coord.Lon))
	params.Set("key", h.config.APIKey)
	if h.config.Language != "" {
		params.Set("language", h.config.Language)
	}
	return h.config.BaseURL + "?" + params.Encode()
}

func (h *Handler) cacheEnabled() bool {
	return h.redis != nil && h.config.CacheEnabled
}

// cacheKey rounds to 5 decimals, about one metre.
func (h *Handler) cacheKey(coord models.GeoCoordinate) string {
	return fmt.Sprintf("%s%.5f,%.5f", h.config.CachePrefix, coord.Lat, coord.Lon)
}

func (h *Handler) cached(ctx context.Context, key string) (string, bool) {
	if !h.cacheEnabled() {
		return "", false
	}
	val, err := h.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("geocode cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return "", false
	}
	return val, val != ""
}

func (h *Handler) store(ctx context.Context, key, address string) {
	if !h.cacheEnabled() {
		return
	}
	if err := h.redis.Set(ctx, key, address, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("geocode cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
