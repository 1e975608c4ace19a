// internal/workers/photo/process-photo/handler.go
package processphoto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	commonerrors "listing-photos/internal/common/errors"
	"listing-photos/internal/common/logger"
	"listing-photos/internal/common/metrics"
	"listing-photos/internal/common/observability"
	"listing-photos/internal/models"
	classifytext "listing-photos/internal/workers/photo/classify-text"
	extractgps "listing-photos/internal/workers/photo/extract-gps"
	normalizeimage "listing-photos/internal/workers/photo/normalize-image"
	notifysheet "listing-photos/internal/workers/photo/notify-sheet"
	parseupload "listing-photos/internal/workers/photo/parse-upload"
	reversegeocode "listing-photos/internal/workers/photo/reverse-geocode"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "process-listing-photo"
)

const (
	outcomeSuccess     = "success"
	outcomeClientError = "client_error"
	outcomeError       = "error"
)

// Dependencies are the stages and collaborators the pipeline runs. All are
// required except Observability and Now.
type Dependencies struct {
	Parser     UploadParser
	Normalizer ImageNormalizer
	GPS        GPSExtractor
	Classifier TextClassifier
	Geocoder   Geocoder
	Notifier   Notifier
	Store      BlobStore
	Detector   TextDetector

	Observability *observability.Observability
	Now           func() time.Time
}

type Handler struct {
	config     *Config
	deps       Dependencies
	errHandler *commonerrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		deps:       deps,
		errHandler: commonerrors.NewErrorHandler(l),
		logger:     l,
	}
}

// Handle is the Zeebe job entry. Job variables carry the JSON upload fields
// plus optional lat and lon.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	req, err := RequestFromVariables(job.Variables)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	record, err := h.Process(ctx, req, EntrypointZeebe)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(&Output{Record: record})
	if err != nil {
		h.logger.Error("failed to build complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

// RequestFromVariables builds an upload request from Zeebe job variables.
// lat and lon may be numbers or strings.
func RequestFromVariables(variables string) (*parseupload.Request, error) {
	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &vars); err != nil {
		return nil, commonerrors.NewInvalidRequestError("job variables are not a JSON object", err)
	}

	query := make(map[string]string)
	for _, k := range []string{"lat", "lon"} {
		switch v := vars[k].(type) {
		case float64:
			query[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			query[k] = v
		}
	}

	return &parseupload.Request{
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    []byte(variables),
		Query:   query,
	}, nil
}

// Process runs the whole pipeline for one request. On error the returned
// record is nil and the error is a *commonerrors.StandardError.
func (h *Handler) Process(ctx context.Context, req *parseupload.Request, entrypoint string) (record *models.OutputRecord, err error) {
	start := time.Now()
	metrics.PhotoJobsActive.Inc()
	log := h.logger.WithFields(map[string]interface{}{"entrypoint": entrypoint})

	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = commonerrors.NewInternalError(fmt.Errorf("panic: %v", r))
			log.Error("pipeline panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			})
		}

		outcome := outcomeFor(err)
		metrics.PhotoJobsActive.Dec()
		metrics.PhotoRequests.WithLabelValues(outcome).Inc()
		h.deps.Observability.RecordRun(ctx, entrypoint, outcome, time.Since(start))
	}()

	record, err = h.run(ctx, req, log)
	if err != nil {
		stdErr := commonerrors.Normalize(err)
		fields := map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     stdErr.Error(),
		}
		if commonerrors.IsClientError(stdErr.Code) {
			log.Warn("request rejected", fields)
		} else {
			fields["stack"] = string(debug.Stack())
			log.Error("pipeline failed", fields)
		}
		return nil, stdErr
	}

	log.Info("photo processed", map[string]interface{}{
		"photoUrl":   record.PhotoURL,
		"hasGps":     record.GPS != nil,
		"hasAddress": record.Address != nil,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return record, nil
}

func (h *Handler) run(ctx context.Context, req *parseupload.Request, log logger.Logger) (*models.OutputRecord, error) {
	// ReceiveRequest
	var parsed *parseupload.Output
	err := observeStage(parseupload.TaskType, func() (err error) {
		parsed, err = h.deps.Parser.Execute(ctx, &parseupload.Input{Request: req})
		return err
	})
	if err != nil {
		return nil, inputError(err)
	}

	// NormalizeImage
	var normalized *normalizeimage.Output
	err = observeStage(normalizeimage.TaskType, func() (err error) {
		normalized, err = h.deps.Normalizer.Execute(ctx, &normalizeimage.Input{Image: parsed.Image})
		return err
	})
	if err != nil {
		return nil, commonerrors.NewImageDecodeFailedError(parsed.Image.Filename, err)
	}
	img := normalized.Image

	// PersistImage
	key := h.deps.Now().UTC().Format(h.config.KeyDateLayout) + "/" + img.Filename
	err = observeStage("persist-image", func() error {
		return h.deps.Store.Put(ctx, key, img.Data)
	})
	if err != nil {
		return nil, commonerrors.NewStorageUploadFailedError(key, err)
	}
	log = log.WithFields(map[string]interface{}{"key": key})

	// ExtractSignals
	coord := h.coordinate(ctx, img, parsed.ManualCoordinate, log)

	var texts []string
	err = observeStage("detect-text", func() (err error) {
		texts, err = h.deps.Detector.DetectText(ctx, h.deps.Store.Bucket(), key)
		return err
	})
	if err != nil {
		return nil, commonerrors.NewTextDetectionFailedError(key, err)
	}
	for i := range texts {
		texts[i] = strings.ToLower(texts[i])
	}

	var classified *classifytext.Output
	err = observeStage(classifytext.TaskType, func() (err error) {
		classified, err = h.deps.Classifier.Execute(ctx, &classifytext.Input{Texts: texts})
		return err
	})
	if err != nil {
		return nil, commonerrors.NewInternalError(err)
	}

	// EnrichAddress
	var address *string
	if coord != nil {
		address = h.address(ctx, *coord, log)
	}

	// EmitResult
	record := models.NewOutputRecord(coord, address, classified.Signals, h.deps.Store.PublicURL(key))
	h.notify(ctx, record, log)

	return record, nil
}

// coordinate prefers EXIF GPS and falls back to the caller's lat/lon.
func (h *Handler) coordinate(ctx context.Context, img *models.UploadedImage, manual *models.GeoCoordinate, log logger.Logger) *models.GeoCoordinate {
	var out *extractgps.Output
	err := observeStage(extractgps.TaskType, func() (err error) {
		out, err = h.deps.GPS.Execute(ctx, &extractgps.Input{Filename: img.Filename, Data: img.Data})
		return err
	})

	status := models.StepFailed
	if err == nil {
		status = out.Result.Status
	}
	metrics.PhotoEnrichment.WithLabelValues(extractgps.TaskType, string(status)).Inc()

	if status == models.StepFound {
		return out.Result.Coordinate
	}
	if err != nil {
		log.Warn("gps extraction errored", map[string]interface{}{"error": err.Error()})
	}
	if manual != nil {
		log.Info("using manual coordinate", map[string]interface{}{
			"lat": manual.Lat,
			"lon": manual.Lon,
		})
		return manual
	}
	return nil
}

func (h *Handler) address(ctx context.Context, coord models.GeoCoordinate, log logger.Logger) *string {
	var out *reversegeocode.Output
	err := observeStage(reversegeocode.TaskType, func() (err error) {
		out, err = h.deps.Geocoder.Execute(ctx, &reversegeocode.Input{Coordinate: coord})
		return err
	})
	if err == nil && out.Result.Status == models.StepFailed {
		err = out.Result.Reason
	}
	if err != nil {
		metrics.PhotoEnrichment.WithLabelValues(reversegeocode.TaskType, string(models.StepFailed)).Inc()
		stdErr := commonerrors.NewGeocodingFailedError(err)
		log.Warn("address enrichment skipped", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     stdErr.Error(),
		})
		return nil
	}
	metrics.PhotoEnrichment.WithLabelValues(reversegeocode.TaskType, string(out.Result.Status)).Inc()
	return out.Result.Address
}

func (h *Handler) notify(ctx context.Context, record *models.OutputRecord, log logger.Logger) {
	var out *notifysheet.Output
	err := observeStage(notifysheet.TaskType, func() (err error) {
		out, err = h.deps.Notifier.Execute(ctx, &notifysheet.Input{Record: record})
		return err
	})
	if err != nil {
		log.Warn("notification errored", map[string]interface{}{"error": err.Error()})
		return
	}
	for _, d := range out.Deliveries {
		result := outcomeSuccess
		if d.Err != nil {
			result = outcomeError
			stdErr := commonerrors.NewNotificationSendFailedError(d.Sink, d.Err)
			log.Debug("notification absorbed", map[string]interface{}{
				"errorCode": string(stdErr.Code),
				"sink":      d.Sink,
				"retryable": stdErr.Retryable,
			})
		}
		metrics.PhotoNotifications.WithLabelValues(d.Sink, result).Inc()
	}
}

func observeStage(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.PhotoStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return err
}

func inputError(err error) error {
	var inputErr *parseupload.InputError
	if errors.As(err, &inputErr) {
		if errors.Is(inputErr.Kind, parseupload.ErrImageMissing) {
			return commonerrors.NewImageMissingError(inputErr.Field)
		}
		return commonerrors.NewInvalidRequestError(inputErr.Detail, err)
	}
	return commonerrors.NewInternalError(err)
}

func outcomeFor(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	if commonerrors.IsClientError(commonerrors.Normalize(err).Code) {
		return outcomeClientError
	}
	return outcomeError
}
