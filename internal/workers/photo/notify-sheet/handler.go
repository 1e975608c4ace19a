// internal/workers/photo/notify-sheet/handler.go
package notifysheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	commonhttp "listing-photos/internal/common/http"
	"listing-photos/internal/common/logger"
	"listing-photos/internal/models"

	"github.com/google/uuid"
)

const (
	TaskType = "notify-sheet"
)

var (
	ErrNotificationFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

type Handler struct {
	config    *Config
	client    *commonhttp.Client
	publisher Publisher
	mailer    Mailer
	logger    logger.Logger
}

// NewHandler wires the sinks. publisher and mailer may be nil; a sink is
// used only when it is both enabled and wired.
func NewHandler(config *Config, publisher Publisher, mailer Mailer, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		client:    commonhttp.NewClient(config.Timeout),
		publisher: publisher,
		mailer:    mailer,
		logger:    log.WithFields(map[string]interface{}{"stage": TaskType}),
	}
}

// Execute delivers the record to every configured sink. Delivery failures
// are reported in the output and logged, never returned.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{NotificationID: uuid.NewString()}
	log := h.logger.WithFields(map[string]interface{}{"notificationId": out.NotificationID})

	if h.config.WebhookURL != "" {
		out.Deliveries = append(out.Deliveries, h.deliver(log, SinkWebhook, func() error {
			return h.client.PostJSON(ctx, h.config.WebhookURL, input.Record)
		}))
	}

	if h.config.SNSEnabled && h.publisher != nil {
		out.Deliveries = append(out.Deliveries, h.deliver(log, SinkSNS, func() error {
			msg, err := json.Marshal(snsEnvelope{NotificationID: out.NotificationID, Record: input.Record})
			if err != nil {
				return err
			}
			_, err = h.publisher.Publish(ctx, h.config.Subject, string(msg))
			return err
		}))
	}

	if h.config.SESEnabled && h.mailer != nil && len(h.config.Recipients) > 0 {
		out.Deliveries = append(out.Deliveries, h.deliver(log, SinkSES, func() error {
			return h.mailer.SendEmail(ctx, h.config.Recipients, h.config.Subject, FormatSummary(input.Record))
		}))
	}

	return out, nil
}

func (h *Handler) deliver(log logger.Logger, sink string, send func() error) Delivery {
	if err := send(); err != nil {
		wrapped := fmt.Errorf("%w: %s: %v", ErrNotificationFailed, sink, err)
		log.Warn("notification failed", map[string]interface{}{
			"sink":  sink,
			"error": err.Error(),
		})
		return Delivery{Sink: sink, Err: wrapped}
	}
	log.Info("notification sent", map[string]interface{}{"sink": sink})
	return Delivery{Sink: sink}
}

// FormatSummary renders the record as a short plain-text e-mail body.
func FormatSummary(r *models.OutputRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Foto: %s\n", r.PhotoURL)

	address := "-"
	if r.Address != nil {
		address = *r.Address
	}
	fmt.Fprintf(&b, "Endereço: %s\n", address)

	gps := "-"
	if r.GPS != nil {
		gps = strconv.FormatFloat(r.GPS.Lat, 'f', 6, 64) + ", " + strconv.FormatFloat(r.GPS.Lon, 'f', 6, 64)
	}
	fmt.Fprintf(&b, "GPS: %s\n", gps)

	status := "-"
	if len(r.Status) > 0 {
		status = strings.Join(r.StatusStrings(), ", ")
	}
	fmt.Fprintf(&b, "Status: %s\n", status)

	number := "-"
	if r.HouseNumber != nil {
		number = strconv.Itoa(*r.HouseNumber)
	}
	fmt.Fprintf(&b, "Número: %s\n", number)

	phones := "-"
	if len(r.PhoneNumbers) > 0 {
		phones = strings.Join(r.PhoneNumbers, ", ")
	}
	fmt.Fprintf(&b, "Telefones: %s\n", phones)

	return b.String()
}
