// internal/workers/photo/notify-sheet/models.go
package notifysheet

import (
	"context"

	"listing-photos/internal/models"
)

const (
	SinkWebhook = "webhook"
	SinkSNS     = "sns"
	SinkSES     = "ses"
)

type Input struct {
	Record *models.OutputRecord
}

type Output struct {
	NotificationID string
	Deliveries     []Delivery
}

// Delivery is the outcome of one sink. Err is nil when the sink accepted
// the record.
type Delivery struct {
	Sink string
	Err  error
}

// Publisher is satisfied by the SNS client.
type Publisher interface {
	Publish(ctx context.Context, subject, message string) (string, error)
}

// Mailer is satisfied by the SES client.
type Mailer interface {
	SendEmail(ctx context.Context, to []string, subject, body string) error
}

type snsEnvelope struct {
	NotificationID string               `json:"notification_id"`
	Record         *models.OutputRecord `json:"record"`
}
