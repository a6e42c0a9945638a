package notify

import (
	"context"
	"log/slog"

	"github.com/apper-canvas/stylehub-crypto-chip/pkg/kafka"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

// Kafka topic and event type for published notifications.
const (
	TopicNotification       = "stylehub.notification"
	EventNotificationRaised = "notification.raised"
)

// Publisher is the part of the Kafka producer the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// KafkaNotifier publishes notifications as events keyed by session, so one
// shopper's notifications stay ordered.
type KafkaNotifier struct {
	publisher Publisher
	source    string
	logger    *slog.Logger
}

// NewKafkaNotifier returns a notifier publishing through p.
func NewKafkaNotifier(p Publisher, source string, l *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{publisher: p, source: source, logger: l}
}

type notificationPayload struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Session  string   `json:"session_id,omitempty"`
}

// Notify publishes n. Failures are logged and otherwise ignored.
func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) {
	event, err := kafka.NewEvent(EventNotificationRaised, n.Session, k.source, notificationPayload{
		Message:  n.Message,
		Severity: n.Severity,
		Session:  n.Session,
	})
	if err != nil {
		k.logger.WarnContext(ctx, "build notification event", slog.String("error", err.Error()))
		return
	}
	event.At(n.At)
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := k.publisher.Publish(ctx, TopicNotification, event); err != nil {
		k.logger.WarnContext(ctx, "publish notification failed",
			slog.String("message", n.Message),
			slog.String("error", err.Error()),
		)
	}
}
