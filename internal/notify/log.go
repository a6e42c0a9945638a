package notify

import (
	"context"
	"log/slog"

	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier logging through l.
func NewLogNotifier(l *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: l}
}

// Notify logs n at info level.
func (l *LogNotifier) Notify(ctx context.Context, n Notification) {
	logger.WithContext(ctx, l.logger).InfoContext(ctx, "notification",
		slog.String("message", n.Message),
		slog.String("severity", string(n.Severity)),
	)
}
