// Package notify delivers the short user-facing messages raised by store
// mutations. Delivery is fire-and-forget: a failing notifier never fails the
// mutation that raised it.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Severity classifies a notification for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

// Notification is a single user-facing message.
type Notification struct {
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	Session  string    `json:"-"`
	At       time.Time `json:"at"`
}

// Notifier receives notifications. Implementations must not block for long
// and must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notification)

// Notify calls f.
func (f Func) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// Nop discards every notification.
var Nop Notifier = Func(func(context.Context, Notification) {})

// Multi fans a notification out to every member in order. A panicking member
// is logged and skipped.
type Multi struct {
	notifiers []Notifier
	logger    *slog.Logger
}

// NewMulti combines notifiers; nil members are dropped.
func NewMulti(logger *slog.Logger, notifiers ...Notifier) *Multi {
	m := &Multi{logger: logger}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Notify delivers n to every member.
func (m *Multi) Notify(ctx context.Context, n Notification) {
	for _, member := range m.notifiers {
		m.deliver(ctx, member, n)
	}
}

func (m *Multi) deliver(ctx context.Context, member Notifier, n Notification) {
	defer func() {
		if rec := recover(); rec != nil {
			m.logger.ErrorContext(ctx, "notifier panicked",
				slog.Any("panic", rec),
				slog.String("message", n.Message),
			)
		}
	}()
	member.Notify(ctx, n)
}
