// Package sink surfaces notifications to the outside. Delivery is
// best-effort everywhere: a sink failure never affects stored state.
package sink

import (
	"context"
	"time"

	"go.uber.org/zap"

	mqcontracts "careminder/contracts/mq"
	"careminder/internal/model"
	"careminder/pkg/mq"
)

// Sink receives store mutations: Present for each new notification,
// RenderUnread whenever the unread count changes.
type Sink interface {
	Present(ctx context.Context, n model.Notification)
	RenderUnread(ctx context.Context, unread int)
}

// LogSink writes notifications to the service log. Always available.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Present(ctx context.Context, n model.Notification) {
	s.logger.Info("Notification",
		zap.Int64("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Title),
		zap.String("message", n.Message),
		zap.String("priority", string(n.Priority)),
		zap.String("icon", n.Kind.Meta().Icon),
	)
}

func (s *LogSink) RenderUnread(ctx context.Context, unread int) {
	s.logger.Info("Unread count changed", zap.Int("unread", unread))
}

// MQSink publishes notification events for downstream delivery channels
// (in-app feed, OS-level alerting).
type MQSink struct {
	publisher *mq.Publisher
	logger    *zap.Logger
}

func NewMQSink(publisher *mq.Publisher, logger *zap.Logger) *MQSink {
	return &MQSink{
		publisher: publisher,
		logger:    logger,
	}
}

func (s *MQSink) Present(ctx context.Context, n model.Notification) {
	payload := mqcontracts.NotificationCreatedPayload{
		NotificationID: n.ID,
		Kind:           string(n.Kind),
		Title:          n.Title,
		Message:        n.Message,
		Priority:       string(n.Priority),
		CreatedAt:      n.CreatedAt,
	}
	if err := s.publisher.Publish(mqcontracts.RoutingKeyNotificationCreated, payload); err != nil {
		// best-effort: the notification is already persisted
		s.logger.Warn("Failed to publish notification.created",
			zap.Int64("notification_id", n.ID),
			zap.Error(err),
		)
	}
}

func (s *MQSink) RenderUnread(ctx context.Context, unread int) {
	payload := mqcontracts.UnreadChangedPayload{
		Unread:    unread,
		ChangedAt: time.Now(),
	}
	if err := s.publisher.Publish(mqcontracts.RoutingKeyUnreadChanged, payload); err != nil {
		s.logger.Warn("Failed to publish notification.unread_changed", zap.Error(err))
	}
}

// MultiSink fans one mutation out to several sinks.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (s *MultiSink) Present(ctx context.Context, n model.Notification) {
	for _, sink := range s.sinks {
		sink.Present(ctx, n)
	}
}

func (s *MultiSink) RenderUnread(ctx context.Context, unread int) {
	for _, sink := range s.sinks {
		sink.RenderUnread(ctx, unread)
	}
}
