package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/careteam-transfer/internal/config"
	"github.com/spec-kit/careteam-transfer/internal/events"
)

// NotifierService forwards run-lifecycle events to the observability sink.
type NotifierService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotifyConfig
}

// NewNotifierService creates the service.
func NewNotifierService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotifyConfig) *NotifierService {
	return &NotifierService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotifierService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRunStarted, n.handleRunEvent)
	n.dispatcher.Subscribe(events.EventRunSkipped, n.handleRunEvent)
	n.dispatcher.Subscribe(events.EventPatientTransferred, n.handleRunEvent)
	n.dispatcher.Subscribe(events.EventTransferFailed, n.handleFailureEvent)
	n.dispatcher.Subscribe(events.EventRunCompleted, n.handleRunEvent)
	n.dispatcher.Subscribe(events.EventRunFailed, n.handleFailureEvent)
}

func (n *NotifierService) handleRunEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("run_id", event.RunID),
		zap.String("scope", event.Scope),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotifierService) handleFailureEvent(ctx context.Context, event events.Event) error {
	n.logger.Warn(string(event.Type),
		zap.String("run_id", event.RunID),
		zap.String("scope", event.Scope),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotifierService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("run_id", event.RunID),
		zap.String("event_type", string(event.Type)))
}
