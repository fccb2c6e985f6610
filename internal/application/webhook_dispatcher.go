package application

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

// WebhookHandler processes one family of webhook topics
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, delivery *domain.WebhookDelivery) error
}

// WebhookDispatcher routes verified deliveries to the first handler that
// accepts their topic
type WebhookDispatcher struct {
	handlers []WebhookHandler
	audit    *AuditService
	metrics  ports.MetricsRecorder
	logger   zerolog.Logger
}

func NewWebhookDispatcher(audit *AuditService, metrics ports.MetricsRecorder, logger zerolog.Logger, handlers ...WebhookHandler) *WebhookDispatcher {
	return &WebhookDispatcher{
		handlers: handlers,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
	}
}

// Register adds a handler after construction
func (d *WebhookDispatcher) Register(handler WebhookHandler) {
	d.handlers = append(d.handlers, handler)
}

// Dispatch audits the delivery and runs its handler. Duplicate deliveries and
// topics without a handler are acknowledged.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, delivery *domain.WebhookDelivery) error {
	d.audit.Record(ctx, delivery)

	for _, handler := range d.handlers {
		if !handler.CanHandle(delivery.Topic) {
			continue
		}
		err := handler.Handle(ctx, delivery)
		d.metrics.WebhookReceived(delivery.Topic, outcome(err))
		if errors.Is(err, domain.ErrDuplicateEvent) {
			return nil
		}
		return err
	}

	d.logger.Info().
		Str("topic", delivery.Topic).
		Str("shop", delivery.Shop).
		Msg("No handler for webhook topic, acknowledging")
	d.metrics.WebhookReceived(delivery.Topic, ports.OutcomeProcessed)
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return ports.OutcomeProcessed
	case errors.Is(err, domain.ErrDuplicateEvent):
		return ports.OutcomeDuplicate
	case errors.Is(err, domain.ErrMalformedPayload), errors.Is(err, domain.ErrUnknownShop):
		return ports.OutcomeRejected
	default:
		return ports.OutcomeFailed
	}
}
