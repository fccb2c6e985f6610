package webhook_handlers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shopify-app-backend/internal/application"
	"shopify-app-backend/internal/domain"
)

// localTimestampLayout is accepted for created_at values without an offset
const localTimestampLayout = "2006-01-02T15:04:05"

// OrderHandler handles orders/create webhook events
type OrderHandler struct {
	orders *application.OrderService
	logger zerolog.Logger
}

// NewOrderHandler creates a new order webhook handler
func NewOrderHandler(orders *application.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *OrderHandler) CanHandle(topic string) bool {
	return topic == domain.TopicOrdersCreate
}

type orderCreatedPayload struct {
	ID                   json.RawMessage `json:"id"`
	Currency             json.RawMessage `json:"currency"`
	CurrentSubtotalPrice json.RawMessage `json:"current_subtotal_price"`
	CreatedAt            *string         `json:"created_at"`
}

// Handle stores the order carried by an orders/create delivery
func (h *OrderHandler) Handle(ctx context.Context, delivery *domain.WebhookDelivery) error {
	var payload orderCreatedPayload
	if err := json.Unmarshal(delivery.Payload, &payload); err != nil {
		h.logger.Error().Err(err).Str("shop", delivery.Shop).Msg("Failed to parse order webhook payload")
		return domain.MissingField("body")
	}

	if payload.CreatedAt == nil {
		return domain.MissingField("created_at")
	}
	createdAt, err := parseTimestamp(*payload.CreatedAt)
	if err != nil {
		return domain.MissingField("created_at")
	}

	if delivery.EventID == "" {
		return domain.MissingField("X-Shopify-Event-Id")
	}

	h.logger.Debug().
		Str("shop", delivery.Shop).
		Str("event_id", delivery.EventID).
		Msg("Processing order webhook event")

	return h.orders.Ingest(ctx, &application.IncomingOrder{
		ShopDomain:           delivery.Shop,
		EventID:              delivery.EventID,
		CreatedAt:            createdAt,
		ID:                   payload.ID,
		Currency:             payload.Currency,
		CurrentSubtotalPrice: payload.CurrentSubtotalPrice,
	})
}

// parseTimestamp converts an ISO-8601 timestamp to epoch seconds. Values
// without an offset are read as UTC.
func parseTimestamp(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.Unix(), nil
	}
	t, err := time.ParseInLocation(localTimestampLayout, raw, time.UTC)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}
