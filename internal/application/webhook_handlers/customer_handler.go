package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"shopify-app-backend/internal/domain"
)

// CustomerPrivacyHandler acknowledges the mandatory customer privacy webhooks.
// No customer records are stored, so there is nothing to export or erase.
type CustomerPrivacyHandler struct {
	logger zerolog.Logger
}

// NewCustomerPrivacyHandler creates a new customer privacy webhook handler
func NewCustomerPrivacyHandler(logger zerolog.Logger) *CustomerPrivacyHandler {
	return &CustomerPrivacyHandler{
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *CustomerPrivacyHandler) CanHandle(topic string) bool {
	return topic == domain.TopicCustomersDataRequest ||
		topic == domain.TopicCustomersRedact
}

type customerPrivacyPayload struct {
	ShopDomain string `json:"shop_domain"`
	Customer   struct {
		ID int64 `json:"id"`
	} `json:"customer"`
	OrdersRequested []int64 `json:"orders_requested"`
	OrdersToRedact  []int64 `json:"orders_to_redact"`
	DataRequest     struct {
		ID int64 `json:"id"`
	} `json:"data_request"`
}

// Handle processes a customer privacy webhook event
func (h *CustomerPrivacyHandler) Handle(ctx context.Context, delivery *domain.WebhookDelivery) error {
	var payload customerPrivacyPayload
	if err := json.Unmarshal(delivery.Payload, &payload); err != nil {
		return fmt.Errorf("%w: failed to parse customer webhook payload: %v", domain.ErrMalformedPayload, err)
	}

	shop := payload.ShopDomain
	if shop == "" {
		shop = delivery.Shop
	}

	switch delivery.Topic {
	case domain.TopicCustomersDataRequest:
		h.logger.Info().
			Str("shop", shop).
			Int64("customerId", payload.Customer.ID).
			Int64("dataRequestId", payload.DataRequest.ID).
			Ints64("ordersRequested", payload.OrdersRequested).
			Msg("Customer data request received")
	case domain.TopicCustomersRedact:
		h.logger.Info().
			Str("shop", shop).
			Int64("customerId", payload.Customer.ID).
			Ints64("ordersToRedact", payload.OrdersToRedact).
			Msg("Customer redact request received")
	}

	return nil
}
