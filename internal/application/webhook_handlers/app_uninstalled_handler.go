package webhook_handlers

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"shopify-app-backend/internal/application"
	"shopify-app-backend/internal/domain"
)

// AppUninstalledHandler handles app uninstalled webhook events
type AppUninstalledHandler struct {
	shops  *application.ShopService
	logger zerolog.Logger
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler
func NewAppUninstalledHandler(shops *application.ShopService, logger zerolog.Logger) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		shops:  shops,
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == domain.TopicAppUninstalled
}

// Handle deletes the shop named by the payload, falling back to the
// delivery's shop header
func (h *AppUninstalledHandler) Handle(ctx context.Context, delivery *domain.WebhookDelivery) error {
	shopDomain := UninstalledShopDomain(delivery)

	h.logger.Info().
		Str("topic", delivery.Topic).
		Str("shop", shopDomain).
		Msg("Processing app uninstalled webhook event")

	return h.shops.Uninstall(ctx, shopDomain)
}

// UninstalledShopDomain resolves the shop an app/uninstalled delivery is about
func UninstalledShopDomain(delivery *domain.WebhookDelivery) string {
	var shopData struct {
		Domain          string `json:"domain"`
		MyshopifyDomain string `json:"myshopify_domain"`
	}
	// an unparseable body still leaves the header to fall back on
	_ = json.Unmarshal(delivery.Payload, &shopData)

	switch {
	case shopData.Domain != "":
		return shopData.Domain
	case shopData.MyshopifyDomain != "":
		return shopData.MyshopifyDomain
	default:
		return delivery.Shop
	}
}
