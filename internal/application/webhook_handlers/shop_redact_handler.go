package webhook_handlers

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"shopify-app-backend/internal/application"
	"shopify-app-backend/internal/domain"
)

// ShopRedactHandler erases a shop's data when Shopify requests it, which
// happens some time after the app was uninstalled
type ShopRedactHandler struct {
	shops  *application.ShopService
	logger zerolog.Logger
}

func NewShopRedactHandler(shops *application.ShopService, logger zerolog.Logger) *ShopRedactHandler {
	return &ShopRedactHandler{shops: shops, logger: logger}
}

func (h *ShopRedactHandler) CanHandle(topic string) bool {
	return topic == domain.TopicShopRedact
}

func (h *ShopRedactHandler) Handle(ctx context.Context, delivery *domain.WebhookDelivery) error {
	var payload struct {
		ShopDomain string `json:"shop_domain"`
	}
	_ = json.Unmarshal(delivery.Payload, &payload)

	shop := payload.ShopDomain
	if shop == "" {
		shop = delivery.Shop
	}

	h.logger.Info().Str("shop", shop).Msg("Shop redact request received")
	return h.shops.Uninstall(ctx, shop)
}
