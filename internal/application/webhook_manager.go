package application

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

// WebhookSubscription is a topic and the path on this backend that receives it
type WebhookSubscription struct {
	Topic string
	Path  string
}

// DefaultSubscriptions are registered on every install
var DefaultSubscriptions = []WebhookSubscription{
	{Topic: domain.TopicAppUninstalled, Path: UninstallWebhookPath},
	{Topic: domain.TopicOrdersCreate, Path: OrderCreateWebhookPath},
}

// WebhookManager registers the app's webhook subscriptions with a shop
type WebhookManager struct {
	client        ports.ShopifyClient
	metrics       ports.MetricsRecorder
	apiURL        string
	subscriptions []WebhookSubscription
	logger        zerolog.Logger
}

func NewWebhookManager(client ports.ShopifyClient, metrics ports.MetricsRecorder, apiURL string, logger zerolog.Logger) *WebhookManager {
	return &WebhookManager{
		client:        client,
		metrics:       metrics,
		apiURL:        apiURL,
		subscriptions: DefaultSubscriptions,
		logger:        logger,
	}
}

// RegisterAll creates every subscription. Failures are logged and otherwise
// ignored so that an install never fails on webhook registration.
func (m *WebhookManager) RegisterAll(ctx context.Context, shop, accessToken string) int {
	session, err := m.client.OpenSession(shop, accessToken)
	if err != nil {
		m.logger.Error().Err(err).Str("shop", shop).Msg("Failed to open session for webhook registration")
		return 0
	}
	defer session.Close()

	registered := 0
	for _, sub := range m.subscriptions {
		address := m.apiURL + sub.Path
		if _, err := session.CreateWebhook(ctx, sub.Topic, address); err != nil {
			if errors.Is(err, domain.ErrUpstreamFailure) {
				m.metrics.UpstreamFailure("create webhook")
			}
			m.logger.Error().Err(err).Str("shop", shop).Str("topic", sub.Topic).Msg("Failed to create webhook")
			continue
		}
		registered++
		m.logger.Info().Str("shop", shop).Str("topic", sub.Topic).Str("address", address).Msg("Webhook created")
	}
	return registered
}
