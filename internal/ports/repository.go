package ports

import (
	"context"

	"shopify-app-backend/internal/domain"
)

// ShopRepository persists one record per merchant shop
type ShopRepository interface {
	// UpsertShop creates the shop or replaces its token, scopes and updated_at.
	// It reports whether a new record was created.
	UpsertShop(ctx context.Context, shop *domain.Shop) (bool, error)

	// GetShop returns the shop for a domain, or (nil, nil) when none exists
	GetShop(ctx context.Context, domain string) (*domain.Shop, error)

	// DeleteShopsByDomain removes every shop with the domain and, by cascade, their orders.
	// Deleting a missing shop is not an error.
	DeleteShopsByDomain(ctx context.Context, domain string) (int64, error)
}

// OrderRepository persists ingested orders together with their webhook events
type OrderRepository interface {
	// WebhookEventExists reports whether an event id was already processed
	WebhookEventExists(ctx context.Context, eventID string) (bool, error)

	// CreateOrderWithEvent inserts the order and the event atomically.
	// A uniqueness violation on either row returns domain.ErrDuplicateEvent.
	CreateOrderWithEvent(ctx context.Context, order *domain.Order, event *domain.WebhookEvent) error

	// ListOrdersByShopDomain returns all orders of a shop joined with its domain
	ListOrdersByShopDomain(ctx context.Context, shopDomain string) ([]domain.OrderRow, error)
}

// WebhookAuditLog is an append-only log of verified webhook deliveries
type WebhookAuditLog interface {
	LogWebhook(ctx context.Context, delivery *domain.WebhookDelivery) error
}

// OAuthStateStore keeps anti-forgery state nonces between login and callback
type OAuthStateStore interface {
	SaveState(ctx context.Context, state *domain.OAuthState) error

	// ConsumeState returns and deletes the state, or (nil, nil) if unknown or expired
	ConsumeState(ctx context.Context, state string) (*domain.OAuthState, error)
}
