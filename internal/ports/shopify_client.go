package ports

import (
	"context"
	"net/url"

	goshopify "github.com/bold-commerce/go-shopify/v4"

	"shopify-app-backend/internal/domain"
)

// ShopifyClient defines the app-level Shopify operations (no shop session required)
type ShopifyClient interface {
	// GenerateAuthURL builds the authorization URL for the install flow
	GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error)

	// VerifyCallback validates the HMAC and freshness of OAuth redirect parameters
	VerifyCallback(query url.Values) (bool, error)

	// ExchangeToken trades an authorization code for an access token and granted scopes
	ExchangeToken(ctx context.Context, shop string, code string) (*domain.AccessGrant, error)

	// OpenSession creates a shop-scoped Admin API session. Callers must Close it.
	OpenSession(shop string, accessToken string) (ShopifySession, error)
}

// ShopifySession is an Admin API session bound to one shop, version and token
type ShopifySession interface {
	Shop() string
	ListProducts(ctx context.Context) ([]goshopify.Product, error)
	CreateWebhook(ctx context.Context, topic string, address string) (*goshopify.Webhook, error)
	Close()
}

// SessionTokenDecoder verifies a bearer session token and returns the asserted shop domain
type SessionTokenDecoder interface {
	DecodeFromHeader(authorization string) (string, error)
}

// WebhookVerifier checks a webhook body signature
type WebhookVerifier interface {
	Verify(body []byte, signature string) bool
}
