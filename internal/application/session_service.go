package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

// SessionService authenticates embedded-app requests by their session token
type SessionService struct {
	decoder ports.SessionTokenDecoder
	shops   ports.ShopRepository
	client  ports.ShopifyClient
	logger  zerolog.Logger
}

func NewSessionService(decoder ports.SessionTokenDecoder, shops ports.ShopRepository, client ports.ShopifyClient, logger zerolog.Logger) *SessionService {
	return &SessionService{
		decoder: decoder,
		shops:   shops,
		client:  client,
		logger:  logger,
	}
}

// Authenticate verifies the Authorization header, loads the shop it names and
// opens an Admin API session for it. The caller must Close the session.
func (s *SessionService) Authenticate(ctx context.Context, authorization string) (*domain.Shop, ports.ShopifySession, error) {
	shopDomain, err := s.decoder.DecodeFromHeader(authorization)
	if err != nil {
		return nil, nil, err
	}

	shop, err := s.shops.GetShop(ctx, shopDomain)
	if err != nil {
		return nil, nil, err
	}
	if shop == nil {
		s.logger.Warn().Str("shop", shopDomain).Msg("Session token names an unknown shop")
		return nil, nil, domain.ErrUnknownShop
	}

	session, err := s.client.OpenSession(shop.Domain, shop.AccessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open shopify session: %w", err)
	}
	return shop, session, nil
}

type sessionContextKey struct{}

// WithSession stores the request's Admin API session in the context
func WithSession(ctx context.Context, session ports.ShopifySession) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the request's Admin API session, or nil
func SessionFromContext(ctx context.Context) ports.ShopifySession {
	session, _ := ctx.Value(sessionContextKey{}).(ports.ShopifySession)
	return session
}
