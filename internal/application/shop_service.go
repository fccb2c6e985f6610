package application

import (
	"context"

	"github.com/rs/zerolog"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

// ShopService handles the shop lifecycle after install
type ShopService struct {
	shops  ports.ShopRepository
	logger zerolog.Logger
}

func NewShopService(shops ports.ShopRepository, logger zerolog.Logger) *ShopService {
	return &ShopService{shops: shops, logger: logger}
}

// Uninstall deletes the shop and, through the foreign key, all of its orders.
// Uninstalling an unknown shop succeeds.
func (s *ShopService) Uninstall(ctx context.Context, shopDomain string) error {
	if shopDomain == "" {
		return domain.MissingField("domain")
	}

	deleted, err := s.shops.DeleteShopsByDomain(ctx, shopDomain)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to uninstall shop")
		return err
	}

	s.logger.Info().Str("shop", shopDomain).Int64("deleted", deleted).Msg("Shop uninstalled")
	return nil
}
