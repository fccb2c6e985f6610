package application

import (
	"context"
	"errors"
	"fmt"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

// ProductService proxies product reads to the Admin API
type ProductService struct {
	metrics ports.MetricsRecorder
	logger  zerolog.Logger
}

func NewProductService(metrics ports.MetricsRecorder, logger zerolog.Logger) *ProductService {
	return &ProductService{metrics: metrics, logger: logger}
}

// ListProducts fetches the shop's products through its open session
func (s *ProductService) ListProducts(ctx context.Context, session ports.ShopifySession) ([]goshopify.Product, error) {
	if session == nil {
		return nil, fmt.Errorf("no shopify session in request")
	}

	products, err := session.ListProducts(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamFailure) {
			s.metrics.UpstreamFailure("list products")
		}
		s.logger.Error().Err(err).Str("shop", session.Shop()).Msg("Failed to get products")
		return nil, err
	}

	s.logger.Debug().Str("shop", session.Shop()).Int("count", len(products)).Msg("Fetched products")
	return products, nil
}
