package application

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// IncomingOrder is an orders/create delivery whose headers and timestamp have
// been parsed. The remaining fields are validated once the shop is known.
type IncomingOrder struct {
	ShopDomain           string
	EventID              string
	CreatedAt            int64
	ID                   json.RawMessage
	Currency             json.RawMessage
	CurrentSubtotalPrice json.RawMessage
}

// OrderService ingests order webhooks and serves the stored orders
type OrderService struct {
	shops  ports.ShopRepository
	orders ports.OrderRepository
	logger zerolog.Logger
}

func NewOrderService(shops ports.ShopRepository, orders ports.OrderRepository, logger zerolog.Logger) *OrderService {
	return &OrderService{
		shops:  shops,
		orders: orders,
		logger: logger,
	}
}

// Ingest stores the order and its event id atomically. A delivery whose event
// id or order id was already stored returns domain.ErrDuplicateEvent and
// writes nothing.
func (s *OrderService) Ingest(ctx context.Context, in *IncomingOrder) error {
	exists, err := s.orders.WebhookEventExists(ctx, in.EventID)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info().Str("event_id", in.EventID).Msg("Ignoring duplicate webhook event")
		return domain.ErrDuplicateEvent
	}

	shop, err := s.shops.GetShop(ctx, in.ShopDomain)
	if err != nil {
		return err
	}
	if shop == nil {
		s.logger.Error().Str("shop", in.ShopDomain).Msg("Shop not found for order webhook")
		return domain.ErrUnknownShop
	}

	order, err := buildOrder(shop.ID, in)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", in.ShopDomain).Msg("Missing required data in webhook payload")
		return err
	}

	err = s.orders.CreateOrderWithEvent(ctx, order, &domain.WebhookEvent{
		EventID:   in.EventID,
		CreatedAt: in.CreatedAt,
	})
	if errors.Is(err, domain.ErrDuplicateEvent) {
		s.logger.Info().Str("event_id", in.EventID).Int64("order_id", order.OrderID).Msg("Ignoring duplicate webhook event")
		return err
	}
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("shop", in.ShopDomain).
		Str("event_id", in.EventID).
		Int64("order_id", order.OrderID).
		Msg("Stored order")
	return nil
}

// ListByShop returns the orders stored for the shop
func (s *OrderService) ListByShop(ctx context.Context, shopDomain string) ([]domain.OrderRow, error) {
	rows, err := s.orders.ListOrdersByShopDomain(ctx, shopDomain)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to list orders")
		return nil, err
	}
	return rows, nil
}

func buildOrder(shopID uint, in *IncomingOrder) (*domain.Order, error) {
	orderID, err := parseOrderID(in.ID)
	if err != nil {
		return nil, err
	}
	currency, err := parseCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	subtotal, err := parseSubtotal(in.CurrentSubtotalPrice)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		OrderID:              orderID,
		ShopID:               shopID,
		Currency:             currency,
		CurrentSubtotalPrice: subtotal,
		CreatedAt:            in.CreatedAt,
	}, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func parseOrderID(raw json.RawMessage) (int64, error) {
	if isAbsent(raw) {
		return 0, domain.MissingField("id")
	}
	var id json.Number
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, domain.MissingField("id")
	}
	n, err := id.Int64()
	if err != nil || n <= 0 {
		return 0, domain.MissingField("id")
	}
	return n, nil
}

func parseCurrency(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", domain.MissingField("currency")
	}
	var currency string
	if err := json.Unmarshal(raw, &currency); err != nil {
		return "", domain.MissingField("currency")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !currencyPattern.MatchString(currency) {
		return "", domain.MissingField("currency")
	}
	return currency, nil
}

// parseSubtotal accepts a JSON string or number that fits numeric(10,3)
func parseSubtotal(raw json.RawMessage) (decimal.Decimal, error) {
	if isAbsent(raw) {
		return decimal.Decimal{}, domain.MissingField("current_subtotal_price")
	}
	var value decimal.NullDecimal
	if err := json.Unmarshal(raw, &value); err != nil || !value.Valid {
		return decimal.Decimal{}, domain.MissingField("current_subtotal_price")
	}
	d := value.Decimal
	if !d.Equal(d.Round(domain.SubtotalScale)) {
		return decimal.Decimal{}, domain.MissingField("current_subtotal_price")
	}
	limit := decimal.New(1, domain.SubtotalPrecision-domain.SubtotalScale)
	if d.Abs().GreaterThanOrEqual(limit) {
		return decimal.Decimal{}, domain.MissingField("current_subtotal_price")
	}
	return d, nil
}
