package webhook_handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopify-app-backend/internal/application"
	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports/mocks"
)

func orderDelivery(body string) *domain.WebhookDelivery {
	return &domain.WebhookDelivery{
		Topic:    domain.TopicOrdersCreate,
		Shop:     "shop1.example",
		EventID:  "evt_1",
		Payload:  []byte(body),
		Verified: true,
	}
}

func TestOrderHandler(t *testing.T) {
	ctx := context.Background()
	const body = `{"id":100,"currency":"USD","current_subtotal_price":"19.990","created_at":"2024-01-01T00:00:00Z"}`

	newHandler := func(t *testing.T) (*OrderHandler, *mocks.ShopRepository, *mocks.OrderRepository) {
		shops := &mocks.ShopRepository{}
		orders := &mocks.OrderRepository{}
		t.Cleanup(func() {
			shops.AssertExpectations(t)
			orders.AssertExpectations(t)
		})
		svc := application.NewOrderService(shops, orders, zerolog.Nop())
		return NewOrderHandler(svc, zerolog.Nop()), shops, orders
	}

	t.Run("handles only orders/create", func(t *testing.T) {
		h, _, _ := newHandler(t)
		assert.True(t, h.CanHandle("orders/create"))
		assert.False(t, h.CanHandle("orders/updated"))
	})

	t.Run("ingests the order", func(t *testing.T) {
		h, shops, orders := newHandler(t)
		orders.On("WebhookEventExists", ctx, "evt_1").Return(false, nil)
		shops.On("GetShop", ctx, "shop1.example").Return(&domain.Shop{ID: 3, Domain: "shop1.example"}, nil)
		orders.On("CreateOrderWithEvent", ctx,
			mock.MatchedBy(func(o *domain.Order) bool {
				return o.OrderID == 100 && o.ShopID == 3 &&
					o.CurrentSubtotalPrice.Equal(decimal.RequireFromString("19.99")) && o.CreatedAt == 1704067200
			}),
			&domain.WebhookEvent{EventID: "evt_1", CreatedAt: 1704067200},
		).Return(nil)

		require.NoError(t, h.Handle(ctx, orderDelivery(body)))
	})

	t.Run("missing created_at fails before any lookup", func(t *testing.T) {
		h, _, _ := newHandler(t)
		err := h.Handle(ctx, orderDelivery(`{"id":100,"currency":"USD","current_subtotal_price":"1"}`))

		var payloadErr *domain.PayloadError
		require.True(t, errors.As(err, &payloadErr))
		assert.Equal(t, "created_at", payloadErr.Field)
	})

	t.Run("unparseable body", func(t *testing.T) {
		h, _, _ := newHandler(t)
		assert.ErrorIs(t, h.Handle(ctx, orderDelivery(`{`)), domain.ErrMalformedPayload)
	})

	t.Run("missing event id", func(t *testing.T) {
		h, _, _ := newHandler(t)
		delivery := orderDelivery(body)
		delivery.EventID = ""
		assert.ErrorIs(t, h.Handle(ctx, delivery), domain.ErrMalformedPayload)
	})
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]int64{
		"2024-01-01T00:00:00Z":          1704067200,
		"2024-01-01T00:00:00+00:00":     1704067200,
		"2024-01-01T01:00:00+01:00":     1704067200,
		"2024-01-01T00:00:00.123+00:00": 1704067200,
		"2024-01-01T00:00:00":           1704067200,
	}
	for raw, want := range cases {
		got, err := parseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := parseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestAppUninstalledHandler(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		body string
		want string
	}{
		{"domain field", `{"domain":"shop1.myshopify.com","myshopify_domain":"other.myshopify.com"}`, "shop1.myshopify.com"},
		{"myshopify_domain fallback", `{"myshopify_domain":"shop2.myshopify.com"}`, "shop2.myshopify.com"},
		{"header fallback", `{}`, "header.myshopify.com"},
		{"unparseable body", `not json`, "header.myshopify.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shops := &mocks.ShopRepository{}
			shops.On("DeleteShopsByDomain", ctx, tc.want).Return(int64(1), nil)
			h := NewAppUninstalledHandler(application.NewShopService(shops, zerolog.Nop()), zerolog.Nop())

			require.True(t, h.CanHandle(domain.TopicAppUninstalled))
			err := h.Handle(ctx, &domain.WebhookDelivery{
				Topic:   domain.TopicAppUninstalled,
				Shop:    "header.myshopify.com",
				Payload: []byte(tc.body),
			})
			require.NoError(t, err)
			shops.AssertExpectations(t)
		})
	}
}

func TestComplianceHandlers(t *testing.T) {
	ctx := context.Background()

	t.Run("customer privacy topics are acknowledged", func(t *testing.T) {
		h := NewCustomerPrivacyHandler(zerolog.Nop())
		for _, topic := range []string{domain.TopicCustomersDataRequest, domain.TopicCustomersRedact} {
			require.True(t, h.CanHandle(topic))
			err := h.Handle(ctx, &domain.WebhookDelivery{
				Topic:   topic,
				Payload: []byte(`{"shop_domain":"shop1.myshopify.com","customer":{"id":5},"orders_requested":[1,2]}`),
			})
			assert.NoError(t, err)
		}
		assert.False(t, h.CanHandle(domain.TopicShopRedact))
	})

	t.Run("customer privacy rejects a broken body", func(t *testing.T) {
		h := NewCustomerPrivacyHandler(zerolog.Nop())
		err := h.Handle(ctx, &domain.WebhookDelivery{Topic: domain.TopicCustomersRedact, Payload: []byte(`[`)})
		assert.ErrorIs(t, err, domain.ErrMalformedPayload)
	})

	t.Run("shop redact erases the shop", func(t *testing.T) {
		shops := &mocks.ShopRepository{}
		shops.On("DeleteShopsByDomain", ctx, "shop1.myshopify.com").Return(int64(0), nil)
		h := NewShopRedactHandler(application.NewShopService(shops, zerolog.Nop()), zerolog.Nop())

		require.True(t, h.CanHandle(domain.TopicShopRedact))
		err := h.Handle(ctx, &domain.WebhookDelivery{
			Topic:   domain.TopicShopRedact,
			Payload: []byte(`{"shop_id":1,"shop_domain":"shop1.myshopify.com"}`),
		})
		require.NoError(t, err)
		shops.AssertExpectations(t)
	})
}
