// Package mocks holds testify mocks of the ports interfaces.
package mocks

import (
	"context"
	"net/url"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/stretchr/testify/mock"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

var (
	_ ports.ShopRepository      = (*ShopRepository)(nil)
	_ ports.OrderRepository     = (*OrderRepository)(nil)
	_ ports.WebhookAuditLog     = (*WebhookAuditLog)(nil)
	_ ports.OAuthStateStore     = (*OAuthStateStore)(nil)
	_ ports.ShopifyClient       = (*ShopifyClient)(nil)
	_ ports.ShopifySession      = (*ShopifySession)(nil)
	_ ports.SessionTokenDecoder = (*SessionTokenDecoder)(nil)
	_ ports.MetricsRecorder     = (*MetricsRecorder)(nil)
)

type ShopRepository struct {
	mock.Mock
}

func (m *ShopRepository) UpsertShop(ctx context.Context, shop *domain.Shop) (bool, error) {
	args := m.Called(ctx, shop)
	return args.Bool(0), args.Error(1)
}

func (m *ShopRepository) GetShop(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	args := m.Called(ctx, shopDomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shop), args.Error(1)
}

func (m *ShopRepository) DeleteShopsByDomain(ctx context.Context, shopDomain string) (int64, error) {
	args := m.Called(ctx, shopDomain)
	return args.Get(0).(int64), args.Error(1)
}

type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) WebhookEventExists(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepository) CreateOrderWithEvent(ctx context.Context, order *domain.Order, event *domain.WebhookEvent) error {
	args := m.Called(ctx, order, event)
	return args.Error(0)
}

func (m *OrderRepository) ListOrdersByShopDomain(ctx context.Context, shopDomain string) ([]domain.OrderRow, error) {
	args := m.Called(ctx, shopDomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderRow), args.Error(1)
}

type WebhookAuditLog struct {
	mock.Mock
}

func (m *WebhookAuditLog) LogWebhook(ctx context.Context, delivery *domain.WebhookDelivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

type OAuthStateStore struct {
	mock.Mock
}

func (m *OAuthStateStore) SaveState(ctx context.Context, state *domain.OAuthState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *OAuthStateStore) ConsumeState(ctx context.Context, state string) (*domain.OAuthState, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OAuthState), args.Error(1)
}

type ShopifyClient struct {
	mock.Mock
}

func (m *ShopifyClient) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	args := m.Called(shop, scopes, redirectURI, state)
	return args.String(0), args.Error(1)
}

func (m *ShopifyClient) VerifyCallback(query url.Values) (bool, error) {
	args := m.Called(query)
	return args.Bool(0), args.Error(1)
}

func (m *ShopifyClient) ExchangeToken(ctx context.Context, shop string, code string) (*domain.AccessGrant, error) {
	args := m.Called(ctx, shop, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessGrant), args.Error(1)
}

func (m *ShopifyClient) OpenSession(shop string, accessToken string) (ports.ShopifySession, error) {
	args := m.Called(shop, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.ShopifySession), args.Error(1)
}

type ShopifySession struct {
	mock.Mock
}

func (m *ShopifySession) Shop() string {
	return m.Called().String(0)
}

func (m *ShopifySession) ListProducts(ctx context.Context) ([]goshopify.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]goshopify.Product), args.Error(1)
}

func (m *ShopifySession) CreateWebhook(ctx context.Context, topic string, address string) (*goshopify.Webhook, error) {
	args := m.Called(ctx, topic, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*goshopify.Webhook), args.Error(1)
}

func (m *ShopifySession) Close() {
	m.Called()
}

type SessionTokenDecoder struct {
	mock.Mock
}

func (m *SessionTokenDecoder) DecodeFromHeader(authorization string) (string, error) {
	args := m.Called(authorization)
	return args.String(0), args.Error(1)
}

// MetricsRecorder accepts every call; tests assert on it only when they care
type MetricsRecorder struct {
	mock.Mock
}

func (m *MetricsRecorder) WebhookReceived(topic, outcome string) {
	m.Called(topic, outcome)
}

func (m *MetricsRecorder) InstallCompleted(created bool) {
	m.Called(created)
}

func (m *MetricsRecorder) InstallFailed() {
	m.Called()
}

func (m *MetricsRecorder) UpstreamFailure(operation string) {
	m.Called(operation)
}

// NewMetricsRecorder returns a recorder that permits any call
func NewMetricsRecorder() *MetricsRecorder {
	m := &MetricsRecorder{}
	m.On("WebhookReceived", mock.Anything, mock.Anything).Maybe()
	m.On("InstallCompleted", mock.Anything).Maybe()
	m.On("InstallFailed").Maybe()
	m.On("UpstreamFailure", mock.Anything).Maybe()
	return m
}
