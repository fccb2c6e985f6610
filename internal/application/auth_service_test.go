package application

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports/mocks"
)

var testAuthOptions = AuthOptions{
	Scopes:   []string{"read_orders", "read_products"},
	APIURL:   "https://api.example.com",
	AppURL:   "https://app.example.com",
	StateTTL: 10 * time.Minute,
}

type authFixture struct {
	shops   *mocks.ShopRepository
	client  *mocks.ShopifyClient
	session *mocks.ShopifySession
	metrics *mocks.MetricsRecorder
	service *AuthService
}

func newAuthFixture(t *testing.T, states *mocks.OAuthStateStore) *authFixture {
	f := &authFixture{
		shops:   &mocks.ShopRepository{},
		client:  &mocks.ShopifyClient{},
		session: &mocks.ShopifySession{},
		metrics: mocks.NewMetricsRecorder(),
	}
	webhooks := NewWebhookManager(f.client, f.metrics, testAuthOptions.APIURL, zerolog.Nop())
	if states == nil {
		f.service = NewAuthService(f.shops, f.client, nil, webhooks, f.metrics, testAuthOptions, zerolog.Nop())
	} else {
		f.service = NewAuthService(f.shops, f.client, states, webhooks, f.metrics, testAuthOptions, zerolog.Nop())
	}
	f.service.now = func() time.Time { return time.Unix(1704067200, 0) }
	f.service.newState = func() (string, error) { return "state123", nil }
	t.Cleanup(func() {
		f.shops.AssertExpectations(t)
		f.client.AssertExpectations(t)
		f.session.AssertExpectations(t)
	})
	return f
}

func TestAuthService_Initiate(t *testing.T) {
	ctx := context.Background()
	redirect := "https://api.example.com/api/callback"

	t.Run("unknown shop is not authenticated", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.client.On("GenerateAuthURL", "shop1.myshopify.com", testAuthOptions.Scopes, redirect, "state123").
			Return("https://shop1.myshopify.com/admin/oauth/authorize?x", nil)
		f.shops.On("GetShop", ctx, "shop1.myshopify.com").Return(nil, nil)

		result, err := f.service.Initiate(ctx, "shop1")
		require.NoError(t, err)
		assert.False(t, result.Authenticated)
		assert.Equal(t, "https://shop1.myshopify.com/admin/oauth/authorize?x", result.URL)
		assert.Equal(t, "state123", result.State)
	})

	t.Run("shop with a token is authenticated", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.client.On("GenerateAuthURL", "shop1.myshopify.com", testAuthOptions.Scopes, redirect, "state123").
			Return("https://shop1.myshopify.com/admin/oauth/authorize?x", nil)
		f.shops.On("GetShop", ctx, "shop1.myshopify.com").
			Return(&domain.Shop{Domain: "shop1.myshopify.com", AccessToken: "shpat"}, nil)

		result, err := f.service.Initiate(ctx, "https://shop1.myshopify.com")
		require.NoError(t, err)
		assert.True(t, result.Authenticated)
	})

	t.Run("invalid domain touches nothing", func(t *testing.T) {
		states := &mocks.OAuthStateStore{}
		f := newAuthFixture(t, states)

		for _, raw := range []string{"", "shop_1", "evil.com", "-shop.myshopify.com"} {
			_, err := f.service.Initiate(ctx, raw)
			assert.ErrorIs(t, err, domain.ErrInvalidShopDomain, raw)
		}
		states.AssertNotCalled(t, "SaveState", mock.Anything, mock.Anything)
	})

	t.Run("stores the state nonce when a store is configured", func(t *testing.T) {
		states := &mocks.OAuthStateStore{}
		f := newAuthFixture(t, states)
		f.client.On("GenerateAuthURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)
		f.shops.On("GetShop", ctx, "shop1.myshopify.com").Return(nil, nil)
		states.On("SaveState", ctx, mock.MatchedBy(func(s *domain.OAuthState) bool {
			return s.Shop == "shop1.myshopify.com" && s.State == "state123" &&
				s.ExpiresAt.Equal(time.Unix(1704067200, 0).Add(10*time.Minute))
		})).Return(nil)

		_, err := f.service.Initiate(ctx, "shop1.myshopify.com")
		require.NoError(t, err)
		states.AssertExpectations(t)
	})
}

func callbackQuery() url.Values {
	return url.Values{
		"shop":      {"shop1.myshopify.com"},
		"code":      {"auth-code"},
		"state":     {"state123"},
		"hmac":      {"abc"},
		"timestamp": {"1704067200"},
	}
}

func TestAuthService_Callback(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the shop, registers webhooks and redirects", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		query := callbackQuery()
		f.client.On("VerifyCallback", query).Return(true, nil)
		f.client.On("ExchangeToken", ctx, "shop1.myshopify.com", "auth-code").
			Return(&domain.AccessGrant{AccessToken: "shpat_1", Scopes: []string{"read_orders"}}, nil)
		f.shops.On("UpsertShop", ctx, mock.MatchedBy(func(s *domain.Shop) bool {
			return s.Domain == "shop1.myshopify.com" && s.AccessToken == "shpat_1" &&
				s.CreatedAt == 1704067200 && s.UpdatedAt == 1704067200
		})).Return(true, nil)
		f.client.On("OpenSession", "shop1.myshopify.com", "shpat_1").Return(f.session, nil)
		f.session.On("CreateWebhook", ctx, domain.TopicAppUninstalled, "https://api.example.com/api/uninstall").
			Return(nil, nil)
		f.session.On("CreateWebhook", ctx, domain.TopicOrdersCreate, "https://api.example.com/api/webhooks/orders/create").
			Return(nil, nil)
		f.session.On("Close").Return()

		redirect, err := f.service.Callback(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, "https://app.example.com?shop=shop1.myshopify.com", redirect)
		f.metrics.AssertCalled(t, "InstallCompleted", true)
	})

	t.Run("webhook registration failure does not fail the install", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		query := callbackQuery()
		f.client.On("VerifyCallback", query).Return(true, nil)
		f.client.On("ExchangeToken", ctx, "shop1.myshopify.com", "auth-code").
			Return(&domain.AccessGrant{AccessToken: "shpat_1"}, nil)
		f.shops.On("UpsertShop", ctx, mock.Anything).Return(false, nil)
		f.client.On("OpenSession", "shop1.myshopify.com", "shpat_1").Return(f.session, nil)
		f.session.On("CreateWebhook", ctx, mock.Anything, mock.Anything).
			Return(nil, domain.NewUpstreamError("create webhook", errors.New("422")))
		f.session.On("Close").Return()

		_, err := f.service.Callback(ctx, query)
		require.NoError(t, err)
		f.metrics.AssertCalled(t, "UpstreamFailure", "create webhook")
		f.metrics.AssertCalled(t, "InstallCompleted", false)
	})

	t.Run("bad hmac is rejected before any exchange", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		query := callbackQuery()
		f.client.On("VerifyCallback", query).Return(false, nil)

		_, err := f.service.Callback(ctx, query)
		assert.ErrorIs(t, err, domain.ErrInvalidCallbackParams)
		f.client.AssertNotCalled(t, "ExchangeToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid shop parameter", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		query := callbackQuery()
		query.Set("shop", "evil.example.com")

		_, err := f.service.Callback(ctx, query)
		assert.ErrorIs(t, err, domain.ErrInvalidCallbackParams)
	})

	t.Run("unknown state nonce", func(t *testing.T) {
		states := &mocks.OAuthStateStore{}
		f := newAuthFixture(t, states)
		query := callbackQuery()
		f.client.On("VerifyCallback", query).Return(true, nil)
		states.On("ConsumeState", ctx, "state123").Return(nil, nil)

		_, err := f.service.Callback(ctx, query)
		assert.ErrorIs(t, err, domain.ErrInvalidCallbackParams)
	})

	t.Run("state issued for another shop", func(t *testing.T) {
		states := &mocks.OAuthStateStore{}
		f := newAuthFixture(t, states)
		query := callbackQuery()
		f.client.On("VerifyCallback", query).Return(true, nil)
		states.On("ConsumeState", ctx, "state123").Return(&domain.OAuthState{Shop: "other.myshopify.com"}, nil)

		_, err := f.service.Callback(ctx, query)
		assert.ErrorIs(t, err, domain.ErrInvalidCallbackParams)
	})

	t.Run("token exchange failure surfaces and stores nothing", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		query := callbackQuery()
		f.client.On("VerifyCallback", query).Return(true, nil)
		f.client.On("ExchangeToken", ctx, "shop1.myshopify.com", "auth-code").
			Return(nil, domain.NewUpstreamError("exchange token", errors.New("status 400")))

		_, err := f.service.Callback(ctx, query)
		assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
		f.shops.AssertNotCalled(t, "UpsertShop", mock.Anything, mock.Anything)
		f.metrics.AssertCalled(t, "InstallFailed")
	})
}
