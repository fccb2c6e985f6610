package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

// Route paths Shopify is told about during install
const (
	CallbackPath           = "/api/callback"
	UninstallWebhookPath   = "/api/uninstall"
	OrderCreateWebhookPath = "/api/webhooks/orders/create"
)

// stateBytes is the entropy of the anti-forgery state nonce
const stateBytes = 15

// AuthOptions configures the install flow
type AuthOptions struct {
	Scopes []string
	// APIURL is the public base URL of this backend
	APIURL string
	// AppURL is where a completed install is redirected
	AppURL   string
	StateTTL time.Duration
}

// AuthService drives the OAuth install flow: initiate, then callback
type AuthService struct {
	shops    ports.ShopRepository
	client   ports.ShopifyClient
	states   ports.OAuthStateStore
	webhooks *WebhookManager
	metrics  ports.MetricsRecorder
	opts     AuthOptions
	logger   zerolog.Logger

	now      func() time.Time
	newState func() (string, error)
}

// NewAuthService creates the install flow service. states may be nil, in which
// case the state nonce is issued but not checked on callback.
func NewAuthService(
	shops ports.ShopRepository,
	client ports.ShopifyClient,
	states ports.OAuthStateStore,
	webhooks *WebhookManager,
	metrics ports.MetricsRecorder,
	opts AuthOptions,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		shops:    shops,
		client:   client,
		states:   states,
		webhooks: webhooks,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		newState: randomState,
	}
}

func randomState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// RedirectURI is the callback URL registered with Shopify
func (s *AuthService) RedirectURI() string {
	return s.opts.APIURL + CallbackPath
}

// Initiate validates the shop domain and builds the authorization URL.
// It reports whether the shop already holds an access token and does not
// touch the shop store.
func (s *AuthService) Initiate(ctx context.Context, rawShop string) (*domain.LoginResult, error) {
	shop, err := domain.SanitizeShopDomain(rawShop)
	if err != nil {
		s.logger.Warn().Str("shop", rawShop).Msg("Invalid shop domain format")
		return nil, err
	}

	state, err := s.newState()
	if err != nil {
		return nil, err
	}

	authURL, err := s.client.GenerateAuthURL(shop, s.opts.Scopes, s.RedirectURI(), state)
	if err != nil {
		return nil, fmt.Errorf("failed to generate auth URL: %w", err)
	}

	existing, err := s.shops.GetShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	if s.states != nil {
		now := s.now()
		err := s.states.SaveState(ctx, &domain.OAuthState{
			Shop:      shop,
			State:     state,
			Scopes:    s.opts.Scopes,
			ExpiresAt: now.Add(s.opts.StateTTL),
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("shop", shop).
		Strs("scopes", s.opts.Scopes).
		Bool("authenticated", existing.HasAccessToken()).
		Msg("Initiated OAuth install")

	return &domain.LoginResult{
		Authenticated: existing.HasAccessToken(),
		URL:           authURL,
		State:         state,
	}, nil
}

// Callback completes the install: verifies the redirect, exchanges the code,
// stores the shop and registers webhooks. It returns the app URL to redirect to.
func (s *AuthService) Callback(ctx context.Context, query url.Values) (string, error) {
	shop, err := domain.SanitizeShopDomain(query.Get("shop"))
	if err != nil {
		return "", fmt.Errorf("%w: shop", domain.ErrInvalidCallbackParams)
	}

	ok, err := s.client.VerifyCallback(query)
	if err != nil {
		return "", fmt.Errorf("failed to verify callback: %w", err)
	}
	if !ok {
		s.logger.Warn().Str("shop", shop).Msg("Invalid callback parameters")
		return "", fmt.Errorf("%w: hmac", domain.ErrInvalidCallbackParams)
	}

	if err := s.checkState(ctx, shop, query.Get("state")); err != nil {
		return "", err
	}

	code := query.Get("code")
	if code == "" {
		return "", fmt.Errorf("%w: code", domain.ErrInvalidCallbackParams)
	}

	grant, err := s.client.ExchangeToken(ctx, shop, code)
	if err != nil {
		s.metrics.InstallFailed()
		if errors.Is(err, domain.ErrUpstreamFailure) {
			s.metrics.UpstreamFailure("exchange token")
		}
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange token")
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}

	now := s.now().Unix()
	record := &domain.Shop{
		Domain:       shop,
		AccessToken:  grant.AccessToken,
		AccessScopes: grant.Scopes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.shops.UpsertShop(ctx, record)
	if err != nil {
		s.metrics.InstallFailed()
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to save shop")
		return "", err
	}
	s.metrics.InstallCompleted(created)

	if created {
		s.logger.Info().Str("shop", shop).Msg("Created shop information")
	} else {
		s.logger.Info().Str("shop", shop).Msg("Updated shop information")
	}

	s.webhooks.RegisterAll(ctx, shop, grant.AccessToken)

	return s.opts.AppURL + "?shop=" + url.QueryEscape(shop), nil
}

func (s *AuthService) checkState(ctx context.Context, shop, state string) error {
	if s.states == nil {
		return nil
	}
	stored, err := s.states.ConsumeState(ctx, state)
	if err != nil {
		return err
	}
	if stored == nil || stored.Shop != shop {
		s.logger.Warn().Str("shop", shop).Msg("Anti-forgery state parameter does not match")
		return fmt.Errorf("%w: state", domain.ErrInvalidCallbackParams)
	}
	return nil
}
