package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

// callbackMaxAge bounds how old an OAuth redirect timestamp may be
const callbackMaxAge = 24 * time.Hour

var errSessionClosed = errors.New("shopify session is closed")

// ClientOptions configures the Shopify adapter
type ClientOptions struct {
	APIKey     string
	APISecret  string
	APIVersion string
	Retries    int
	Timeout    time.Duration
}

// Client is the app-level Shopify adapter. It is immutable after construction
// and safe for concurrent use.
type Client struct {
	apiKey     string
	apiSecret  string
	apiVersion string
	retries    int
	app        goshopify.App
	httpClient *http.Client
	logger     zerolog.Logger

	// adminBaseURL returns the scheme+host of a shop's admin endpoints
	adminBaseURL func(shop string) string
	now          func() time.Time
}

var _ ports.ShopifyClient = (*Client)(nil)

// NewClient creates a new Shopify client adapter
func NewClient(opts ClientOptions, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:     opts.APIKey,
		apiSecret:  opts.APISecret,
		apiVersion: opts.APIVersion,
		retries:    opts.Retries,
		app: goshopify.App{
			ApiKey:    opts.APIKey,
			ApiSecret: opts.APISecret,
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		adminBaseURL: func(shop string) string {
			return "https://" + shop
		},
		now: time.Now,
	}
}

// Authentication methods

func (c *Client) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	if shop == "" {
		return "", fmt.Errorf("shop is required to build the authorization URL")
	}
	// Shopify expects scopes to be comma-separated (no spaces)
	scopesStr := strings.Join(scopes, ",")

	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		url.QueryEscape(c.apiKey),
		url.QueryEscape(scopesStr),
		url.QueryEscape(redirectURI),
		url.QueryEscape(state),
	)

	c.logger.Debug().
		Str("shop", shop).
		Str("scopes", scopesStr).
		Msg("Generated OAuth authorization URL")

	return authURL, nil
}

// VerifyCallback checks the hmac parameter Shopify adds to the OAuth redirect
// and rejects redirects older than a day.
func (c *Client) VerifyCallback(query url.Values) (bool, error) {
	if query.Get("hmac") == "" {
		return false, nil
	}

	ts, err := strconv.ParseInt(query.Get("timestamp"), 10, 64)
	if err != nil {
		return false, nil
	}
	if time.Unix(ts, 0).Before(c.now().Add(-callbackMaxAge)) {
		c.logger.Warn().Int64("timestamp", ts).Msg("OAuth callback timestamp is too old")
		return false, nil
	}

	u := &url.URL{RawQuery: query.Encode()}
	ok, err := c.app.VerifyAuthorizationURL(u)
	if err != nil {
		// a non-hex hmac is a forged or mangled request, not a server fault
		c.logger.Warn().Err(err).Msg("Malformed OAuth callback hmac")
		return false, nil
	}
	return ok, nil
}

func (c *Client) ExchangeToken(ctx context.Context, shop string, code string) (*domain.AccessGrant, error) {
	tokenURL := c.adminBaseURL(shop) + "/admin/oauth/access_token"

	values := url.Values{}
	values.Set("client_id", c.apiKey)
	values.Set("client_secret", c.apiSecret)
	values.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewUpstreamError("exchange token", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, domain.NewUpstreamError("exchange token",
			fmt.Errorf("status %d, body: %s", resp.StatusCode, string(bodyBytes)))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return nil, domain.NewUpstreamError("exchange token", fmt.Errorf("failed to decode token response: %w", err))
	}
	if tokenResponse.AccessToken == "" {
		return nil, domain.NewUpstreamError("exchange token", errors.New("empty access_token in response"))
	}

	return &domain.AccessGrant{
		AccessToken: tokenResponse.AccessToken,
		Scopes:      domain.SplitScopes(tokenResponse.Scope),
	}, nil
}

// OpenSession creates an Admin API session for one shop
func (c *Client) OpenSession(shop string, accessToken string) (ports.ShopifySession, error) {
	client, err := goshopify.NewClient(c.app, shop, accessToken,
		goshopify.WithVersion(c.apiVersion),
		goshopify.WithRetry(c.retries),
		goshopify.WithHTTPClient(c.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &session{shop: shop, client: client, logger: c.logger}, nil
}

// session is a shop-scoped Admin API client. After Close every call fails.
type session struct {
	mu     sync.RWMutex
	shop   string
	client *goshopify.Client
	logger zerolog.Logger
}

func (s *session) Shop() string {
	return s.shop
}

func (s *session) api() (*goshopify.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, errSessionClosed
	}
	return s.client, nil
}

// Product API

func (s *session) ListProducts(ctx context.Context) ([]goshopify.Product, error) {
	client, err := s.api()
	if err != nil {
		return nil, err
	}
	products, err := client.Product.List(ctx, nil)
	if err != nil {
		return nil, domain.NewUpstreamError("list products", err)
	}
	return products, nil
}

// Webhook API

func (s *session) CreateWebhook(ctx context.Context, topic string, address string) (*goshopify.Webhook, error) {
	client, err := s.api()
	if err != nil {
		return nil, err
	}
	webhook := goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	}
	created, err := client.Webhook.Create(ctx, webhook)
	if err != nil {
		return nil, domain.NewUpstreamError("create webhook", err)
	}
	return created, nil
}

// Close releases the session's client and token
func (s *session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.logger.Debug().Str("shop", s.shop).Msg("Closed Shopify session")
	}
	s.client = nil
}
