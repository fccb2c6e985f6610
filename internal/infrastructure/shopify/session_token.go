package shopify

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shopify-app-backend/internal/domain"
)

const bearerPrefix = "Bearer "

// sessionTokenLeeway tolerates clock skew between Shopify and this host
const sessionTokenLeeway = 10 * time.Second

// SessionClaims are the claims of an App Bridge session token
type SessionClaims struct {
	jwt.RegisteredClaims
	Dest string `json:"dest"`
	Sid  string `json:"sid,omitempty"`
}

// SessionTokenDecoder verifies HS256 session tokens signed with the app secret
type SessionTokenDecoder struct {
	apiKey    string
	apiSecret []byte
	now       func() time.Time
}

// NewSessionTokenDecoder creates a decoder for the app credentials
func NewSessionTokenDecoder(apiKey, apiSecret string) *SessionTokenDecoder {
	return &SessionTokenDecoder{
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		now:       time.Now,
	}
}

// DecodeFromHeader parses "Bearer <token>" and returns the shop domain the token asserts.
// Every structural, signature or claim failure returns domain.ErrInvalidCredential.
func (d *SessionTokenDecoder) DecodeFromHeader(authorization string) (string, error) {
	if authorization == "" {
		return "", domain.ErrMissingCredential
	}
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return "", fmt.Errorf("%w: authorization header is not a bearer token", domain.ErrInvalidCredential)
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authorization, bearerPrefix))

	claims, err := d.Decode(raw)
	if err != nil {
		return "", err
	}
	return domain.ShopDomainFromDest(claims.Dest), nil
}

// Decode verifies a raw session token
func (d *SessionTokenDecoder) Decode(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return d.apiSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(d.apiKey),
		jwt.WithLeeway(sessionTokenLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(d.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}

	if err := validateIssuerAndDest(claims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}
	return claims, nil
}

// validateIssuerAndDest requires iss and dest to share the same shop origin
func validateIssuerAndDest(claims *SessionClaims) error {
	if claims.Dest == "" {
		return errors.New("missing dest claim")
	}
	dest, err := url.Parse(claims.Dest)
	if err != nil || dest.Host == "" {
		return errors.New("malformed dest claim")
	}
	iss, err := url.Parse(claims.Issuer)
	if err != nil || iss.Host == "" {
		return errors.New("malformed iss claim")
	}
	if iss.Scheme != dest.Scheme || iss.Host != dest.Host {
		return errors.New("iss and dest claims do not belong to the same shop")
	}
	return nil
}
