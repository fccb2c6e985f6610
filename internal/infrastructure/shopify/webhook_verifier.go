package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/rs/zerolog"
)

// WebhookVerifier validates the X-Shopify-Hmac-Sha256 signature of webhook bodies
type WebhookVerifier struct {
	secret string
	logger zerolog.Logger
}

// NewWebhookVerifier creates a verifier for the app's shared secret
func NewWebhookVerifier(secret string, logger zerolog.Logger) *WebhookVerifier {
	return &WebhookVerifier{secret: secret, logger: logger}
}

// Verify reports whether signature is base64(HMAC-SHA256(body, secret)).
// It fails closed: a missing signature, missing secret, or any panic during
// computation is treated as invalid.
func (v *WebhookVerifier) Verify(body []byte, signature string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error().Interface("panic", r).Msg("Error validating webhook signature")
			ok = false
		}
	}()

	if signature == "" {
		v.logger.Warn().Msg("Missing HMAC in request headers")
		return false
	}
	if v.secret == "" {
		v.logger.Warn().Msg("Webhook secret not configured")
		return false
	}

	if !hmac.Equal([]byte(ComputeWebhookHMAC(body, v.secret)), []byte(signature)) {
		v.logger.Warn().Msg("Webhook signature mismatch")
		return false
	}
	return true
}

// ComputeWebhookHMAC returns base64(HMAC-SHA256(body, secret))
func ComputeWebhookHMAC(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
