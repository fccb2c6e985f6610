package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"shopify-app-backend/internal/application"
	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

const (
	headerHmac       = "X-Shopify-Hmac-Sha256"
	headerShopDomain = "X-Shopify-Shop-Domain"
	headerEventID    = "X-Shopify-Event-Id"
	headerTopic      = "X-Shopify-Topic"

	maxWebhookBody = 1 << 20
)

// webhookFunc handles a delivery whose body signature has been verified
type webhookFunc func(w http.ResponseWriter, r *http.Request, delivery *domain.WebhookDelivery)

// verifiedWebhook reads the raw body, checks X-Shopify-Hmac-Sha256 and hands
// the delivery to next. An empty topic is taken from X-Shopify-Topic.
func (h *Handler) verifiedWebhook(topic string, next webhookFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deliveryTopic := topic
		if deliveryTopic == "" {
			deliveryTopic = r.Header.Get(headerTopic)
		}
		h.serveWebhook(w, r, deliveryTopic, next)
	}
}

func (h *Handler) serveWebhook(w http.ResponseWriter, r *http.Request, topic string, next webhookFunc) {
	logger := hlog.FromRequest(r)

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read webhook payload")
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if !h.verifier.Verify(payload, r.Header.Get(headerHmac)) {
		logger.Warn().Str("topic", topic).Msg("Webhook signature verification failed")
		h.metrics.WebhookReceived(topic, ports.OutcomeRejected)
		writeError(w, http.StatusBadRequest, msgInvalidSignature)
		return
	}

	next(w, r, &domain.WebhookDelivery{
		Topic:      topic,
		Shop:       r.Header.Get(headerShopDomain),
		EventID:    r.Header.Get(headerEventID),
		Payload:    payload,
		Verified:   true,
		ReceivedAt: h.now().UTC(),
	})
}

// requireSession verifies the bearer session token, exposes the shop domain
// and an Admin API session to next, and closes the session on every exit.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := hlog.FromRequest(r)

		shop, session, err := h.authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			status, message := sessionError(err)
			logger.Warn().Err(err).Int("status", status).Msg("Session authentication failed")
			writeError(w, status, message)
			return
		}
		defer session.Close()

		ctx := domain.WithShopDomain(r.Context(), shop.Domain)
		ctx = application.WithSession(ctx, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate turns a panic in token decoding or session setup into an
// authentication failure
func (h *Handler) authenticate(ctx context.Context, authorization string) (shop *domain.Shop, session ports.ShopifySession, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			shop, session = nil, nil
			err = fmt.Errorf("session authentication panicked: %v", rec)
		}
	}()
	return h.sessions.Authenticate(ctx, authorization)
}
