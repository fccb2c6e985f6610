package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopify-app-backend/internal/domain"
)

const (
	msgShopRequired      = "Shop domain is required"
	msgDomainRequired    = "Domain is required"
	msgInvalidShopDomain = "Shop domain must match 'example.myshopify.com'."
	msgInvalidRequest    = "Invalid request data"
	msgInvalidSignature  = "Invalid webhook signature"
	msgMissingAuth       = "Authorization header is missing"
	msgInvalidToken      = "Invalid session token"
	msgAuthFailed        = "Unable to authenticate session tokens"
	msgSessionShop       = "Shop not found for the provided domain"
	msgWebhookShop       = "Shop not found"
	msgUpstream          = "Shopify API request failed"
	msgInternal          = "Internal server error"
	msgCallbackFailed    = "Callback processing failed"
	msgUninstallFailed   = "Uninstall failed"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// sessionError maps a failed session-token check
func sessionError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return http.StatusBadRequest, msgMissingAuth
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusUnauthorized, msgInvalidToken
	case errors.Is(err, domain.ErrUnknownShop):
		return http.StatusNotFound, msgSessionShop
	default:
		return http.StatusUnauthorized, msgAuthFailed
	}
}

// webhookError maps a failed webhook delivery. fallback is the route's
// generic 500 message.
func webhookError(err error, fallback string) (int, string) {
	var payloadErr *domain.PayloadError
	switch {
	case errors.As(err, &payloadErr):
		return http.StatusBadRequest, "Missing data: " + payloadErr.Field
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusBadRequest, msgInvalidRequest
	case errors.Is(err, domain.ErrUnknownShop):
		return http.StatusNotFound, msgWebhookShop
	default:
		return http.StatusInternalServerError, fallback
	}
}

// proxyError maps a failed read through the Admin API or the store
func proxyError(err error) (int, string) {
	if errors.Is(err, domain.ErrUpstreamFailure) {
		return http.StatusBadGateway, msgUpstream
	}
	return http.StatusInternalServerError, msgInternal
}
