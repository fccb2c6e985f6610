package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"shopify-app-backend/internal/application"
	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

const msgLoginFailed = "Authentication failed"

// Services are the application services the HTTP layer drives
type Services struct {
	Auth       *application.AuthService
	Sessions   *application.SessionService
	Orders     *application.OrderService
	Products   *application.ProductService
	Dispatcher *application.WebhookDispatcher
	Verifier   ports.WebhookVerifier
	Metrics    ports.MetricsRecorder
}

// Handler serves the REST surface of the app backend
type Handler struct {
	auth       *application.AuthService
	sessions   *application.SessionService
	orders     *application.OrderService
	products   *application.ProductService
	dispatcher *application.WebhookDispatcher
	verifier   ports.WebhookVerifier
	metrics    ports.MetricsRecorder
	logger     zerolog.Logger
	now        func() time.Time
}

func NewHandler(services Services, logger zerolog.Logger) *Handler {
	return &Handler{
		auth:       services.Auth,
		sessions:   services.Sessions,
		orders:     services.Orders,
		products:   services.Products,
		dispatcher: services.Dispatcher,
		verifier:   services.Verifier,
		metrics:    services.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Login starts the install flow for the shop in the "shop" parameter
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	shop := strings.TrimSpace(r.FormValue("shop"))
	if shop == "" {
		writeError(w, http.StatusBadRequest, msgShopRequired)
		return
	}

	result, err := h.auth.Initiate(r.Context(), shop)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidShopDomain) {
			writeError(w, http.StatusBadRequest, msgInvalidShopDomain)
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("shop", shop).Msg("Failed to initiate OAuth")
		writeError(w, http.StatusInternalServerError, msgLoginFailed)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Callback completes the install and redirects to the client app
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("shop") == "" {
		writeError(w, http.StatusBadRequest, msgShopRequired)
		return
	}

	redirectURL, err := h.auth.Callback(r.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCallbackParams) {
			writeError(w, http.StatusBadRequest, msgInvalidRequest)
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("shop", query.Get("shop")).Msg("OAuth callback failed")
		writeError(w, http.StatusInternalServerError, msgCallbackFailed)
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// Uninstall removes a shop and its orders after an app/uninstalled delivery
func (h *Handler) Uninstall(w http.ResponseWriter, r *http.Request, delivery *domain.WebhookDelivery) {
	err := h.dispatcher.Dispatch(r.Context(), delivery)
	if err != nil {
		var payloadErr *domain.PayloadError
		if errors.As(err, &payloadErr) && payloadErr.Field == "domain" {
			writeError(w, http.StatusBadRequest, msgDomainRequired)
			return
		}
		status, message := webhookError(err, msgUninstallFailed)
		h.logDeliveryFailure(r, delivery, err, status)
		writeError(w, status, message)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Webhook acknowledges a verified delivery once its handler succeeds.
// Duplicates are acknowledged without side effects.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request, delivery *domain.WebhookDelivery) {
	err := h.dispatcher.Dispatch(r.Context(), delivery)
	if err != nil {
		status, message := webhookError(err, msgInternal)
		h.logDeliveryFailure(r, delivery, err, status)
		writeError(w, status, message)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) logDeliveryFailure(r *http.Request, delivery *domain.WebhookDelivery, err error, status int) {
	event := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}
	event.Err(err).
		Str("topic", delivery.Topic).
		Str("shop", delivery.Shop).
		Str("event_id", delivery.EventID).
		Msg("Webhook delivery failed")
}

type ordersResponse struct {
	Orders []domain.OrderRow `json:"orders"`
}

// ListOrders returns every stored order of the session's shop
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	shop := domain.GetShopDomainFromContext(r.Context())

	rows, err := h.orders.ListByShop(r.Context(), shop)
	if err != nil {
		status, message := proxyError(err)
		hlog.FromRequest(r).Error().Err(err).Str("shop", shop).Msg("Failed to list orders")
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, ordersResponse{Orders: rows})
}

// ListProducts returns the session's shop products from the Admin API
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context(), application.SessionFromContext(r.Context()))
	if err != nil {
		status, message := proxyError(err)
		hlog.FromRequest(r).Error().Err(err).
			Str("shop", domain.GetShopDomainFromContext(r.Context())).
			Msg("Failed to list products")
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
