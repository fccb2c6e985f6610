package application

import (
	"context"

	"github.com/rs/zerolog"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/ports"
)

// AuditService writes verified webhook deliveries to the audit log when one is
// configured. Audit failures never fail the delivery.
type AuditService struct {
	log    ports.WebhookAuditLog
	logger zerolog.Logger
}

// NewAuditService creates the audit service; log may be nil
func NewAuditService(log ports.WebhookAuditLog, logger zerolog.Logger) *AuditService {
	return &AuditService{log: log, logger: logger}
}

func (s *AuditService) Enabled() bool {
	return s != nil && s.log != nil
}

func (s *AuditService) Record(ctx context.Context, delivery *domain.WebhookDelivery) {
	if !s.Enabled() {
		return
	}
	if err := s.log.LogWebhook(ctx, delivery); err != nil {
		s.logger.Warn().Err(err).
			Str("topic", delivery.Topic).
			Str("shop", delivery.Shop).
			Msg("Failed to log webhook")
	}
}
