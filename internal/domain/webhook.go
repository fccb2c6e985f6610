package domain

import "time"

// Webhook topics this backend subscribes to or receives
const (
	TopicAppUninstalled       = "app/uninstalled"
	TopicOrdersCreate         = "orders/create"
	TopicCustomersDataRequest = "customers/data_request"
	TopicCustomersRedact      = "customers/redact"
	TopicShopRedact           = "shop/redact"
)

// WebhookEvent is a processed webhook delivery, keyed by the vendor event id
type WebhookEvent struct {
	EventID   string
	CreatedAt int64
}

// WebhookDelivery is a verified inbound webhook request
type WebhookDelivery struct {
	Topic      string
	Shop       string
	EventID    string
	Payload    []byte
	Verified   bool
	ReceivedAt time.Time
}
