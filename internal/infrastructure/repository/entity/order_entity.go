package entity

import (
	"github.com/shopspring/decimal"

	"shopify-app-backend/internal/domain"
)

// OrderModel is the relational row for an ingested order
type OrderModel struct {
	ID                   uint            `gorm:"primaryKey"`
	OrderID              int64           `gorm:"not null;uniqueIndex"`
	ShopID               uint            `gorm:"not null;index"`
	Currency             string          `gorm:"size:3;not null"`
	CurrentSubtotalPrice decimal.Decimal `gorm:"type:numeric(10,3);not null"`
	CreatedAt            int64           `gorm:"not null;autoCreateTime:false"`
}

func (OrderModel) TableName() string {
	return "orders"
}

func OrderModelFromDomain(order *domain.Order) *OrderModel {
	return &OrderModel{
		OrderID:              order.OrderID,
		ShopID:               order.ShopID,
		Currency:             order.Currency,
		CurrentSubtotalPrice: order.CurrentSubtotalPrice,
		CreatedAt:            order.CreatedAt,
	}
}

// OrderRowRecord is the scan target of the orders/shops join
type OrderRowRecord struct {
	ID                   uint
	OrderID              int64
	ShopID               uint
	Currency             string
	CurrentSubtotalPrice decimal.Decimal
	CreatedAt            int64
	Domain               string
}

// ToDomain renders the subtotal with its fixed scale
func (r *OrderRowRecord) ToDomain() domain.OrderRow {
	return domain.OrderRow{
		ID:                   r.ID,
		OrderID:              r.OrderID,
		ShopID:               r.ShopID,
		Currency:             r.Currency,
		CurrentSubtotalPrice: r.CurrentSubtotalPrice.StringFixed(domain.SubtotalScale),
		CreatedAt:            r.CreatedAt,
		Domain:               r.Domain,
	}
}

// WebhookEventModel records a processed webhook delivery
type WebhookEventModel struct {
	ID        uint   `gorm:"primaryKey"`
	EventID   string `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:false"`
}

func (WebhookEventModel) TableName() string {
	return "webhook_events"
}

func WebhookEventModelFromDomain(event *domain.WebhookEvent) *WebhookEventModel {
	return &WebhookEventModel{
		EventID:   event.EventID,
		CreatedAt: event.CreatedAt,
	}
}
