package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/infrastructure/repository/entity"
	"shopify-app-backend/internal/ports"
)

// GormOrderRepository implements OrderRepository using gorm
type GormOrderRepository struct {
	db *Database
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *Database) ports.OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) WebhookEventExists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&entity.WebhookEventModel{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check webhook event: %w", err)
	}
	return count > 0, nil
}

// CreateOrderWithEvent inserts the order and its webhook event in one transaction.
// A unique violation on either row is reported as domain.ErrDuplicateEvent and a
// missing shop as domain.ErrUnknownShop.
func (r *GormOrderRepository) CreateOrderWithEvent(ctx context.Context, order *domain.Order, event *domain.WebhookEvent) error {
	orderModel := entity.OrderModelFromDomain(order)
	eventModel := entity.WebhookEventModelFromDomain(event)

	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(orderModel).Error; err != nil {
			return err
		}
		return tx.Create(eventModel).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicateEvent
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrUnknownShop
	default:
		return fmt.Errorf("failed to save order: %w", err)
	}
}

// ListOrdersByShopDomain returns every order of the shop, oldest row first
func (r *GormOrderRepository) ListOrdersByShopDomain(ctx context.Context, shopDomain string) ([]domain.OrderRow, error) {
	var records []entity.OrderRowRecord
	err := r.db.DB.WithContext(ctx).
		Table("orders").
		Select("orders.id, orders.order_id, orders.shop_id, orders.currency, orders.current_subtotal_price, orders.created_at, shops.domain").
		Joins("JOIN shops ON shops.id = orders.shop_id").
		Where("shops.domain = ?", shopDomain).
		Order("orders.id").
		Scan(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	rows := make([]domain.OrderRow, 0, len(records))
	for i := range records {
		rows = append(rows, records[i].ToDomain())
	}
	return rows, nil
}
