package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopify-app-backend/internal/domain"
	"shopify-app-backend/internal/infrastructure/repository/entity"
	"shopify-app-backend/internal/ports"
)

// GormShopRepository implements ShopRepository using gorm
type GormShopRepository struct {
	db *Database
}

// NewShopRepository creates a new shop repository
func NewShopRepository(db *Database) ports.ShopRepository {
	return &GormShopRepository{db: db}
}

// UpsertShop saves a shop, replacing token, scopes and updated_at when the domain exists.
// created_at is only written on insert.
func (r *GormShopRepository) UpsertShop(ctx context.Context, shop *domain.Shop) (bool, error) {
	model := entity.ShopModelFromDomain(shop)
	model.ID = 0
	created := false

	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.ShopModel{}).Where("domain = ?", model.Domain).Count(&count).Error; err != nil {
			return err
		}
		created = count == 0

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "domain"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "access_scopes", "updated_at"}),
		}).Create(model).Error
		if err != nil {
			return err
		}

		// the returned id is unreliable after an ON CONFLICT update
		var stored entity.ShopModel
		if err := tx.Where("domain = ?", model.Domain).First(&stored).Error; err != nil {
			return err
		}
		*shop = *stored.ToDomain()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to save shop: %w", err)
	}

	return created, nil
}

// GetShop retrieves a shop by domain
func (r *GormShopRepository) GetShop(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	var model entity.ShopModel
	err := r.db.DB.WithContext(ctx).Where("domain = ?", shopDomain).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	return model.ToDomain(), nil
}

// DeleteShopsByDomain deletes the shop rows; orders go with them through the foreign key
func (r *GormShopRepository) DeleteShopsByDomain(ctx context.Context, shopDomain string) (int64, error) {
	result := r.db.DB.WithContext(ctx).Where("domain = ?", shopDomain).Delete(&entity.ShopModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete shop: %w", result.Error)
	}

	return result.RowsAffected, nil
}
