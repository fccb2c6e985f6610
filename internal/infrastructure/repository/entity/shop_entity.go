package entity

import (
	"shopify-app-backend/internal/domain"
)

// ShopModel is the relational row for a merchant shop
type ShopModel struct {
	ID           uint   `gorm:"primaryKey"`
	Domain       string `gorm:"size:255;not null;uniqueIndex"`
	AccessToken  string `gorm:"size:255;not null"`
	AccessScopes string `gorm:"size:1024;not null;default:''"`
	CreatedAt    int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    int64  `gorm:"not null;autoUpdateTime:false"`

	Orders []OrderModel `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
}

func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts the row to a domain entity
func (m *ShopModel) ToDomain() *domain.Shop {
	return &domain.Shop{
		ID:           m.ID,
		Domain:       m.Domain,
		AccessToken:  m.AccessToken,
		AccessScopes: domain.SplitScopes(m.AccessScopes),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ShopModelFromDomain converts a domain entity to a row
func ShopModelFromDomain(shop *domain.Shop) *ShopModel {
	return &ShopModel{
		ID:           shop.ID,
		Domain:       shop.Domain,
		AccessToken:  shop.AccessToken,
		AccessScopes: domain.JoinScopes(shop.AccessScopes),
		CreatedAt:    shop.CreatedAt,
		UpdatedAt:    shop.UpdatedAt,
	}
}
