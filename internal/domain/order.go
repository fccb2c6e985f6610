package domain

import (
	"github.com/shopspring/decimal"
)

// Order is an order ingested from an orders/create webhook
type Order struct {
	OrderID              int64
	ShopID               uint
	Currency             string
	CurrentSubtotalPrice decimal.Decimal
	CreatedAt            int64
}

// OrderRow is the flat joined view of an order and its owning shop
type OrderRow struct {
	ID                   uint   `json:"id"`
	OrderID              int64  `json:"order_id"`
	ShopID               uint   `json:"shop_id"`
	Currency             string `json:"currency"`
	CurrentSubtotalPrice string `json:"current_subtotal_price"`
	CreatedAt            int64  `json:"created_at"`
	Domain               string `json:"domain"`
}

// SubtotalScale is the number of fractional digits stored for subtotals
const SubtotalScale = 3

// SubtotalPrecision is the total number of digits stored for subtotals
const SubtotalPrecision = 10
