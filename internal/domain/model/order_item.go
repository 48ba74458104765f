package model

import "github.com/shopspring/decimal"

// 注文明細（書き込み後は不変）
// UnitPriceAtPurchaseはコミット時点のカタログ価格のコピー。
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"order_id"`
	ProductID           int64           `gorm:"not null;index" json:"product_id"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	UnitPriceAtPurchase decimal.Decimal `gorm:"type:numeric(10,2);not null;column:unit_price_at_purchase" json:"unit_price_at_purchase"`
}

// 注文履歴用の明細（商品名をjoinしたもの）
type OrderItemSummary struct {
	OrderID             int64           `json:"-"`
	ProductID           int64           `json:"product_id"`
	Name                string          `json:"name"`
	Quantity            int64           `json:"quantity"`
	UnitPriceAtPurchase decimal.Decimal `gorm:"column:unit_price_at_purchase" json:"unit_price_at_purchase"`
}

// 注文履歴の1件
type OrderHistoryEntry struct {
	Order Order
	Items []OrderItemSummary
}
