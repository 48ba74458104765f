package model

import "github.com/shopspring/decimal"

// カタログの商品（このサービスからは読み取り専用）
type Product struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Category  string          `gorm:"type:varchar(100);not null;index" json:"category"`
	ImageURL  string          `gorm:"type:varchar(500);column:img_url" json:"img_url"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Available bool            `gorm:"not null;default:true" json:"available"`
}
