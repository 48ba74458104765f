package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの1行
// 同じ商品を2回追加した場合も別の行になる。
type CartLine struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID   int64     `gorm:"not null;index" json:"actor_id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 商品テーブルとjoinした表示用の行
// 価格はスナップショットではなく現在のカタログ価格。
type CartLineView struct {
	ID        int64           `json:"id"`
	ActorID   int64           `json:"actor_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price" json:"price"`
}
