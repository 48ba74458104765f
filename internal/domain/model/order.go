package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// 注文ヘッダ
// PENDING/合計0で作成され、合計はコミット中に一度だけ確定する。
type Order struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID          int64           `gorm:"not null;index" json:"actor_id"`
	Status           OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	ConfirmationCode string          `gorm:"type:char(8);not null;uniqueIndex" json:"confirmation_code"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
}
