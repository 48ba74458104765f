package repository

import (
	"context"

	"bakery/internal/domain/model"
)

type OrderItemRepository interface {
	//1行ずつ挿入（まとめて原子的には書かない）
	Insert(ctx context.Context, item model.OrderItem) error
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
