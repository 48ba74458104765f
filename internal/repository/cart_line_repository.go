package repository

import (
	"context"

	"bakery/internal/domain/model"
)

type CartLineRepository interface {
	//常に新しい行として追加（同一商品でもマージしない）
	Add(ctx context.Context, line model.CartLine) (model.CartLine, error)
	//商品とjoinして追加順で返す
	ListByActor(ctx context.Context, actorID int64) ([]model.CartLineView, error)
	UpdateQuantity(ctx context.Context, lineID int64, qty int64) error
	DeleteByID(ctx context.Context, lineID int64) error
	DeleteByActor(ctx context.Context, actorID int64) error
	IsOwnedByActor(ctx context.Context, lineID int64, actorID int64) (bool, error)
}
