package repository

import (
	"bakery/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一意制約違反（確認コードの衝突など）
var ErrDuplicate = errors.New("duplicate key")

// カタログの読み取り窓口
// 価格は常に現在値（キャッシュしない）。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	ListByCategory(ctx context.Context, category string) ([]model.Product, error)
	//名前・カテゴリの部分一致
	Search(ctx context.Context, term string) ([]model.Product, error)
}
