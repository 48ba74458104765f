package repository

import (
	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// 行を追加（既存行への加算はしない）
func (r *CartGormRepository) Add(ctx context.Context, line model.CartLine) (model.CartLine, error) {
	if line.Quantity <= 0 {
		return model.CartLine{}, errors.New("invalid quantity")
	}
	if err := r.db.WithContext(ctx).Create(&line).Error; err != nil {
		return model.CartLine{}, err
	}
	return line, nil
}

// カート行を商品とjoinして取得
// 商品が消えている行はjoinで落ちる。
func (r *CartGormRepository) ListByActor(ctx context.Context, actorID int64) ([]model.CartLineView, error) {
	var lines []model.CartLineView

	err := r.db.WithContext(ctx).
		Table("cart_lines").
		Select("cart_lines.id, cart_lines.actor_id, cart_lines.product_id, cart_lines.quantity, products.name, products.price AS unit_price").
		Joins("join products on products.id = cart_lines.product_id").
		Where("cart_lines.actor_id = ?", actorID).
		Order("cart_lines.id asc").
		Scan(&lines).Error
	if err != nil {
		return []model.CartLineView{}, err
	}
	if lines == nil {
		lines = []model.CartLineView{}
	}
	return lines, nil
}

// 行の数量を更新
func (r *CartGormRepository) UpdateQuantity(ctx context.Context, lineID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 行を削除
func (r *CartGormRepository) DeleteByID(ctx context.Context, lineID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartLine{}, lineID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ユーザーのカート行を全削除（0件でもエラーにしない）
func (r *CartGormRepository) DeleteByActor(ctx context.Context, actorID int64) error {
	return r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Delete(&model.CartLine{}).Error
}

//行がそのユーザーのものかを判定

func (r *CartGormRepository) IsOwnedByActor(ctx context.Context, lineID int64, actorID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ? AND actor_id = ?", lineID, actorID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
