package repository

import (
	"context"
	"errors"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// unique_violation
const pgUniqueViolation = "23505"

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) CreateHeader(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, repo.ErrDuplicate
		}
		return 0, err
	}
	return order.ID, nil
}

// updated_atは呼び出し側の時計で入れる
func (r *OrderGormRepository) UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"total_price": total,
			"status":      model.OrderStatusCompleted,
			"updated_at":  now,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": now,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 補償用。既に無い場合もエラーにしない
func (r *OrderGormRepository) DeleteHeader(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Delete(&model.Order{}, orderID).Error
}

// 注文履歴（新しい順）
// 確定済み（COMPLETED）だけを返す。コミット途中のPENDINGと補償失敗のFAILEDは見せない。
// 明細は商品名をjoinして注文ごとにまとめる。
func (r *OrderGormRepository) ListByActor(ctx context.Context, actorID int64) ([]model.OrderHistoryEntry, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND status = ?", actorID, model.OrderStatusCompleted).
		Order("created_at desc").
		Order("id desc").
		Find(&orders).Error
	if err != nil {
		return []model.OrderHistoryEntry{}, err
	}
	if len(orders) == 0 {
		return []model.OrderHistoryEntry{}, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	var items []model.OrderItemSummary
	err = r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.order_id, order_items.product_id, COALESCE(products.name, '') AS name, order_items.quantity, order_items.unit_price_at_purchase").
		Joins("left join products on products.id = order_items.product_id").
		Where("order_items.order_id IN ?", ids).
		Order("order_items.id asc").
		Scan(&items).Error
	if err != nil {
		return []model.OrderHistoryEntry{}, err
	}

	byOrder := make(map[int64][]model.OrderItemSummary, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	out := make([]model.OrderHistoryEntry, 0, len(orders))
	for _, o := range orders {
		its := byOrder[o.ID]
		if its == nil {
			its = []model.OrderItemSummary{}
		}
		out = append(out, model.OrderHistoryEntry{Order: o, Items: its})
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
