package repository

import (
	"context"
	"time"

	"bakery/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 注文ヘッダの永続化
// 業務ルールは持たない（整合性はusecase側のsagaが守る）。
type OrderRepository interface {
	//作成したIDを返す
	CreateHeader(ctx context.Context, order model.Order) (int64, error)
	//合計を確定してCOMPLETEDにする（1回のUPDATE）
	UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal, now time.Time) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, now time.Time) error
	DeleteHeader(ctx context.Context, orderID int64) error
	//COMPLETEDのみ、新しい順、明細をまとめて返す
	ListByActor(ctx context.Context, actorID int64) ([]model.OrderHistoryEntry, error)
}
