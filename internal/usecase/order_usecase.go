package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"bakery/internal/config"
	"bakery/internal/domain/model"
	"bakery/internal/lock"
	"bakery/internal/metrics"
	repo "bakery/internal/repository"

	"github.com/shopspring/decimal"
)

// 注文確定（saga）と注文履歴
type OrderUsecase struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartLineRepository
	audits     repo.AuditLogRepository

	locker    lock.ActorLocker
	clock     Clock
	idGen     IDGenerator
	random    io.Reader
	emptyCart config.EmptyCartPolicy
	metrics   *metrics.Metrics
}

func NewOrderUsecase(
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	carts repo.CartLineRepository,
	audits repo.AuditLogRepository,
	locker lock.ActorLocker,
	clock Clock,
	idGen IDGenerator,
	random io.Reader,
	emptyCart config.EmptyCartPolicy,
	m *metrics.Metrics,
) *OrderUsecase {
	if locker == nil {
		locker = lock.Noop{}
	}
	if emptyCart == "" {
		emptyCart = config.EmptyCartAllow
	}
	return &OrderUsecase{
		orders:     orders,
		orderItems: orderItems,
		carts:      carts,
		audits:     audits,
		locker:     locker,
		clock:      clock,
		idGen:      idGen,
		random:     random,
		emptyCart:  emptyCart,
		metrics:    m,
	}
}

type PlaceOrderInput struct {
	// "HH:MM"。nilなら検証しない
	PickupTime *string
}

type PlaceOrderOutput struct {
	OrderID          int64           `json:"order_id"`
	ConfirmationCode string          `json:"confirmation_code"`
	TotalPrice       decimal.Decimal `json:"total_price"`
}

type OrderHistoryItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderHistoryOutput struct {
	OrderID          int64              `json:"order_id"`
	CreatedAt        time.Time          `json:"order_date"`
	Status           string             `json:"status"`
	ConfirmationCode string             `json:"confirmation_code"`
	TotalPrice       decimal.Decimal    `json:"total_price"`
	Summary          string             `json:"items"`
	Items            []OrderHistoryItem `json:"item_details"`
}

// カートを注文に確定する
// FINALIZEDまで進んだときだけ成功を返す。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, actorID int64, in PlaceOrderInput) (PlaceOrderOutput, error) {
	res, err := u.Commit(ctx, actorID, in)
	if err != nil {
		return PlaceOrderOutput{}, err
	}
	return PlaceOrderOutput{
		OrderID:          res.OrderID,
		ConfirmationCode: res.ConfirmationCode,
		TotalPrice:       res.Total,
	}, nil
}

// PlaceOrderと同じだが、sagaの経過も返す
func (u *OrderUsecase) Commit(ctx context.Context, actorID int64, in PlaceOrderInput) (SagaResult, error) {
	start := time.Now()

	res, err := newCommitSaga(u, actorID, in).run(ctx)

	u.metrics.ObserveCommit(commitOutcome(res, err), time.Since(start))
	return res, err
}

func commitOutcome(res SagaResult, err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeFinalized
	case KindOf(err) == KindCompensationFailure:
		return metrics.OutcomeCompensationFailed
	case res.OrderID == 0:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeAborted
	}
}

// 注文履歴（新しい順）
func (u *OrderUsecase) GetOrderHistory(ctx context.Context, actorID int64) ([]OrderHistoryOutput, error) {
	if actorID <= 0 {
		return []OrderHistoryOutput{}, NewError(KindUnauthenticated, "User not logged in")
	}

	entries, err := u.orders.ListByActor(ctx, actorID)
	if err != nil {
		return []OrderHistoryOutput{}, wrapError(KindStorageFailure, "db error", err)
	}

	outs := make([]OrderHistoryOutput, 0, len(entries))
	for _, e := range entries {
		outs = append(outs, toOrderHistoryOutput(e))
	}
	return outs, nil
}

func toOrderHistoryOutput(e model.OrderHistoryEntry) OrderHistoryOutput {
	items := make([]OrderHistoryItem, 0, len(e.Items))
	parts := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		items = append(items, OrderHistoryItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPriceAtPurchase,
		})
		parts = append(parts, fmt.Sprintf("%s x %d", it.Name, it.Quantity))
	}

	return OrderHistoryOutput{
		OrderID:          e.Order.ID,
		CreatedAt:        e.Order.CreatedAt,
		Status:           string(e.Order.Status),
		ConfirmationCode: e.Order.ConfirmationCode,
		TotalPrice:       e.Order.TotalPrice,
		Summary:          strings.Join(parts, ", "),
		Items:            items,
	}
}
