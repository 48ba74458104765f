package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"bakery/internal/config"
	"bakery/internal/domain/model"
	"bakery/internal/lock"
	"bakery/internal/pricing"
	repo "bakery/internal/repository"

	"github.com/shopspring/decimal"
)

// コミット1回の状態
//
//	VALIDATING -> HEADER_CREATED -> ITEMS_MATERIALIZED -> FINALIZED
//	(ヘッダ作成後の失敗) -> COMPENSATING -> ABORTED
//
// 検証エラーは書き込み前なので補償を通らずABORTEDになる。
type SagaState string

const (
	StateValidating        SagaState = "VALIDATING"
	StateHeaderCreated     SagaState = "HEADER_CREATED"
	StateItemsMaterialized SagaState = "ITEMS_MATERIALIZED"
	StateFinalized         SagaState = "FINALIZED"
	StateCompensating      SagaState = "COMPENSATING"
	StateAborted           SagaState = "ABORTED"
)

// コミット1回の結果
type SagaResult struct {
	AttemptID        string
	OrderID          int64 // ヘッダ作成前に失敗した場合は0
	ConfirmationCode string
	Total            decimal.Decimal
	ItemCount        int
	Final            SagaState
	Trace            []SagaState
}

// 1回のコミット試行。再利用しない
type commitSaga struct {
	u         *OrderUsecase
	attemptID string
	actorID   int64
	in        PlaceOrderInput
	log       *slog.Logger

	unlock lock.UnlockFunc

	orderID int64
	code    string
	quote   pricing.Quote
	written int

	// 補償のきっかけになったエラー
	cause error
	trace []SagaState
}

func newCommitSaga(u *OrderUsecase, actorID int64, in PlaceOrderInput) *commitSaga {
	attemptID := u.idGen.NewID()
	return &commitSaga{
		u:         u,
		attemptID: attemptID,
		actorID:   actorID,
		in:        in,
		log:       slog.Default().With("attempt_id", attemptID, "actor_id", actorID),
		unlock:    func() {},
		quote:     pricing.Quote{Total: decimal.Zero},
	}
}

// 終端（FINALIZED/ABORTED）まで状態を進める
func (s *commitSaga) run(ctx context.Context) (SagaResult, error) {
	defer func() { s.unlock() }()

	state := StateValidating
	var err error
	for {
		s.trace = append(s.trace, state)
		s.log.Debug("order saga transition", "state", state, "order_id", s.orderID)

		var next SagaState
		switch state {
		case StateValidating:
			next, err = s.validateAndCreateHeader(ctx)
			if s.orderID != 0 {
				// ヘッダ作成後は外からのキャンセルで止めない
				ctx = context.WithoutCancel(ctx)
			}
		case StateHeaderCreated:
			next, err = s.materializeItems(ctx)
		case StateItemsMaterialized:
			next, err = s.finalize(ctx)
		case StateCompensating:
			next, err = s.compensate(ctx)
		case StateFinalized, StateAborted:
			return s.result(state), err
		default:
			return s.result(StateAborted), fmt.Errorf("unknown saga state %q", state)
		}
		state = next
	}
}

// VALIDATING -> HEADER_CREATED
// 書き込み前の検証はここで全部済ませる。
func (s *commitSaga) validateAndCreateHeader(ctx context.Context) (SagaState, error) {
	if s.actorID <= 0 {
		return StateAborted, NewError(KindUnauthenticated, "User not logged in")
	}
	if s.in.PickupTime != nil {
		if err := validatePickupTime(*s.in.PickupTime); err != nil {
			return StateAborted, err
		}
	}

	unlock, err := s.u.locker.TryLock(ctx, s.actorID)
	if errors.Is(err, lock.ErrLocked) {
		return StateAborted, NewError(KindCommitInProgress, "an order is already being placed")
	}
	if err != nil {
		return StateAborted, wrapError(KindStorageFailure, msgPlaceOrderFailed, err)
	}
	s.unlock = unlock

	if s.u.emptyCart == config.EmptyCartReject {
		lines, err := s.u.carts.ListByActor(ctx, s.actorID)
		if err != nil {
			return StateAborted, wrapError(KindStorageFailure, msgPlaceOrderFailed, err)
		}
		if len(lines) == 0 {
			return StateAborted, NewError(KindEmptyCart, "cart is empty")
		}
	}

	code, err := newConfirmationCode(s.u.random)
	if err != nil {
		return StateAborted, wrapError(KindStorageFailure, msgPlaceOrderFailed, err)
	}

	now := s.u.clock.Now().UTC()
	orderID, err := s.u.orders.CreateHeader(ctx, model.Order{
		ActorID:          s.actorID,
		Status:           model.OrderStatusPending,
		TotalPrice:       decimal.Zero,
		ConfirmationCode: code,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// 衝突してもリトライしない
			s.log.Warn("confirmation code collision", "code", code)
		}
		return StateAborted, wrapError(KindStorageFailure, msgPlaceOrderFailed, fmt.Errorf("create order header: %w", err))
	}

	s.orderID = orderID
	s.code = code
	s.log = s.log.With("order_id", orderID)
	return StateHeaderCreated, nil
}

// HEADER_CREATED -> ITEMS_MATERIALIZED
// 価格はここで一度だけ読む。途中で失敗すると一部の明細だけ書かれた状態になる。
func (s *commitSaga) materializeItems(ctx context.Context) (SagaState, error) {
	lines, err := s.u.carts.ListByActor(ctx, s.actorID)
	if err != nil {
		s.cause = wrapError(KindStorageFailure, msgPlaceOrderFailed, fmt.Errorf("read cart lines: %w", err))
		return StateCompensating, nil
	}
	if len(lines) == 0 && s.u.emptyCart == config.EmptyCartReject {
		// 検証後に別リクエストでカートが空になった
		s.cause = NewError(KindEmptyCart, "cart is empty")
		return StateCompensating, nil
	}

	s.quote = pricing.Price(lines)

	for _, it := range s.quote.Items {
		it.OrderID = s.orderID
		if err := s.u.orderItems.Insert(ctx, it); err != nil {
			s.cause = wrapError(KindStorageFailure, msgPlaceOrderFailed, fmt.Errorf("insert order item (product %d): %w", it.ProductID, err))
			return StateCompensating, nil
		}
		s.written++
	}

	return StateItemsMaterialized, nil
}

// ITEMS_MATERIALIZED -> FINALIZED
// 合計確定→カート削除。両方成功して初めて成功扱い。
func (s *commitSaga) finalize(ctx context.Context) (SagaState, error) {
	if err := s.u.orders.UpdateTotal(ctx, s.orderID, s.quote.Total, s.u.clock.Now().UTC()); err != nil {
		s.cause = wrapError(KindStorageFailure, msgPlaceOrderFailed, fmt.Errorf("update order total: %w", err))
		return StateCompensating, nil
	}
	if err := s.u.carts.DeleteByActor(ctx, s.actorID); err != nil {
		s.cause = wrapError(KindStorageFailure, msgPlaceOrderFailed, fmt.Errorf("clear cart: %w", err))
		return StateCompensating, nil
	}

	s.log.Info("order placed", "total", s.quote.Total.String(), "items", s.written)
	s.audit(ctx, model.AuditActionOrderCommitted, nil)
	return StateFinalized, nil
}

// COMPENSATING -> ABORTED
// 明細→ヘッダの順に消す。カートには触らない。
func (s *commitSaga) compensate(ctx context.Context) (SagaState, error) {
	s.log.Warn("order saga compensating", "error", s.cause, "items_written", s.written)

	var compErr error
	if err := s.u.orderItems.DeleteByOrderID(ctx, s.orderID); err != nil {
		compErr = fmt.Errorf("delete order items: %w", err)
	} else if err := s.u.orders.DeleteHeader(ctx, s.orderID); err != nil {
		compErr = fmt.Errorf("delete order header: %w", err)
	}

	if compErr != nil {
		// 残った注文を見つけられるようにFAILEDにしておく（失敗しても続行）
		if err := s.u.orders.UpdateStatus(ctx, s.orderID, model.OrderStatusFailed, s.u.clock.Now().UTC()); err != nil {
			s.log.Error("mark orphaned order failed", "error", err)
		}
		s.log.Error("order compensation failed; orphaned order left behind",
			"alert", true,
			"error", compErr,
			"cause", s.cause,
		)
		s.audit(ctx, model.AuditActionCompensationFailed, compErr)
		return StateAborted, wrapError(KindCompensationFailure, msgPlaceOrderFailed, errors.Join(s.cause, compErr))
	}

	s.audit(ctx, model.AuditActionOrderCompensated, nil)
	return StateAborted, s.cause
}

// 監査ログは失敗しても結果を変えない
func (s *commitSaga) audit(ctx context.Context, action model.AuditAction, compErr error) {
	if s.u.audits == nil {
		return
	}

	detail := map[string]any{
		"total":         s.quote.Total.String(),
		"items_written": s.written,
		"trace":         s.trace,
	}
	if s.cause != nil {
		detail["cause"] = s.cause.Error()
	}
	if compErr != nil {
		detail["compensation_error"] = compErr.Error()
	}
	b, err := json.Marshal(detail)
	if err != nil {
		b = []byte("{}")
	}

	if err := s.u.audits.Create(ctx, model.AuditLog{
		ActorID:    s.actorID,
		Action:     action,
		OrderID:    s.orderID,
		AttemptID:  s.attemptID,
		DetailJSON: string(b),
		CreatedAt:  s.u.clock.Now().UTC(),
	}); err != nil {
		s.log.Warn("audit log write failed", "action", action, "error", err)
	}
}

func (s *commitSaga) result(final SagaState) SagaResult {
	return SagaResult{
		AttemptID:        s.attemptID,
		OrderID:          s.orderID,
		ConfirmationCode: s.code,
		Total:            s.quote.Total,
		ItemCount:        s.written,
		Final:            final,
		Trace:            append([]SagaState(nil), s.trace...),
	}
}
