package usecase

import (
	"bakery/internal/domain/model"
	"bakery/internal/pricing"
	repo "bakery/internal/repository"
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 冪等性はここでは保証しない（二重送信は2行になる）。
type CartUsecase struct {
	cartRepo    repo.CartLineRepository
	productRepo repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartLineRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// price は現在のカタログ価格（注文確定時に変わっている可能性あり）
type CartLineResponse struct {
	ID        int64           `json:"cart_item_id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartLineInput struct {
	Quantity int64
}

// カート一覧（商品とjoin、追加順）
func (u *CartUsecase) ListCart(ctx context.Context, actorID int64) (CartResponse, error) {
	if actorID <= 0 {
		return CartResponse{}, NewError(KindUnauthenticated, "User not logged in")
	}
	return u.buildCartResponse(ctx, actorID)
}

// カートに1行追加（同一商品でも別の行）
func (u *CartUsecase) AddToCart(ctx context.Context, actorID int64, in AddCartInput) (CartResponse, error) {
	if actorID <= 0 {
		return CartResponse{}, NewError(KindUnauthenticated, "User not logged in")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewError(KindInvalidInput, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewError(KindInvalidInput, "invalid quantity")
	}

	// 商品チェック
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewError(KindNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, wrapError(KindStorageFailure, "db error", err)
	}
	if !p.Available {
		return CartResponse{}, NewError(KindInvalidInput, "product unavailable")
	}

	if _, err := u.cartRepo.Add(ctx, model.CartLine{
		ActorID:   actorID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
	}); err != nil {
		return CartResponse{}, wrapError(KindStorageFailure, "db error", err)
	}

	return u.buildCartResponse(ctx, actorID)
}

// 数量変更。1未満は削除と同じ
func (u *CartUsecase) UpdateCartLine(ctx context.Context, actorID int64, lineID int64, in UpdateCartLineInput) (CartResponse, error) {
	if actorID <= 0 {
		return CartResponse{}, NewError(KindUnauthenticated, "User not logged in")
	}
	if in.Quantity < 1 {
		return u.RemoveCartLine(ctx, actorID, lineID)
	}
	if err := u.checkOwner(ctx, actorID, lineID); err != nil {
		return CartResponse{}, err
	}

	if err := u.cartRepo.UpdateQuantity(ctx, lineID, in.Quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewError(KindNotFound, "not found")
		}
		return CartResponse{}, wrapError(KindStorageFailure, "db error", err)
	}

	return u.buildCartResponse(ctx, actorID)
}

// 行削除
func (u *CartUsecase) RemoveCartLine(ctx context.Context, actorID int64, lineID int64) (CartResponse, error) {
	if actorID <= 0 {
		return CartResponse{}, NewError(KindUnauthenticated, "User not logged in")
	}
	if err := u.checkOwner(ctx, actorID, lineID); err != nil {
		return CartResponse{}, err
	}

	if err := u.cartRepo.DeleteByID(ctx, lineID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewError(KindNotFound, "not found")
		}
		return CartResponse{}, wrapError(KindStorageFailure, "db error", err)
	}

	return u.buildCartResponse(ctx, actorID)
}

// カートを空にする
func (u *CartUsecase) ClearCart(ctx context.Context, actorID int64) error {
	if actorID <= 0 {
		return NewError(KindUnauthenticated, "User not logged in")
	}
	if err := u.cartRepo.DeleteByActor(ctx, actorID); err != nil {
		return wrapError(KindStorageFailure, "db error", err)
	}
	return nil
}

// 他人の行は存在しない扱い
func (u *CartUsecase) checkOwner(ctx context.Context, actorID int64, lineID int64) error {
	if lineID <= 0 {
		return NewError(KindInvalidInput, "invalid id")
	}
	owned, err := u.cartRepo.IsOwnedByActor(ctx, lineID, actorID)
	if err != nil {
		return wrapError(KindStorageFailure, "db error", err)
	}
	if !owned {
		return NewError(KindNotFound, "not found")
	}
	return nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, actorID int64) (CartResponse, error) {
	lines, err := u.cartRepo.ListByActor(ctx, actorID)
	if err != nil {
		return CartResponse{}, wrapError(KindStorageFailure, "db error", err)
	}

	quote := pricing.Price(lines)

	items := make([]CartLineResponse, 0, len(lines))
	for _, l := range lines {
		items = append(items, CartLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  pricing.LineTotal(l.Quantity, l.UnitPrice),
		})
	}

	return CartResponse{Items: items, Total: quote.Total}, nil
}
