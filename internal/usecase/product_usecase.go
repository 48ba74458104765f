package usecase

import (
	"context"
	"errors"
	"strings"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

// カタログ閲覧（読み取りのみ）
type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

func (u *ProductUsecase) ListByCategory(ctx context.Context, category string) ([]model.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" || len(category) > 100 {
		return []model.Product{}, NewError(KindInvalidInput, "invalid category")
	}

	products, err := u.productRepo.ListByCategory(ctx, category)
	if err != nil {
		return []model.Product{}, wrapError(KindStorageFailure, "Error retrieving products data", err)
	}
	return products, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewError(KindInvalidInput, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewError(KindNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, wrapError(KindStorageFailure, "db error", err)
	}
	return p, nil
}

// 空のtermは全件
func (u *ProductUsecase) Search(ctx context.Context, term string) ([]model.Product, error) {
	if len(term) > 100 {
		return []model.Product{}, NewError(KindInvalidInput, "term too long")
	}

	products, err := u.productRepo.Search(ctx, term)
	if err != nil {
		return []model.Product{}, wrapError(KindStorageFailure, "db error", err)
	}
	return products, nil
}
