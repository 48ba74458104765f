package repository_test

import (
	"context"
	"testing"
	"time"

	"bakery/internal/domain/model"
	dbpkg "bakery/internal/infra/db"
	infraRepo "bakery/internal/infra/repository"
	repo "bakery/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, dbpkg.Migrate(db))
	return db
}

func createProduct(t *testing.T, db *gorm.DB, name, category, price string) model.Product {
	t.Helper()
	p := model.Product{Name: name, Category: category, Price: decimal.RequireFromString(price), Available: true}
	require.NoError(t, db.Create(&p).Error)
	return p
}

// =====================
// Product
// =====================

func TestProductGorm_FindAndList(t *testing.T) {
	db := newDB(t)
	r := infraRepo.NewProductGormRepository(db)
	ctx := context.Background()

	rye := createProduct(t, db, "Rye", "bread", "4.00")
	createProduct(t, db, "Baguette", "bread", "5.00")
	createProduct(t, db, "Cheesecake", "cake", "6.50")

	p, err := r.FindByID(ctx, rye.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rye", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("4.00")))

	_, err = r.FindByID(ctx, 404)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	breads, err := r.ListByCategory(ctx, "bread")
	require.NoError(t, err)
	require.Len(t, breads, 2)
	assert.Equal(t, "Baguette", breads[0].Name)

	none, err := r.ListByCategory(ctx, "pastry")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProductGorm_Search(t *testing.T) {
	db := newDB(t)
	r := infraRepo.NewProductGormRepository(db)
	ctx := context.Background()

	createProduct(t, db, "Chocolate Cake", "cake", "7.00")
	createProduct(t, db, "Rye", "bread", "4.00")

	got, err := r.Search(ctx, "CHOC")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Chocolate Cake", got[0].Name)

	got, err = r.Search(ctx, "bread")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rye", got[0].Name)

	all, err := r.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =====================
// Cart
// =====================

func TestCartGorm_ListJoinsLiveCatalog(t *testing.T) {
	db := newDB(t)
	r := infraRepo.NewCartGormRepository(db)
	ctx := context.Background()

	a := createProduct(t, db, "Croissant", "pastry", "3.50")
	b := createProduct(t, db, "Baguette", "bread", "5.00")

	l1, err := r.Add(ctx, model.CartLine{ActorID: 1, ProductID: b.ID, Quantity: 1})
	require.NoError(t, err)
	l2, err := r.Add(ctx, model.CartLine{ActorID: 1, ProductID: a.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = r.Add(ctx, model.CartLine{ActorID: 2, ProductID: a.ID, Quantity: 9})
	require.NoError(t, err)

	lines, err := r.ListByActor(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	// 追加順
	assert.Equal(t, l1.ID, lines[0].ID)
	assert.Equal(t, "Baguette", lines[0].Name)
	assert.Equal(t, l2.ID, lines[1].ID)
	assert.True(t, lines[1].UnitPrice.Equal(decimal.RequireFromString("3.50")))

	empty, err := r.ListByActor(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCartGorm_AddRejectsNonPositiveQuantity(t *testing.T) {
	db := newDB(t)
	r := infraRepo.NewCartGormRepository(db)

	_, err := r.Add(context.Background(), model.CartLine{ActorID: 1, ProductID: 1, Quantity: 0})
	assert.Error(t, err)
}

func TestCartGorm_UpdateDeleteOwnership(t *testing.T) {
	db := newDB(t)
	r := infraRepo.NewCartGormRepository(db)
	ctx := context.Background()

	p := createProduct(t, db, "Scone", "pastry", "2.00")
	line, err := r.Add(ctx, model.CartLine{ActorID: 1, ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	owned, err := r.IsOwnedByActor(ctx, line.ID, 1)
	require.NoError(t, err)
	assert.True(t, owned)
	owned, err = r.IsOwnedByActor(ctx, line.ID, 2)
	require.NoError(t, err)
	assert.False(t, owned)

	require.NoError(t, r.UpdateQuantity(ctx, line.ID, 4))
	assert.ErrorIs(t, r.UpdateQuantity(ctx, 999, 4), repo.ErrNotFound)

	require.NoError(t, r.DeleteByID(ctx, line.ID))
	assert.ErrorIs(t, r.DeleteByID(ctx, line.ID), repo.ErrNotFound)

	// 空でもエラーにならない
	require.NoError(t, r.DeleteByActor(ctx, 1))
}

// =====================
// Order
// =====================

func TestOrderGorm_Lifecycle(t *testing.T) {
	db := newDB(t)
	orders := infraRepo.NewOrderGormRepository(db)
	items := infraRepo.NewOrderItemGormRepository(db)
	ctx := context.Background()

	p := createProduct(t, db, "Rye", "bread", "4.00")
	now := time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)

	id, err := orders.CreateHeader(ctx, model.Order{
		ActorID: 1, Status: model.OrderStatusPending, TotalPrice: decimal.Zero,
		ConfirmationCode: "0a1b2c3d", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	// 確認コードは一意
	_, err = orders.CreateHeader(ctx, model.Order{
		ActorID: 2, Status: model.OrderStatusPending, ConfirmationCode: "0a1b2c3d", CreatedAt: now, UpdatedAt: now,
	})
	assert.Error(t, err)

	require.NoError(t, items.Insert(ctx, model.OrderItem{OrderID: id, ProductID: p.ID, Quantity: 3, UnitPriceAtPurchase: p.Price}))

	finalizedAt := now.Add(90 * time.Second)
	require.NoError(t, orders.UpdateTotal(ctx, id, decimal.RequireFromString("12.00"), finalizedAt))

	var o model.Order
	require.NoError(t, db.First(&o, id).Error)
	assert.Equal(t, model.OrderStatusCompleted, o.Status)
	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("12.00")))
	// 渡した時刻がそのまま入る
	assert.True(t, o.UpdatedAt.Equal(finalizedAt), "updated_at=%s", o.UpdatedAt)

	failedAt := finalizedAt.Add(time.Minute)
	require.NoError(t, orders.UpdateStatus(ctx, id, model.OrderStatusFailed, failedAt))
	require.NoError(t, db.First(&o, id).Error)
	assert.Equal(t, model.OrderStatusFailed, o.Status)
	assert.True(t, o.UpdatedAt.Equal(failedAt), "updated_at=%s", o.UpdatedAt)

	var n int64
	require.NoError(t, db.Model(&model.OrderItem{}).Where("order_id = ?", id).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	require.NoError(t, items.DeleteByOrderID(ctx, id))
	require.NoError(t, orders.DeleteHeader(ctx, id))
	require.NoError(t, db.Model(&model.Order{}).Where("id = ?", id).Count(&n).Error)
	assert.Zero(t, n)

	// 二重の補償でも失敗しない
	require.NoError(t, items.DeleteByOrderID(ctx, id))
	require.NoError(t, orders.DeleteHeader(ctx, id))

	assert.ErrorIs(t, orders.UpdateTotal(ctx, id, decimal.Zero, now), repo.ErrNotFound)
	assert.ErrorIs(t, orders.UpdateStatus(ctx, id, model.OrderStatusFailed, now), repo.ErrNotFound)
}

func TestOrderGorm_ListByActor(t *testing.T) {
	db := newDB(t)
	orders := infraRepo.NewOrderGormRepository(db)
	items := infraRepo.NewOrderItemGormRepository(db)
	ctx := context.Background()

	a := createProduct(t, db, "Croissant", "pastry", "3.50")
	b := createProduct(t, db, "Baguette", "bread", "5.00")
	base := time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)

	older, err := orders.CreateHeader(ctx, model.Order{ActorID: 1, Status: model.OrderStatusCompleted, ConfirmationCode: "00000001", CreatedAt: base, UpdatedAt: base})
	require.NoError(t, err)
	newer, err := orders.CreateHeader(ctx, model.Order{ActorID: 1, Status: model.OrderStatusCompleted, ConfirmationCode: "00000002", CreatedAt: base.Add(time.Hour), UpdatedAt: base})
	require.NoError(t, err)
	_, err = orders.CreateHeader(ctx, model.Order{ActorID: 2, Status: model.OrderStatusCompleted, ConfirmationCode: "00000003", CreatedAt: base, UpdatedAt: base})
	require.NoError(t, err)

	// コミット途中と補償失敗の注文は履歴に出ない
	pending, err := orders.CreateHeader(ctx, model.Order{ActorID: 1, Status: model.OrderStatusPending, ConfirmationCode: "00000004", CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base})
	require.NoError(t, err)
	require.NoError(t, items.Insert(ctx, model.OrderItem{OrderID: pending, ProductID: a.ID, Quantity: 1, UnitPriceAtPurchase: a.Price}))
	_, err = orders.CreateHeader(ctx, model.Order{ActorID: 1, Status: model.OrderStatusFailed, ConfirmationCode: "00000005", CreatedAt: base.Add(3 * time.Hour), UpdatedAt: base})
	require.NoError(t, err)

	require.NoError(t, items.Insert(ctx, model.OrderItem{OrderID: older, ProductID: a.ID, Quantity: 2, UnitPriceAtPurchase: a.Price}))
	require.NoError(t, items.Insert(ctx, model.OrderItem{OrderID: older, ProductID: b.ID, Quantity: 1, UnitPriceAtPurchase: b.Price}))

	// 商品が消えても明細は残る
	require.NoError(t, db.Delete(&model.Product{}, b.ID).Error)

	hist, err := orders.ListByActor(ctx, 1)
	require.NoError(t, err)
	require.Len(t, hist, 2)

	assert.Equal(t, newer, hist[0].Order.ID)
	assert.NotNil(t, hist[0].Items)
	assert.Empty(t, hist[0].Items)

	assert.Equal(t, older, hist[1].Order.ID)
	require.Len(t, hist[1].Items, 2)
	assert.Equal(t, "Croissant", hist[1].Items[0].Name)
	assert.Equal(t, "", hist[1].Items[1].Name)
	assert.True(t, hist[1].Items[1].UnitPriceAtPurchase.Equal(decimal.RequireFromString("5.00")))

	none, err := orders.ListByActor(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// =====================
// AuditLog
// =====================

func TestAuditLogGorm_Create(t *testing.T) {
	db := newDB(t)
	r := infraRepo.NewAuditLogGormRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)

	require.NoError(t, r.Create(ctx, model.AuditLog{
		ActorID: 1, Action: model.AuditActionOrderCompensated, OrderID: 11,
		AttemptID: "a1", DetailJSON: `{"cause":"disk full"}`, CreatedAt: now,
	}))

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.NotZero(t, logs[0].ID)
	assert.Equal(t, model.AuditActionOrderCompensated, logs[0].Action)
	assert.Equal(t, int64(11), logs[0].OrderID)
	assert.Equal(t, "a1", logs[0].AttemptID)
	assert.JSONEq(t, `{"cause":"disk full"}`, logs[0].DetailJSON)
}
