package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"bakery/internal/config"
	"bakery/internal/domain/model"
	dbpkg "bakery/internal/infra/db"
	infraRepo "bakery/internal/infra/repository"
	"bakery/internal/lock"
	repo "bakery/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 1接続のインメモリSQLite
func newTestDB(t *testing.T) *gorm.DB {
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

func seedProduct(t *testing.T, db *gorm.DB, name string, price string) model.Product {
	t.Helper()
	p := model.Product{
		Name:      name,
		Category:  "bread",
		Price:     decimal.RequireFromString(price),
		Available: true,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedLine(t *testing.T, db *gorm.DB, actorID, productID, qty int64) model.CartLine {
	t.Helper()
	l := model.CartLine{ActorID: actorID, ProductID: productID, Quantity: qty}
	require.NoError(t, db.Create(&l).Error)
	return l
}

type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock() *stepClock {
	return &stepClock{
		now:  time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC),
		step: time.Hour,
	}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("attempt-%d", g.n)
}

// 毎回違うバイト列を返す乱数源
type counterReader struct {
	mu sync.Mutex
	n  byte
}

func (r *counterReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range p {
		r.n++
		p[i] = r.n
	}
	return len(p), nil
}

// 常に同じバイト列（確認コード衝突用）
type constReader struct{}

func (constReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0xab
	}
	return len(p), nil
}

type testStores struct {
	db         *gorm.DB
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartLineRepository
	products   repo.ProductRepository
	audits     repo.AuditLogRepository
}

func newTestStores(t *testing.T) testStores {
	db := newTestDB(t)
	return testStores{
		db:         db,
		orders:     infraRepo.NewOrderGormRepository(db),
		orderItems: infraRepo.NewOrderItemGormRepository(db),
		carts:      infraRepo.NewCartGormRepository(db),
		products:   infraRepo.NewProductGormRepository(db),
		audits:     infraRepo.NewAuditLogGormRepository(db),
	}
}

func (s testStores) orderUsecase(policy config.EmptyCartPolicy, locker lock.ActorLocker) *OrderUsecase {
	return NewOrderUsecase(s.orders, s.orderItems, s.carts, s.audits, locker, newStepClock(), &seqIDs{}, &counterReader{}, policy, nil)
}

func countRows(t *testing.T, db *gorm.DB, m interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Where(where, args...).Count(&n).Error)
	return n
}

// 確認用の直接クエリ（無ければゼロ値）
func findOrder(t *testing.T, db *gorm.DB, orderID int64) (model.Order, bool) {
	t.Helper()
	var orders []model.Order
	require.NoError(t, db.Where("id = ?", orderID).Limit(1).Find(&orders).Error)
	if len(orders) == 0 {
		return model.Order{}, false
	}
	return orders[0], true
}

func listOrderItems(t *testing.T, db *gorm.DB, orderID int64) []model.OrderItem {
	t.Helper()
	var items []model.OrderItem
	require.NoError(t, db.Where("order_id = ?", orderID).Order("id asc").Find(&items).Error)
	return items
}

func listAuditLogs(t *testing.T, db *gorm.DB, where string, args ...interface{}) []model.AuditLog {
	t.Helper()
	var logs []model.AuditLog
	require.NoError(t, db.Where(where, args...).Order("id asc").Find(&logs).Error)
	return logs
}

// --- 失敗を差し込むラッパー ---

type failingOrders struct {
	repo.OrderRepository
	updateTotalErr  error
	deleteHeaderErr error
	updateStatusErr error
}

func (f *failingOrders) UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal, now time.Time) error {
	if f.updateTotalErr != nil {
		return f.updateTotalErr
	}
	return f.OrderRepository.UpdateTotal(ctx, orderID, total, now)
}

func (f *failingOrders) DeleteHeader(ctx context.Context, orderID int64) error {
	if f.deleteHeaderErr != nil {
		return f.deleteHeaderErr
	}
	return f.OrderRepository.DeleteHeader(ctx, orderID)
}

func (f *failingOrders) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, now time.Time) error {
	if f.updateStatusErr != nil {
		return f.updateStatusErr
	}
	return f.OrderRepository.UpdateStatus(ctx, orderID, status, now)
}

// failAt回目のInsertで失敗する
type failingItems struct {
	repo.OrderItemRepository
	failAt int
	calls  int
	err    error
}

func (f *failingItems) Insert(ctx context.Context, item model.OrderItem) error {
	f.calls++
	if f.calls == f.failAt {
		return f.err
	}
	return f.OrderItemRepository.Insert(ctx, item)
}

type failingCarts struct {
	repo.CartLineRepository
	listErr        error
	listFailAt     int
	listCalls      int
	deleteActorErr error
}

func (f *failingCarts) ListByActor(ctx context.Context, actorID int64) ([]model.CartLineView, error) {
	f.listCalls++
	if f.listErr != nil && (f.listFailAt == 0 || f.listCalls == f.listFailAt) {
		return nil, f.listErr
	}
	return f.CartLineRepository.ListByActor(ctx, actorID)
}

func (f *failingCarts) DeleteByActor(ctx context.Context, actorID int64) error {
	if f.deleteActorErr != nil {
		return f.deleteActorErr
	}
	return f.CartLineRepository.DeleteByActor(ctx, actorID)
}
