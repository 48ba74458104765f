package main

import (
	"context"
	"crypto/rand"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"bakery/internal/config"
	"bakery/internal/handler"
	"bakery/internal/infra/db"
	infraRepo "bakery/internal/infra/repository"
	"bakery/internal/lock"
	"bakery/internal/logging"
	"bakery/internal/metrics"
	"bakery/internal/server"
	"bakery/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	//.envは無くてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(os.Stdout, cfg.LogLevel)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	//同時コミットのロック
	locker, closeLocker, err := newLocker(cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(
		orderRepo, orderItemRepo, cartRepo, auditRepo,
		locker, &realClock{}, &uuidGenerator{}, rand.Reader,
		cfg.EmptyCartPolicy, m,
	)

	e := server.New(cfg.JWTSecret, server.Handlers{
		Product: handler.NewProductHandler(productUC),
		Cart:    handler.NewCartHandler(cartUC),
		Order:   handler.NewOrderHandler(orderUC),
	}, m)

	slog.Info("starting",
		"env", cfg.GoEnv,
		"empty_cart_policy", cfg.EmptyCartPolicy,
		"commit_lock", cfg.CommitLock,
	)
	return server.Start(e, cfg.Addr())
}

func newLocker(cfg config.Config) (lock.ActorLocker, func(), error) {
	switch cfg.CommitLock {
	case config.CommitLockMemory:
		return lock.NewMemory(), func() {}, nil
	case config.CommitLockRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return lock.NewRedis(client, cfg.CommitLockTTL), func() { _ = client.Close() }, nil
	default:
		//ロックなし（同時コミットは競合しうる）
		return lock.Noop{}, func() {}, nil
	}
}
