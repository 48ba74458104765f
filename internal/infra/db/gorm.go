package db

import (
	"fmt"

	"bakery/internal/config"
	"bakery/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		// SQLログはdevのみ
		Logger: logger.Default.LogMode(logger.Silent),
		// 一意制約違反を gorm.ErrDuplicatedKey に揃える
		TranslateError: true,
	}
	if cfg.GoEnv == "dev" {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}

	// DATABASE_URL があれば最優先で使う
	if cfg.DatabaseURL != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gcfg)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)

	return gorm.Open(postgres.Open(dsn), gcfg)
}

// Migrate はこのサービスが使うテーブルを作成する。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Product{},
		&model.CartLine{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	)
}
