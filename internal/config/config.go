package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// 空カートのコミットを許すか
type EmptyCartPolicy string

const (
	EmptyCartAllow  EmptyCartPolicy = "allow"
	EmptyCartReject EmptyCartPolicy = "reject"
)

// 同一ユーザーの同時コミットをどう扱うか
type CommitLockMode string

const (
	CommitLockNone   CommitLockMode = "none"
	CommitLockMemory CommitLockMode = "memory"
	CommitLockRedis  CommitLockMode = "redis"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret string // JWT署名シークレット（検証のみ）

	GoEnv    string // dev/prod
	LogLevel string // debug/info/warn/error

	EmptyCartPolicy EmptyCartPolicy
	CommitLock      CommitLockMode
	CommitLockTTL   time.Duration // redisロックの期限
	RedisAddr       string
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}

	lockTTL := 30 * time.Second
	if v := os.Getenv("COMMIT_LOCK_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("COMMIT_LOCK_TTL must be duration: %w", err)
		}
		lockTTL = d
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getenv("POSTGRES_DB", "bakery"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: strings.ToLower(getenv("LOG_LEVEL", "info")),

		EmptyCartPolicy: EmptyCartPolicy(strings.ToLower(getenv("EMPTY_CART_POLICY", string(EmptyCartAllow)))),
		CommitLock:      CommitLockMode(strings.ToLower(getenv("COMMIT_LOCK", string(CommitLockNone)))),
		CommitLockTTL:   lockTTL,
		RedisAddr:       os.Getenv("REDIS_ADDR"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" && cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("DATABASE_URL or POSTGRES_PASSWORD is required")
	}

	switch cfg.EmptyCartPolicy {
	case EmptyCartAllow, EmptyCartReject:
	default:
		return Config{}, fmt.Errorf("EMPTY_CART_POLICY must be allow or reject: %q", cfg.EmptyCartPolicy)
	}

	switch cfg.CommitLock {
	case CommitLockNone, CommitLockMemory:
	case CommitLockRedis:
		if cfg.RedisAddr == "" {
			return Config{}, fmt.Errorf("REDIS_ADDR is required when COMMIT_LOCK=redis")
		}
	default:
		return Config{}, fmt.Errorf("COMMIT_LOCK must be none, memory or redis: %q", cfg.CommitLock)
	}
	if cfg.CommitLockTTL <= 0 {
		return Config{}, fmt.Errorf("COMMIT_LOCK_TTL must be positive")
	}

	return cfg, nil
}

// ":8080" 形式のアドレス
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
