package lock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 自分のトークンのときだけ消す
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// 複数インスタンス間で有効なロック
// TTLを過ぎると自動で外れる（プロセスが落ちた場合の保険）。
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) TryLock(ctx context.Context, actorID int64) (UnlockFunc, error) {
	key := lockKey(actorID)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx failed: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := releaseScript.Run(context.Background(), r.client, []string{key}, token).Err(); err != nil {
				slog.Warn("commit lock release failed", "actor_id", actorID, "error", err)
			}
		})
	}, nil
}

func lockKey(actorID int64) string {
	return fmt.Sprintf("order:commit-lock:%d", actorID)
}
