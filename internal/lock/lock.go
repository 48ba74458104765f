// Package lock は同一ユーザーのコミットを直列化するためのロック。
// 取れなければ待たずにErrLockedを返す。
package lock

import (
	"context"
	"errors"
)

var ErrLocked = errors.New("commit already in progress")

// 解放関数は何度呼んでもよい
type UnlockFunc func()

type ActorLocker interface {
	TryLock(ctx context.Context, actorID int64) (UnlockFunc, error)
}

// ロックしない（同時コミットの競合はそのまま）
type Noop struct{}

func (Noop) TryLock(ctx context.Context, actorID int64) (UnlockFunc, error) {
	return func() {}, nil
}
