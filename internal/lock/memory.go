package lock

import (
	"context"
	"sync"
)

// プロセス内だけで有効なロック
type Memory struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

func NewMemory() *Memory {
	return &Memory{held: make(map[int64]struct{})}
}

func (m *Memory) TryLock(ctx context.Context, actorID int64) (UnlockFunc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[actorID]; ok {
		return nil, ErrLocked
	}
	m.held[actorID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, actorID)
			m.mu.Unlock()
		})
	}, nil
}
