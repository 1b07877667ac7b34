package notify

import (
	"becoming_backend/internal/model"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	slotClaimTTL       = 26 * time.Hour
	memorySlotCapacity = 100000
)

// SlotGuard 保证同一用户的同一时段只处理一次
type SlotGuard interface {
	Claim(ctx context.Context, userID uint, slot model.Slot) (bool, error)
}

func slotKey(userID uint, slot model.Slot) string {
	return fmt.Sprintf("notify:slot:%d:%s:%s", userID, slot.Date, slot.Time)
}

// NewSlotGuard rdb 为 nil 时使用进程内实现
func NewSlotGuard(rdb *redis.Client) (SlotGuard, error) {
	if rdb != nil {
		return &RedisSlotGuard{rdb: rdb}, nil
	}
	return NewMemorySlotGuard(memorySlotCapacity)
}

// RedisSlotGuard 多实例部署时共享的时段占用
type RedisSlotGuard struct {
	rdb *redis.Client
}

func (g *RedisSlotGuard) Claim(ctx context.Context, userID uint, slot model.Slot) (bool, error) {
	return g.rdb.SetNX(ctx, slotKey(userID, slot), time.Now().Unix(), slotClaimTTL).Result()
}

// MemorySlotGuard 单实例部署使用的 LRU 占用表
type MemorySlotGuard struct {
	mu    sync.Mutex
	cache *lru.Cache[string, time.Time]
	now   func() time.Time
}

func NewMemorySlotGuard(size int) (*MemorySlotGuard, error) {
	cache, err := lru.New[string, time.Time](size)
	if err != nil {
		return nil, fmt.Errorf("slot guard init: %w", err)
	}
	return &MemorySlotGuard{cache: cache, now: time.Now}, nil
}

func (g *MemorySlotGuard) Claim(_ context.Context, userID uint, slot model.Slot) (bool, error) {
	key := slotKey(userID, slot)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if ts, ok := g.cache.Get(key); ok {
		if now.Sub(ts) <= slotClaimTTL {
			return false, nil
		}
		g.cache.Remove(key)
	}
	g.cache.Add(key, now)
	return true, nil
}
