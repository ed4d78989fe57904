package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisLockTries      = 64
	redisLockRetryDelay = 50 * time.Millisecond
)

// 複数プロセスで共有するロック（redsync）
type RedisLocker struct {
	rs     *redsync.Redsync
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		ttl:    ttl,
		logger: logger,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, keys []string) (func(), error) {
	keys = normalize(keys)
	held := make([]*redsync.Mutex, 0, len(keys))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			//呼び出し元のctxが切れていても解放はする
			if ok, err := held[i].UnlockContext(context.Background()); !ok || err != nil {
				l.logger.Warn("failed to release good lock",
					zap.String("lock_key", held[i].Name()),
					zap.Bool("unlock_ok", ok),
					zap.Error(err),
				)
			}
		}
	}

	for _, k := range keys {
		m := l.rs.NewMutex(
			keyPrefix+k,
			redsync.WithExpiry(l.ttl),
			redsync.WithTries(redisLockTries),
			redsync.WithRetryDelay(redisLockRetryDelay),
		)
		if err := m.LockContext(ctx); err != nil {
			release()
			return nil, fmt.Errorf("acquire good lock %s: %w", k, err)
		}
		held = append(held, m)
	}

	return release, nil
}
