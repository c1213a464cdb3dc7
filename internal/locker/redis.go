package locker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var _ Locker = (*RedisLocker)(nil)

const (
	defaultKeyPrefix     = "musclestats:lock:"
	defaultRetryInterval = 50 * time.Millisecond
	releaseTimeout       = 2 * time.Second
)

// deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX lock with token checked release. The TTL bounds
// how long a crashed holder can block others.
type RedisLocker struct {
	rdb           *redis.Client
	ttl           time.Duration
	retryInterval time.Duration
	keyPrefix     string
	newToken      func() string
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		rdb:           rdb,
		ttl:           ttl,
		retryInterval: defaultRetryInterval,
		keyPrefix:     defaultKeyPrefix,
		newToken:      uuid.NewString,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.keyPrefix + key
	token := l.newToken()

	for {
		acquired, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrLockNotAcquired, key, ctx.Err())
			}
			return nil, fmt.Errorf("redis set nx [%s]: %w", redisKey, err)
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLockNotAcquired, key, ctx.Err())
		case <-time.After(l.retryInterval):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.rdb, []string{redisKey}, token).Err(); err != nil {
			log.Errorf("release lock [%s]: %s", redisKey, err)
		}
	}, nil
}
