// Package locker serializes work per key, in process or across instances through redis.
package locker

import (
	"context"
	"errors"
)

var ErrLockNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive per key locks. Lock blocks until the lock is
// held or ctx is done, in which case the error wraps ErrLockNotAcquired.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
