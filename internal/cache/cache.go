package cache

import (
	"errors"

	"github.com/coocood/freecache"
)

var ErrNotFound = freecache.ErrNotFound

// Cache is a byte oriented cache with per entry expiry.
type Cache interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte, expireSeconds int) error
	Del(key []byte) bool
	Clear()
}

var _ Cache = (*FreeCache)(nil)

type FreeCache struct {
	mainCache *freecache.Cache
}

// NewFreeCache allocates a cache of sizeBytes. freecache enforces a 512KB minimum.
func NewFreeCache(sizeBytes int) *FreeCache {
	return &FreeCache{
		mainCache: freecache.NewCache(sizeBytes),
	}
}

func (c *FreeCache) Get(key []byte) ([]byte, error) {
	return c.mainCache.Get(key)
}

func (c *FreeCache) Set(key, value []byte, expireSeconds int) error {
	return c.mainCache.Set(key, value, expireSeconds)
}

func (c *FreeCache) Del(key []byte) bool {
	return c.mainCache.Del(key)
}

func (c *FreeCache) Clear() {
	c.mainCache.Clear()
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
