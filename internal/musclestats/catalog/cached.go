package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Toromb/gym-app-sub000/internal/cache"
	"github.com/Toromb/gym-app-sub000/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Source is the read side of the catalog used by the load engine.
type Source interface {
	AllMuscles(ctx context.Context) ([]Muscle, error)
	MappingsForExercise(ctx context.Context, exerciseID string) ([]Mapping, error)
}

var _ Source = (*CachedCatalog)(nil)

const (
	musclesCacheKey        = "catalog:muscles"
	mappingsCacheKeyPrefix = "catalog:mappings:"
	DefaultCacheTTLSeconds = 300
	DefaultCacheSizeBytes  = 8 * 1024 * 1024
)

// CachedCatalog keeps the reference data in front of a slower Source.
// Concurrent misses for the same key hit the source once.
type CachedCatalog struct {
	source     Source
	cache      cache.Cache
	ttlSeconds int
	flight     singleflight.Group
	metrics    *metrics.Manager
}

func NewCachedCatalog(source Source, c cache.Cache, ttlSeconds int, metricsManager *metrics.Manager) *CachedCatalog {
	return &CachedCatalog{
		source:     source,
		cache:      c,
		ttlSeconds: ttlSeconds,
		metrics:    metricsManager,
	}
}

func (c *CachedCatalog) AllMuscles(ctx context.Context) ([]Muscle, error) {
	var muscles []Muscle
	err := c.getOrLoad(ctx, musclesCacheKey, &muscles, func(ctx context.Context) (any, error) {
		return c.source.AllMuscles(ctx)
	})
	if err != nil {
		return nil, err
	}
	return muscles, nil
}

func (c *CachedCatalog) MappingsForExercise(ctx context.Context, exerciseID string) ([]Mapping, error) {
	var mappings []Mapping
	err := c.getOrLoad(ctx, mappingsCacheKeyPrefix+exerciseID, &mappings, func(ctx context.Context) (any, error) {
		return c.source.MappingsForExercise(ctx, exerciseID)
	})
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// Invalidate drops everything cached, e.g. after the catalog was edited.
func (c *CachedCatalog) Invalidate() {
	c.cache.Clear()
}

func (c *CachedCatalog) getOrLoad(ctx context.Context, key string, dst any, load func(context.Context) (any, error)) error {
	if raw, err := c.cache.Get([]byte(key)); err == nil {
		if err := json.Unmarshal(raw, dst); err == nil {
			c.countLookup("hit")
			return nil
		}
		log.Warnf("catalog cache: corrupted entry [%s], reloading", key)
	}
	c.countLookup("miss")

	raw, err, _ := c.flight.Do(key, func() (any, error) {
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encode catalog entry: %w", err)
		}
		if err := c.cache.Set([]byte(key), raw, c.ttlSeconds); err != nil {
			log.Warnf("catalog cache: set [%s]: %s", key, err)
		}
		return raw, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw.([]byte), dst); err != nil {
		return fmt.Errorf("decode catalog entry: %w", err)
	}
	return nil
}

func (c *CachedCatalog) countLookup(result string) {
	if c.metrics != nil {
		c.metrics.CounterCatalogCache.WithLabelValues(result).Inc()
	}
}
