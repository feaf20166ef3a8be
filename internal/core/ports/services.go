package ports

import (
	"context"
	"errors"
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
)

// PriceResolver attaches a price to a model identifier. It never fails.
type PriceResolver interface {
	Resolve(modelID string) domain.Price
}

// Scorer turns a completion into a quality score in [0, 1].
type Scorer interface {
	Score(task string, content string) float64
}

// ErrCacheMiss is returned by CacheService.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// CacheService defines the interface for a read cache in front of the snapshots.
type CacheService interface {
	// Get unmarshals the cached value into dest.
	Get(ctx context.Context, key string, dest interface{}) error
	// Set marshals and stores value with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error
}
