package cache

import (
	"context"
	"time"
)

// Cache is the read-through artifact store consulted before a
// resolution and populated after delivery.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
