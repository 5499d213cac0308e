package ports

import (
	"context"
	"time"
)

// Cache defines a generic key-value capability with per-key expiry.
// Adapters may be backed by Redis or SQLite. A ttl of zero means the entry
// never expires at the backend; callers then judge freshness themselves.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
