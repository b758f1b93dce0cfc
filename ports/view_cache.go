package ports

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by ViewCache.Get when the key is absent or expired
var ErrCacheMiss = errors.New("view cache miss")

// ViewCache memoizes encoded dashboard views keyed by dataset version, view
// name and selection. Implementations must be safe for concurrent use.
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Purge drops every entry, typically after the dataset is reloaded
	Purge(ctx context.Context) error
}
