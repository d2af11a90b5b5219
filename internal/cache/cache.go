// Package cache stores lookup results keyed by normalized query with
// outcome-dependent TTLs.
package cache

import (
	"context"
	"time"

	"github.com/commjoen/whoisintel/pkg/models"
)

// Store is the result cache consumed by the orchestrator. A miss returns
// (nil, nil); errors are reserved for backend failures.
type Store interface {
	Get(ctx context.Context, key string) (*models.LookupResult, error)
	Set(ctx context.Context, key string, result *models.LookupResult, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (models.CacheStats, error)
}
