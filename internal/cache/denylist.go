package cache

import (
	"context"
	"time"

	"github.com/thomasjvidal/teste-backend-pleno/pkg/auth"
)

const denylistNamespace = "jwt_denylist"

// Denylist keeps revoked token ids in Redis until the token would have expired.
type Denylist struct {
	cache *Cache
}

// NewDenylist creates a Redis-backed auth.Denylist.
func NewDenylist(c *Cache) *Denylist {
	return &Denylist{cache: c}
}

var _ auth.Denylist = (*Denylist)(nil)

func (d *Denylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.cache.Set(ctx, denylistNamespace, tokenID, "1", ttl)
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return d.cache.Exists(ctx, denylistNamespace, tokenID)
}
