package auth

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Revoker remembers logged-out token ids until they would have expired.
// It uses Redis when a client is given and an in-process cache otherwise.
type Revoker struct {
	rdb   *redis.Client
	local *cache.Cache
	now   func() time.Time
}

func NewRevoker(rdb *redis.Client) *Revoker {
	return &Revoker{rdb: rdb, local: cache.New(time.Hour, 10*time.Minute), now: time.Now}
}

func revokedKey(jti string) string {
	return fmt.Sprintf("revoked_token:%s", jti)
}

// Revoke marks jti as revoked until expiresAt. Already-expired tokens are ignored.
func (r *Revoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if jti == "" || ttl <= 0 {
		return nil
	}
	if r.rdb == nil {
		r.local.Set(jti, true, ttl)
		return nil
	}
	return r.rdb.Set(ctx, revokedKey(jti), 1, ttl).Err()
}

// IsRevoked reports whether jti was revoked.
func (r *Revoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	if r.rdb == nil {
		_, found := r.local.Get(jti)
		return found, nil
	}
	n, err := r.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
