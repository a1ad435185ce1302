package auth

import (
	"context"
	"time"
)

// RevocationStore marks tokens revoked until their natural expiry. Entries are
// keyed by the raw token value and must disappear on their own once the TTL
// elapses, so no entry ever outlives the token it denies.
type RevocationStore interface {
	// Revoke inserts token with the given TTL. A TTL <= 0 is a no-op: an
	// already expired token needs no explicit revocation.
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	// IsRevoked reports whether token is present in the store.
	IsRevoked(ctx context.Context, token string) (bool, error)
}
