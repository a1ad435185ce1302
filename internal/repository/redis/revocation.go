package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NordCoder/Inkwell/internal/auth"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

var _ auth.RevocationStore = (*RevocationStore)(nil)

// RevocationStore keeps revoked tokens in Redis keyed by the raw token,
// expiring each entry when the token itself would expire.
type RevocationStore struct {
	client *redis.Client
}

func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

func (s *RevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.SetEx(ctx, blacklistPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	if err := s.client.Get(ctx, blacklistPrefix+token).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("check revoked: %w", err)
	}
	return true, nil
}
