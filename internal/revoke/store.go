package revoke

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable indicates the revocation backend is unreachable.
var ErrUnavailable = errors.New("revocation store unavailable")

// minRetention keeps entries for tokens at the edge of expiry long enough to
// absorb clock skew between verifier instances.
const minRetention = time.Second

// Entry describes one revoked token.
type Entry struct {
	SubjectID string
	TokenKind string
	ExpiresAt time.Time
}

// Store persists revoked token identifiers in Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a revocation store with the given key prefix.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "arv"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(tokenID string) string {
	return s.prefix + ":" + tokenID
}

// Revoke inserts the jti with the token's natural expiry as retention.
// Revoking an already-revoked token is a no-op, not an error.
func (s *Store) Revoke(ctx context.Context, tokenID string, entry Entry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl < minRetention {
		ttl = minRetention
	}

	value := entry.TokenKind + "|" + entry.SubjectID
	if err := s.redis.Set(ctx, s.key(tokenID), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether the jti has a live revocation entry.
func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}
