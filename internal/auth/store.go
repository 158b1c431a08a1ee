package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iamprecieee/distributed-notification-system/internal/cache"
)

// Store wraps two Redis key shapes: refresh_token:{user_id}:{jti} and
// blacklist:{jti}.
type Store struct {
	cache *cache.Client
}

func NewStore(c *cache.Client) *Store {
	return &Store{cache: c}
}

func refreshKey(userID, jti string) string { return fmt.Sprintf("refresh_token:%s:%s", userID, jti) }
func blacklistKey(jti string) string       { return fmt.Sprintf("blacklist:%s", jti) }

func (s *Store) PersistRefreshToken(ctx context.Context, userID, jti, token string, ttl time.Duration) error {
	return s.cache.Set(ctx, refreshKey(userID, jti), []byte(token), ttl)
}

func (s *Store) RevokeRefreshToken(ctx context.Context, userID, jti string) error {
	return s.cache.Delete(ctx, refreshKey(userID, jti))
}

// RevokeAllRefreshTokens wipes every refresh_token:{userID}:* entry,
// used by logout.
func (s *Store) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	pattern := fmt.Sprintf("refresh_token:%s:*", userID)
	keys, err := s.cache.Keys(ctx, pattern)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.cache.Delete(ctx, keys...)
}

func (s *Store) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	return s.cache.Set(ctx, blacklistKey(jti), []byte("1"), ttl)
}

func (s *Store) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return s.cache.Exists(ctx, blacklistKey(jti))
}

// splitRefreshToken unpacks the opaque "{jti}.{secret}" token handed to
// clients. The jti is needed to look the token back up without already
// knowing which user it belongs to.
func splitRefreshToken(raw string) (jti, secret string, ok bool) {
	parts := strings.SplitN(raw, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// extractUserID pulls {user_id} out of a refresh_token:{user_id}:{jti}
// key.
func extractUserID(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}
