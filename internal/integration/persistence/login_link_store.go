package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kakeibo/backend/internal/application/adapter"
)

const loginLinkKeyPrefix = "login_link:"

// loginLinkStore implements adapter.LoginLinkStore on Redis. Expiry is
// delegated to key TTLs.
type loginLinkStore struct {
	client *redis.Client
}

// NewLoginLinkStore creates a new Redis-backed login link store.
func NewLoginLinkStore(client *redis.Client) adapter.LoginLinkStore {
	return &loginLinkStore{client: client}
}

// Save stores token for email with the given time to live.
func (s *loginLinkStore) Save(ctx context.Context, token, email string, ttl time.Duration) error {
	return s.client.Set(ctx, loginLinkKeyPrefix+token, email, ttl).Err()
}

// Consume returns the email bound to token and deletes it in one step,
// so concurrent redemptions of the same link cannot both succeed.
func (s *loginLinkStore) Consume(ctx context.Context, token string) (string, bool, error) {
	email, err := s.client.GetDel(ctx, loginLinkKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return email, true, nil
}
