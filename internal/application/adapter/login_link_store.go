// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"
)

// LoginLinkStore keeps one-time email sign-in tokens until they are used or expire.
type LoginLinkStore interface {
	// Save stores token for email with the given time to live.
	Save(ctx context.Context, token, email string, ttl time.Duration) error

	// Consume returns the email bound to token and deletes it atomically.
	// It returns found=false when the token is unknown, used, or expired.
	Consume(ctx context.Context, token string) (email string, found bool, err error)
}
