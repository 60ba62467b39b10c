package auth

import (
	"context"
	"time"
)

// SessionStore keeps issued admin session tokens until they expire.
type SessionStore interface {
	Put(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}
