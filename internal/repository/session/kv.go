package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lightsoft-dev/light-archive/internal/db"
	"github.com/lightsoft-dev/light-archive/internal/domain"
)

// kvStore is the consumer interface for sessions (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// KV keeps sessions in the key-value store with native expiry.
type KV struct {
	store kvStore
}

// NewKV creates a key-value backed session store.
func NewKV(s kvStore) *KV {
	return &KV{store: s}
}

func sessionKey(token string) string {
	return domain.KeyPrefix + "session:" + token
}

// Put stores token with ttl.
func (k *KV) Put(ctx context.Context, token string, ttl time.Duration) error {
	if err := k.store.SetWithTTL(ctx, sessionKey(token), []byte("1"), ttl); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// Exists reports whether token is stored.
func (k *KV) Exists(ctx context.Context, token string) (bool, error) {
	_, err := k.store.Get(ctx, sessionKey(token))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get session: %w", err)
	}
	return true, nil
}

// Delete removes token.
func (k *KV) Delete(ctx context.Context, token string) error {
	if err := k.store.Del(ctx, sessionKey(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
