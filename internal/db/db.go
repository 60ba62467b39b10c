package db

import (
	"context"
	"time"
)

// Store is the main key-value database facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type Store interface {
	Pinger
	JSONStore
	KVStore
	SortedSetStore
	SetStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	// JSONMGet returns one entry per key, nil for missing keys.
	JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// SortedSetStore provides sorted set operations used for ordered indexes and counters.
type SortedSetStore interface {
	ZAdd(ctx context.Context, key, member string, score float64) error
	// ZIncrBy only touches existing members; a missing one reports ErrKeyNotFound.
	ZIncrBy(ctx context.Context, key, member string, incr float64) (float64, error)
	ZRem(ctx context.Context, key string, members ...string) error
	// ZRevRange returns members from highest to lowest score, ranks start..stop inclusive.
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	// ZMScore returns one score per member; missing members report ok=false.
	ZMScore(ctx context.Context, key string, members []string) ([]Score, error)
	ZCard(ctx context.Context, key string) (int64, error)
}

// Score is a single ZMSCORE reply entry.
type Score struct {
	Value float64
	OK    bool
}

// SetStore provides unordered set operations used for secondary indexes.
type SetStore interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SUnion(ctx context.Context, keys ...string) ([]string, error)
}
