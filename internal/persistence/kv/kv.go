// Package kv is the thin contract the repositories hold against the shared
// key-value store. Only the primitives the room and message managers need
// are exposed; everything is a remote call that may fail, and failures are
// surfaced to the caller untouched.
package kv

import (
	"context"
	"time"
)

type Store interface {
	// HGetAll returns all fields of a hash. A missing key yields an empty
	// map, not an error.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HSet merges the given fields into a hash, creating it if absent.
	HSet(ctx context.Context, key string, fields map[string]any) error

	// RPush appends a value to the tail of a list.
	RPush(ctx context.Context, key string, value string) error

	// LRange returns the whole list in insertion order.
	LRange(ctx context.Context, key string) ([]string, error)

	// SetNX atomically sets a key with expiry only if it does not exist.
	// This is the distributed lock primitive.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// TTL reports the remaining lifetime of a key. Missing keys and keys
	// without expiry come back negative, as the store reports them.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Expire sets the remaining lifetime of a key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Del removes keys. Deleting a missing key is a no-op.
	Del(ctx context.Context, keys ...string) error
}
