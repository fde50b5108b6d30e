package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStoreHashOps(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	if err := store.HSet(ctx, "h", map[string]any{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("HSet: %v", err)
	}

	fields, err := store.HGetAll(ctx, "h")
	if err != nil {
		t.Fatalf("HGetAll: %v", err)
	}
	if fields["a"] != "1" || fields["b"] != "2" {
		t.Fatalf("HGetAll = %v", fields)
	}

	// A missing key reads as an empty map, not an error.
	fields, err = store.HGetAll(ctx, "missing")
	if err != nil {
		t.Fatalf("HGetAll(missing): %v", err)
	}
	if len(fields) != 0 {
		t.Fatalf("HGetAll(missing) = %v; want empty", fields)
	}
}

func TestRedisStoreListOps(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	for _, v := range []string{"one", "two", "three"} {
		if err := store.RPush(ctx, "l", v); err != nil {
			t.Fatalf("RPush(%q): %v", v, err)
		}
	}

	values, err := store.LRange(ctx, "l")
	if err != nil {
		t.Fatalf("LRange: %v", err)
	}
	if len(values) != 3 || values[0] != "one" || values[2] != "three" {
		t.Fatalf("LRange = %v", values)
	}

	values, err = store.LRange(ctx, "missing")
	if err != nil {
		t.Fatalf("LRange(missing): %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("LRange(missing) = %v; want empty", values)
	}
}

func TestRedisStoreSetNX(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	acquired, err := store.SetNX(ctx, "lock", "1", time.Second)
	if err != nil {
		t.Fatalf("SetNX: %v", err)
	}
	if !acquired {
		t.Fatalf("first SetNX lost")
	}

	acquired, err = store.SetNX(ctx, "lock", "1", time.Second)
	if err != nil {
		t.Fatalf("second SetNX: %v", err)
	}
	if acquired {
		t.Fatalf("second SetNX won against a held lock")
	}

	// The lock frees itself once its TTL lapses.
	mr.FastForward(2 * time.Second)
	acquired, err = store.SetNX(ctx, "lock", "1", time.Second)
	if err != nil {
		t.Fatalf("third SetNX: %v", err)
	}
	if !acquired {
		t.Fatalf("SetNX lost after lock expiry")
	}
}

func TestRedisStoreExpiryOps(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	if err := store.HSet(ctx, "k", map[string]any{"a": "1"}); err != nil {
		t.Fatalf("HSet: %v", err)
	}
	if err := store.Expire(ctx, "k", time.Minute); err != nil {
		t.Fatalf("Expire: %v", err)
	}

	ttl, err := store.TTL(ctx, "k")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("ttl = %v; want within (0, 1m]", ttl)
	}

	// Missing keys report a negative duration straight from the store.
	ttl, err = store.TTL(ctx, "missing")
	if err != nil {
		t.Fatalf("TTL(missing): %v", err)
	}
	if ttl >= 0 {
		t.Fatalf("TTL(missing) = %v; want negative", ttl)
	}

	if err := store.Del(ctx, "k", "also-missing"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if mr.Exists("k") {
		t.Fatalf("key survived Del")
	}
}
