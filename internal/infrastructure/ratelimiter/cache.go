package ratelimiter

import (
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// BucketCache stores per-source token bucket state with expiry.
type BucketCache interface {
	Get(key string) (BucketState, error)
	Set(key string, state BucketState, expiration time.Duration) error
	Close() error
}

type BucketState struct {
	Tokens   int
	LastFill int64 // Unix milliseconds
}
