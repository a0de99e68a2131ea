package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// ProbeKeyPrefix namespaces the keys written by health probes.
const ProbeKeyPrefix = "healthprobe:probe"

// Sentinel errors for cache operations.
var (
	ErrNilCache   = errors.New("cache: cache is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
	ErrMismatch   = errors.New("cache: read back a different value")
)

// Cache is the store interface the cache probes exercise.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get should never error; it returns (nil, false) on miss.
type Cache interface {
	// Get retrieves a cached value. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL. TTL=0 means no caching.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cached value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// ProbeKey returns a key unique to one probe invocation, so concurrent
// health requests never read each other's writes.
func ProbeKey() string {
	return ProbeKeyPrefix + ":" + uuid.NewString()
}

// RoundTrip writes a unique key, reads it back and deletes it.
// A store error is returned as is; a missing or different value read
// back is reported as ErrMismatch.
func RoundTrip(ctx context.Context, c Cache, ttl time.Duration) error {
	if c == nil {
		return ErrNilCache
	}

	key := ProbeKey()
	value := []byte(uuid.NewString())

	if err := c.Set(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	// Best effort; the key expires with ttl anyway.
	defer func() { _ = c.Delete(context.WithoutCancel(ctx), key) }()

	got, ok := c.Get(ctx, key)
	if !ok || !bytes.Equal(got, value) {
		return ErrMismatch
	}
	return nil
}
