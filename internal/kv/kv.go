// Package kv provides the expiring key-value store used for refresh-token
// sessions.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidTTL is returned when an entry would be stored without expiry.
var ErrInvalidTTL = errors.New("kv: ttl must be positive")

// Store is an expiring key-value store.
type Store interface {
	// SetWithTTL stores value under key, replacing any previous value.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	// Get loads the value under key; found is false if the key is absent or expired.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Delete removes key and returns the number of removed entries (0 or 1).
	Delete(ctx context.Context, key string) (int64, error)
	// DeleteIfValue removes key only while it still holds value, atomically.
	DeleteIfValue(ctx context.Context, key, value string) (int64, error)
}
