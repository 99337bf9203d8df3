// Package limiter throttles repeated sign-in failures per (email, client)
// pair.
package limiter

import (
	"context"
	"crypto/sha256"
	"time"
)

// Limiter controls sign-in attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a sign-in attempt may proceed and, if not, how
	// long until it may.
	Allow(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error)
	// Success clears the failure history.
	Success(ctx context.Context, email string, ipHash []byte) error
	// Failure records a failed attempt and reports whether it started a lockout.
	Failure(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error)
}

// HashIP returns a stable digest of a client address so raw addresses are
// never stored.
func HashIP(ip string) []byte {
	h := sha256.Sum256([]byte(ip))
	return h[:]
}

// Nop never blocks.
type Nop struct{}

func (Nop) Allow(context.Context, string, []byte) (bool, time.Duration, error) { return true, 0, nil }
func (Nop) Success(context.Context, string, []byte) error                        { return nil }
func (Nop) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}
