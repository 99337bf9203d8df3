package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of a pgx pool the limiter needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG keeps failure counters in the auth_limiter table. Failures older than
// window restart the count; reaching maxFails blocks the pair for blockFor.
type PG struct {
	db       Querier
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(db Querier, window time.Duration, maxFails int, blockFor time.Duration) *PG {
	return &PG{db: db, window: window, maxFails: maxFails, blockFor: blockFor, now: time.Now}
}

// Allow reports whether the pair is currently unblocked.
func (l *PG) Allow(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM auth_limiter WHERE email=$1 AND ip_hash=$2`
	var blockedUntil time.Time
	err := l.db.QueryRow(ctx, q, email, ipHash).Scan(&blockedUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	if now := l.now(); blockedUntil.After(now) {
		return false, blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success resets the pair's counter and block.
func (l *PG) Success(ctx context.Context, email string, ipHash []byte) error {
	const q = `
INSERT INTO auth_limiter (email, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1, $2, 0, 'epoch', $3)
ON CONFLICT (email, ip_hash)
DO UPDATE SET fail_count=0, blocked_until='epoch', updated_at=$3`
	_, err := l.db.Exec(ctx, q, email, ipHash, l.now())
	return err
}

// Failure bumps the pair's counter, restarting it when the previous failure
// fell outside the window, and blocks the pair once maxFails is reached.
func (l *PG) Failure(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	now := l.now()

	const q = `
INSERT INTO auth_limiter (email, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1, $2, 1, 'epoch', $3)
ON CONFLICT (email, ip_hash) DO UPDATE
SET
  fail_count = CASE WHEN $3 - auth_limiter.updated_at > $4 * interval '1 second' THEN 1 ELSE auth_limiter.fail_count + 1 END,
  updated_at = $3
RETURNING fail_count`
	var fails int
	if err := l.db.QueryRow(ctx, q, email, ipHash, now, int64(l.window/time.Second)).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails < l.maxFails {
		return false, 0, nil
	}
	const upd = `UPDATE auth_limiter SET blocked_until=$3 WHERE email=$1 AND ip_hash=$2`
	if _, err := l.db.Exec(ctx, upd, email, ipHash, now.Add(l.blockFor)); err != nil {
		return false, 0, err
	}
	return true, l.blockFor, nil
}
