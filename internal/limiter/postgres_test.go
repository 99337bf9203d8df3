package limiter

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

var _ Limiter = (*PG)(nil)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newLimiter(t *testing.T, maxFails int) (*PG, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	l := NewPG(mock, 15*time.Minute, maxFails, 10*time.Minute)
	l.now = func() time.Time { return now }
	return l, mock
}

func expectMet(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

var (
	selectBlock = regexp.QuoteMeta(`SELECT blocked_until FROM auth_limiter WHERE email=$1 AND ip_hash=$2`)
	upsertFail  = regexp.QuoteMeta(`INSERT INTO auth_limiter`) + `.*RETURNING fail_count`
	setBlock    = regexp.QuoteMeta(`UPDATE auth_limiter SET blocked_until=$3`)
)

func TestAllow_NoRow_Allows(t *testing.T) {
	l, mock := newLimiter(t, 5)
	ip := HashIP("10.0.0.1")
	mock.ExpectQuery(selectBlock).WithArgs("a@b.c", ip).WillReturnError(pgx.ErrNoRows)

	ok, dur, err := l.Allow(context.Background(), "a@b.c", ip)
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow no-row: ok=%v dur=%v err=%v", ok, dur, err)
	}
	expectMet(t, mock)
}

func TestAllow_BlockedUntilFuture(t *testing.T) {
	l, mock := newLimiter(t, 5)
	mock.ExpectQuery(selectBlock).
		WithArgs("a@b.c", []byte("h")).
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(now.Add(3 * time.Minute)))

	ok, dur, err := l.Allow(context.Background(), "a@b.c", []byte("h"))
	if err != nil || ok || dur != 3*time.Minute {
		t.Fatalf("Allow blocked: ok=%v dur=%v err=%v", ok, dur, err)
	}
	expectMet(t, mock)
}

func TestAllow_PastBlock_Allows(t *testing.T) {
	l, mock := newLimiter(t, 5)
	mock.ExpectQuery(selectBlock).
		WithArgs("a@b.c", []byte("h")).
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(now.Add(-time.Second)))

	ok, dur, err := l.Allow(context.Background(), "a@b.c", []byte("h"))
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow past: ok=%v dur=%v err=%v", ok, dur, err)
	}
	expectMet(t, mock)
}

func TestAllow_DBError_Propagates(t *testing.T) {
	l, mock := newLimiter(t, 5)
	mock.ExpectQuery(selectBlock).WithArgs("a@b.c", []byte("h")).WillReturnError(errors.New("db boom"))

	ok, _, err := l.Allow(context.Background(), "a@b.c", []byte("h"))
	if err == nil || ok {
		t.Fatalf("want error, got ok=%v err=%v", ok, err)
	}
	expectMet(t, mock)
}

func TestSuccess_Resets(t *testing.T) {
	l, mock := newLimiter(t, 5)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO auth_limiter`) + `.*fail_count=0`).
		WithArgs("a@b.c", []byte("h"), now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := l.Success(context.Background(), "a@b.c", []byte("h")); err != nil {
		t.Fatalf("success: %v", err)
	}
	expectMet(t, mock)
}

func TestSuccess_ExecError_Propagates(t *testing.T) {
	l, mock := newLimiter(t, 5)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO auth_limiter`)).
		WithArgs("a@b.c", []byte("h"), now).
		WillReturnError(errors.New("exec fail"))

	if err := l.Success(context.Background(), "a@b.c", []byte("h")); err == nil {
		t.Fatalf("want exec error")
	}
	expectMet(t, mock)
}

func TestFailure_BelowThreshold(t *testing.T) {
	l, mock := newLimiter(t, 5)
	mock.ExpectQuery(upsertFail).
		WithArgs("a@b.c", []byte("h"), now, int64(900)).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(2))

	blocked, dur, err := l.Failure(context.Background(), "a@b.c", []byte("h"))
	if err != nil || blocked || dur != 0 {
		t.Fatalf("Failure no block: blocked=%v dur=%v err=%v", blocked, dur, err)
	}
	expectMet(t, mock)
}

func TestFailure_BlocksAtThreshold(t *testing.T) {
	l, mock := newLimiter(t, 3)
	mock.ExpectQuery(upsertFail).
		WithArgs("a@b.c", []byte("h"), now, int64(900)).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(3))
	mock.ExpectExec(setBlock).
		WithArgs("a@b.c", []byte("h"), now.Add(10*time.Minute)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	blocked, dur, err := l.Failure(context.Background(), "a@b.c", []byte("h"))
	if err != nil || !blocked || dur != 10*time.Minute {
		t.Fatalf("Failure block: blocked=%v dur=%v err=%v", blocked, dur, err)
	}
	expectMet(t, mock)
}

func TestFailure_BlockUpdateError(t *testing.T) {
	l, mock := newLimiter(t, 1)
	mock.ExpectQuery(upsertFail).
		WithArgs("a@b.c", []byte("h"), now, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(1))
	mock.ExpectExec(setBlock).
		WithArgs("a@b.c", []byte("h"), pgxmock.AnyArg()).
		WillReturnError(errors.New("upd fail"))

	if _, _, err := l.Failure(context.Background(), "a@b.c", []byte("h")); err == nil {
		t.Fatalf("want update error")
	}
	expectMet(t, mock)
}

func TestHashIP_Stable(t *testing.T) {
	a, b := HashIP("1.2.3.4"), HashIP("1.2.3.4")
	if string(a) != string(b) || len(a) != 32 {
		t.Fatalf("unstable hash")
	}
	if string(a) == string(HashIP("1.2.3.5")) {
		t.Fatalf("collision")
	}
}

func TestNop(t *testing.T) {
	var l Limiter = Nop{}
	ok, _, err := l.Allow(context.Background(), "x", nil)
	if !ok || err != nil {
		t.Fatalf("nop blocked")
	}
	blocked, _, _ := l.Failure(context.Background(), "x", nil)
	if blocked {
		t.Fatalf("nop blocked")
	}
}
