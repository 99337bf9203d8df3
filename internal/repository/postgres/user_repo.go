package postgres

import (
	"context"
	"errors"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user lookup repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// FindByID selects a live user by ID.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*model.UserInfo, error) {
	const q = `
SELECT id, name, email
FROM users WHERE id=$1 AND ` + liveOnly
	return r.scanInfo(r.db.Pool.QueryRow(ctx, q, id))
}

// FindByEmail selects a live user by email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.UserInfo, error) {
	const q = `
SELECT id, name, email
FROM users WHERE email=$1 AND ` + liveOnly
	return r.scanInfo(r.db.Pool.QueryRow(ctx, q, email))
}

// Exists reports whether a live user with the ID exists.
func (r *UserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1 AND ` + liveOnly + `)`
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *UserRepo) scanInfo(row pgx.Row) (*model.UserInfo, error) {
	var u model.UserInfo
	if err := row.Scan(&u.ID, &u.Name, &u.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// AuthUserRepo implements AuthUserRepository using PostgreSQL.
type AuthUserRepo struct{ db *DB }

// NewAuthUserRepo constructs the credential repository.
func NewAuthUserRepo(db *DB) *AuthUserRepo { return &AuthUserRepo{db: db} }

// Create inserts a new user row.
func (r *AuthUserRepo) Create(ctx context.Context, in model.NewAuthUser) (*model.AuthUser, error) {
	const q = `
INSERT INTO users (name, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at`
	u := model.AuthUser{Name: in.Name, Email: in.Email, PasswordHash: in.PasswordHash}
	err := r.db.Pool.QueryRow(ctx, q, in.Name, in.Email, in.PasswordHash).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, errs.EmailAlreadyExists(in.Email)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail selects a live user with its password hash.
func (r *AuthUserRepo) FindByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	const q = `
SELECT id, name, email, password_hash, created_at, updated_at
FROM users WHERE email=$1 AND ` + liveOnly
	var u model.AuthUser
	err := r.db.Pool.QueryRow(ctx, q, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// EmailExists reports whether a live user has the email.
func (r *AuthUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1 AND ` + liveOnly + `)`
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, q, email).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
