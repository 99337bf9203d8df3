// Package repository defines storage interfaces implemented by concrete backends.
//
// Read methods never return soft-deleted rows. A missing row is reported as
// errs.ErrNotFound (or a nil/false result where the method says so); any
// other error is a raw storage failure for the caller to wrap.
package repository

import (
	"context"

	"github.com/and161185/stockroom/internal/model"
)

// UserRepository is the user lookup used outside of authentication.
type UserRepository interface {
	// FindByID loads a user; (nil, nil) if absent.
	FindByID(ctx context.Context, id int64) (*model.UserInfo, error)
	// FindByEmail loads a user; (nil, nil) if absent.
	FindByEmail(ctx context.Context, email string) (*model.UserInfo, error)
	// Exists reports whether a live user with id exists.
	Exists(ctx context.Context, id int64) (bool, error)
}

// AuthUserRepository provides the credential view of users. It is used
// exclusively by the authentication service.
type AuthUserRepository interface {
	// Create inserts a user and returns it. A duplicate live email yields
	// errs.ErrEmailAlreadyExists.
	Create(ctx context.Context, u model.NewAuthUser) (*model.AuthUser, error)
	// FindByEmail loads a user with its password hash; (nil, nil) if absent.
	FindByEmail(ctx context.Context, email string) (*model.AuthUser, error)
	// EmailExists reports whether a live user has the email.
	EmailExists(ctx context.Context, email string) (bool, error)
}
