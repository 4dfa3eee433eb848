package accounts

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAdminRegistration is returned when a caller tries to self-register
	// with the admin role.
	ErrAdminRegistration = errors.New("admin accounts cannot be self-registered")
)

// Repository persists accounts. Create must return ErrDuplicateAccount when
// the email is taken; lookups return ErrNotFound.
type Repository interface {
	Create(ctx context.Context, account Account) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
}
