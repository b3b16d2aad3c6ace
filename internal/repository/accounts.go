package repository

import (
	"context"
	"errors"
	"time"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("record already exists")

// UserRepository defines persistence operations for standard accounts.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateProfileImage(ctx context.Context, id, key string) error
}

// ExpertRepository defines persistence operations for expert accounts,
// including the lockout bookkeeping the authenticator relies on.
type ExpertRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, expert *domain.Expert) error
	GetByEmail(ctx context.Context, email string) (*domain.Expert, error)
	GetByID(ctx context.Context, id string) (*domain.Expert, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateProfileImage(ctx context.Context, id, key string) error
	// RecordFailedLogin increments the attempt counter in a single statement
	// and starts the lockout window once the counter reaches maxAttempts.
	RecordFailedLogin(ctx context.Context, id string, maxAttempts int, lockUntil time.Time) error
}

// AdminRepository defines persistence operations for admin accounts.
type AdminRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, admin *domain.Admin) error
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
