package repository

import (
	"context"
	"errors"

	"github.com/talentgrid/talentgrid-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned by Create or Update when the storage-level
	// unique constraint on email is violated. Uniqueness is enforced by the
	// database, not by a prior lookup, so concurrent registrations cannot
	// both succeed.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the durable storage contract for user accounts.
// Implementations must be safe for concurrent use.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
