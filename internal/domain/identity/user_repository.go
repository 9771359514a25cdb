package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository is the persistence contract for user accounts. Email
// lookups run against the normalized (lowercased, trimmed) address, and
// business ids are unique across all users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByBusinessID(ctx context.Context, businessID string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByBusinessID(ctx context.Context, businessID string) (bool, error)
	Count(ctx context.Context) (int64, error)
}
