package repositories

import (
	"context"

	"github.com/asakaida/todomap/internal/entities"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicateEmail when the email is
	// already taken.
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	// GetByID retrieves a user by id. Returns ErrNotFound when missing.
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByIDs batch-loads users. Missing ids are silently absent from the
	// result.
	GetByIDs(ctx context.Context, ids []int64) ([]*entities.User, error)

	// GetByEmail retrieves a user by email. Returns ErrNotFound when missing.
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// List retrieves all users ordered by name.
	List(ctx context.Context) ([]*entities.User, error)

	// Update persists name/email/password changes.
	// Returns ErrNotFound when the row is missing.
	Update(ctx context.Context, user *entities.User) error

	// Delete removes the user and, in the same transaction, every
	// relationship row where the user appears as subject or object.
	// Returns ErrNotFound when the row is missing.
	Delete(ctx context.Context, id int64) error
}
