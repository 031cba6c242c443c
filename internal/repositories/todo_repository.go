package repositories

import (
	"context"

	"github.com/asakaida/todomap/internal/entities"
)

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// Create inserts a new todo.
	Create(ctx context.Context, todo *entities.Todo) (*entities.Todo, error)

	// GetByID retrieves a todo by id. Returns ErrNotFound when missing.
	GetByID(ctx context.Context, id int64) (*entities.Todo, error)

	// GetByIDs batch-loads todos. Missing ids are silently absent from the
	// result.
	GetByIDs(ctx context.Context, ids []int64) ([]*entities.Todo, error)

	// List retrieves all todos, newest first.
	List(ctx context.Context) ([]*entities.Todo, error)

	// Update persists title/description/completed changes.
	// Returns ErrNotFound when the row is missing.
	Update(ctx context.Context, todo *entities.Todo) error

	// Delete removes the todo and, in the same transaction, every
	// relationship row where the todo appears as subject or object.
	// Returns ErrNotFound when the row is missing.
	Delete(ctx context.Context, id int64) error
}
