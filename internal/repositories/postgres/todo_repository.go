package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/asakaida/todomap/internal/entities"
	"github.com/asakaida/todomap/internal/repositories"
	"github.com/lib/pq"
)

// PostgresTodoRepository implements TodoRepository using PostgreSQL
type PostgresTodoRepository struct {
	db *sql.DB
}

// NewPostgresTodoRepository creates a new PostgreSQL todo repository
func NewPostgresTodoRepository(db *sql.DB) repositories.TodoRepository {
	return &PostgresTodoRepository{db: db}
}

// Create inserts a new todo
func (r *PostgresTodoRepository) Create(ctx context.Context, todo *entities.Todo) (*entities.Todo, error) {
	if err := todo.Validate(); err != nil {
		return nil, fmt.Errorf("invalid todo: %w", err)
	}

	query := `
		INSERT INTO todos (title, description, completed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	created := *todo
	err := r.db.QueryRowContext(ctx, query, todo.Title, todo.Description, todo.Completed).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return &created, nil
}

// GetByID retrieves a todo by id
func (r *PostgresTodoRepository) GetByID(ctx context.Context, id int64) (*entities.Todo, error) {
	query := `
		SELECT id, title, description, completed, created_at, updated_at
		FROM todos
		WHERE id = $1
	`
	var todo entities.Todo
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&todo.ID, &todo.Title, &todo.Description, &todo.Completed,
		&todo.CreatedAt, &todo.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return &todo, nil
}

// GetByIDs batch-loads todos by id; missing ids are absent from the result
func (r *PostgresTodoRepository) GetByIDs(ctx context.Context, ids []int64) ([]*entities.Todo, error) {
	if len(ids) == 0 {
		return []*entities.Todo{}, nil
	}

	query := `
		SELECT id, title, description, completed, created_at, updated_at
		FROM todos
		WHERE id = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get todos: %w", err)
	}
	defer rows.Close()

	return scanTodos(rows)
}

// List retrieves all todos, newest first
func (r *PostgresTodoRepository) List(ctx context.Context) ([]*entities.Todo, error) {
	query := `
		SELECT id, title, description, completed, created_at, updated_at
		FROM todos
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	return scanTodos(rows)
}

// Update persists title/description/completed changes
func (r *PostgresTodoRepository) Update(ctx context.Context, todo *entities.Todo) error {
	if err := todo.Validate(); err != nil {
		return fmt.Errorf("invalid todo: %w", err)
	}

	query := `
		UPDATE todos
		SET title = $1, description = $2, completed = $3, updated_at = now()
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, todo.Title, todo.Description, todo.Completed, todo.ID)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repositories.ErrNotFound
	}

	return nil
}

// Delete removes the todo and its relationship rows in one transaction
func (r *PostgresTodoRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteRelationshipsForEntity(ctx, tx, entities.KindTodo, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repositories.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func scanTodos(rows *sql.Rows) ([]*entities.Todo, error) {
	todos := []*entities.Todo{}
	for rows.Next() {
		var todo entities.Todo
		err := rows.Scan(
			&todo.ID, &todo.Title, &todo.Description, &todo.Completed,
			&todo.CreatedAt, &todo.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, &todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}
