package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asakaida/todomap/internal/entities"
	"github.com/asakaida/todomap/internal/repositories"
)

// ErrAlreadyAssigned is returned when assigning a todo to a user that already
// holds an active owner relationship for it.
var ErrAlreadyAssigned = errors.New("Todo is already assigned to this user")

// CreateTodoInput holds the fields for creating a todo. When UserID is set the
// created todo is immediately assigned to that user.
type CreateTodoInput struct {
	Title       string
	Description string
	Completed   bool
	UserID      *int64
}

// UpdateTodoInput holds the optional fields for updating a todo. A UserID
// reassigns ownership: the current owner relationship is removed first.
type UpdateTodoInput struct {
	Title       *string
	Description *string
	Completed   *bool
	UserID      *int64
}

// TodoService is the entity adapter for todos: CRUD, the inverse owner lookup,
// and the assignment verbs that translate into relationship store calls.
type TodoService struct {
	todos         repositories.TodoRepository
	users         repositories.UserRepository
	relationships repositories.RelationshipRepository
	defaults      repositories.RelationshipDefaults
}

// NewTodoService creates a new todo service
func NewTodoService(
	todos repositories.TodoRepository,
	users repositories.UserRepository,
	relationships repositories.RelationshipRepository,
	defaults repositories.RelationshipDefaults,
) *TodoService {
	return &TodoService{
		todos:         todos,
		users:         users,
		relationships: relationships,
		defaults:      defaults,
	}
}

// assignmentMetadata is the metadata stamped onto owner relationships created
// through the assignment verbs.
func assignmentMetadata(reassigned bool) entities.Metadata {
	m := entities.Metadata{
		"assigned_at": time.Now().UTC().Format(time.RFC3339),
		"assigned_by": "api",
	}
	if reassigned {
		m["reassigned"] = true
	}
	return m
}

// Create stores a new todo. When input.UserID is set, the todo is assigned to
// that user in the same call; the user must exist.
func (s *TodoService) Create(ctx context.Context, input CreateTodoInput) (*entities.Todo, error) {
	if input.UserID != nil {
		if _, err := s.users.GetByID(ctx, *input.UserID); err != nil {
			return nil, fmt.Errorf("user %d: %w", *input.UserID, err)
		}
	}

	todo, err := s.todos.Create(ctx, &entities.Todo{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
	})
	if err != nil {
		return nil, err
	}

	if input.UserID != nil {
		if _, err := s.assignOwner(ctx, todo.ID, *input.UserID, assignmentMetadata(false)); err != nil {
			return nil, err
		}
	}

	return todo, nil
}

// Get retrieves a todo by id
func (s *TodoService) Get(ctx context.Context, id int64) (*entities.Todo, error) {
	return s.todos.GetByID(ctx, id)
}

// List retrieves all todos, newest first
func (s *TodoService) List(ctx context.Context) ([]*entities.Todo, error) {
	return s.todos.List(ctx)
}

// Update applies the provided fields to an existing todo. When input.UserID is
// set, ownership is reassigned: existing owner relationships are removed and a
// fresh one is created for the new user, stamped as a reassignment.
func (s *TodoService) Update(ctx context.Context, id int64, input UpdateTodoInput) (*entities.Todo, error) {
	todo, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		todo.Title = *input.Title
	}
	if input.Description != nil {
		todo.Description = *input.Description
	}
	if input.Completed != nil {
		todo.Completed = *input.Completed
	}

	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, err
	}

	if input.UserID != nil {
		if _, err := s.users.GetByID(ctx, *input.UserID); err != nil {
			return nil, fmt.Errorf("user %d: %w", *input.UserID, err)
		}
		if err := s.removeOwners(ctx, id); err != nil {
			return nil, err
		}
		if _, err := s.assignOwner(ctx, id, *input.UserID, assignmentMetadata(true)); err != nil {
			return nil, err
		}
	}

	return todo, nil
}

// Delete removes the todo; associated relationship rows go with it.
func (s *TodoService) Delete(ctx context.Context, id int64) error {
	return s.todos.Delete(ctx, id)
}

// Owner finds the user holding an active "todo_owner" relationship whose
// object is this todo. With multiple active owner rows the lowest row id
// wins, so the answer is deterministic. Returns nil without error when the
// todo is unowned or the owner row is orphaned.
func (s *TodoService) Owner(ctx context.Context, todoID int64) (*entities.User, error) {
	rels, err := s.relationships.Query(ctx, &repositories.RelationshipFilter{
		ObjectType:       entities.KindTodo,
		ObjectID:         todoID,
		SubjectType:      entities.KindUser,
		RelationshipType: entities.RelationshipTodoOwner,
	})
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return nil, nil
	}

	owner, err := s.users.GetByID(ctx, rels[0].SubjectID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return owner, nil
}

// AssignUser assigns the todo to the user, carrying the caller's metadata
// verbatim. Returns ErrAlreadyAssigned when an active owner relationship
// between the pair already exists.
func (s *TodoService) AssignUser(ctx context.Context, todoID, userID int64, metadata entities.Metadata) (*entities.GeneralMap, error) {
	if _, err := s.todos.GetByID(ctx, todoID); err != nil {
		return nil, fmt.Errorf("todo %d: %w", todoID, err)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}

	assigned, err := s.relationships.Exists(ctx,
		entities.KindUser, userID,
		entities.KindTodo, todoID,
		entities.RelationshipTodoOwner)
	if err != nil {
		return nil, err
	}
	if assigned {
		return nil, ErrAlreadyAssigned
	}

	return s.assignOwner(ctx, todoID, userID, metadata)
}

// RemoveUser hard-deletes the owner relationship between the todo and the
// user. Returns true iff a row was deleted.
func (s *TodoService) RemoveUser(ctx context.Context, todoID, userID int64) (bool, error) {
	return s.relationships.Remove(ctx,
		entities.KindUser, userID,
		entities.KindTodo, todoID,
		entities.RelationshipTodoOwner, "")
}

// assignOwner writes the owner relationship row with the configured defaults.
func (s *TodoService) assignOwner(ctx context.Context, todoID, userID int64, metadata entities.Metadata) (*entities.GeneralMap, error) {
	return s.relationships.Create(ctx, &entities.GeneralMap{
		SubjectType:      entities.KindUser,
		SubjectID:        userID,
		ObjectType:       entities.KindTodo,
		ObjectID:         todoID,
		RelationshipType: entities.RelationshipTodoOwner,
		Metadata:         metadata,
		SortOrder:        s.defaults.SortOrder,
		IsActive:         s.defaults.IsActive,
	})
}

// removeOwners deletes every owner relationship currently pointing at the
// todo, active or not.
func (s *TodoService) removeOwners(ctx context.Context, todoID int64) error {
	rels, err := s.relationships.Query(ctx, &repositories.RelationshipFilter{
		ObjectType:       entities.KindTodo,
		ObjectID:         todoID,
		SubjectType:      entities.KindUser,
		RelationshipType: entities.RelationshipTodoOwner,
		IncludeInactive:  true,
	})
	if err != nil {
		return err
	}

	for _, rel := range rels {
		if _, err := s.relationships.Remove(ctx,
			rel.SubjectType, rel.SubjectID,
			rel.ObjectType, rel.ObjectID,
			rel.RelationshipType, rel.RelationshipKey); err != nil {
			return err
		}
	}
	return nil
}
