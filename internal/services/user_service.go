package services

import (
	"context"
	"fmt"

	"github.com/asakaida/todomap/internal/entities"
	"github.com/asakaida/todomap/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

// TodoWithMetadata is a todo annotated with the metadata and sort order of
// the relationship row it was resolved through.
type TodoWithMetadata struct {
	Todo                  *entities.Todo
	RelationshipMetadata  entities.Metadata
	RelationshipSortOrder int
}

// CreateUserInput holds the fields for creating a user
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput holds the optional fields for updating a user
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

// UserService is the entity adapter for users: plain CRUD plus the domain
// verbs that translate into relationship store calls.
type UserService struct {
	users         repositories.UserRepository
	todos         repositories.TodoRepository
	relationships repositories.RelationshipRepository
	defaults      repositories.RelationshipDefaults
}

// NewUserService creates a new user service
func NewUserService(
	users repositories.UserRepository,
	todos repositories.TodoRepository,
	relationships repositories.RelationshipRepository,
	defaults repositories.RelationshipDefaults,
) *UserService {
	return &UserService{
		users:         users,
		todos:         todos,
		relationships: relationships,
		defaults:      defaults,
	}
}

// Create hashes the password and stores a new user.
// Returns ErrDuplicateEmail when the email is taken.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*entities.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.Create(ctx, &entities.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
	})
}

// Get retrieves a user by id
func (s *UserService) Get(ctx context.Context, id int64) (*entities.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByEmail retrieves a user by email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// List retrieves all users ordered by name
func (s *UserService) List(ctx context.Context) ([]*entities.User, error) {
	return s.users.List(ctx)
}

// Update applies the provided fields to an existing user
func (s *UserService) Update(ctx context.Context, id int64, input UpdateUserInput) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes the user; associated relationship rows go with it.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

// AddTodo creates an active "todo_owner" relationship from the user to the
// todo. It does not check for an existing owner: callers wanting reassignment
// must remove the old relationship first. A duplicate assignment of the same
// pair surfaces ErrDuplicateRelationship untranslated.
func (s *UserService) AddTodo(ctx context.Context, userID, todoID int64, metadata entities.Metadata) (*entities.GeneralMap, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	if _, err := s.todos.GetByID(ctx, todoID); err != nil {
		return nil, fmt.Errorf("todo %d: %w", todoID, err)
	}

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

// RemoveTodo hard-deletes the "todo_owner" relationship between the user and
// the todo. Returns true iff a row was deleted.
func (s *UserService) RemoveTodo(ctx context.Context, userID, todoID int64) (bool, error) {
	return s.relationships.Remove(ctx,
		entities.KindUser, userID,
		entities.KindTodo, todoID,
		entities.RelationshipTodoOwner, "")
}

// HasTodo reports whether an active "todo_owner" relationship exists between
// the user and the todo.
func (s *UserService) HasTodo(ctx context.Context, userID, todoID int64) (bool, error) {
	return s.relationships.Exists(ctx,
		entities.KindUser, userID,
		entities.KindTodo, todoID,
		entities.RelationshipTodoOwner)
}

// GetTodos resolves the todos the user owns, in relationship order.
// Entity-only projection: relationship metadata is dropped.
func (s *UserService) GetTodos(ctx context.Context, userID int64) ([]*entities.Todo, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}

	resolved, err := s.resolveTodos(ctx, userID, entities.RelationshipTodoOwner, "")
	if err != nil {
		return nil, err
	}

	todos := make([]*entities.Todo, 0, len(resolved))
	for _, r := range resolved {
		todos = append(todos, r.Todo)
	}
	return todos, nil
}

// GetTodosWithMetadata resolves the todos linked to the user under the
// "todo_metadata" relationship type, each annotated with the relationship's
// metadata and sort order, ordered by sort order. relationshipKey optionally
// narrows the resolution to a single key.
func (s *UserService) GetTodosWithMetadata(ctx context.Context, userID int64, relationshipKey string) ([]*TodoWithMetadata, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}

	return s.resolveTodos(ctx, userID, entities.RelationshipTodoMetadata, relationshipKey)
}

// Relationships returns every relationship row whose subject is the user,
// active or not. Used for the raw relationship projection on user detail.
func (s *UserService) Relationships(ctx context.Context, userID int64) ([]*entities.GeneralMap, error) {
	return s.relationships.Query(ctx, &repositories.RelationshipFilter{
		SubjectType:     entities.KindUser,
		SubjectID:       userID,
		IncludeInactive: true,
	})
}

// resolveTodos is the two-step resolution: query relationship rows, batch-load
// the referenced todos, and zip each todo with its relationship metadata.
// Relationship order is preserved, and rows whose todo no longer exists are
// silently dropped.
func (s *UserService) resolveTodos(ctx context.Context, userID int64, relationshipType, relationshipKey string) ([]*TodoWithMetadata, error) {
	rels, err := s.relationships.Query(ctx, &repositories.RelationshipFilter{
		SubjectType:      entities.KindUser,
		SubjectID:        userID,
		ObjectType:       entities.KindTodo,
		RelationshipType: relationshipType,
		RelationshipKey:  relationshipKey,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, rel.ObjectID)
	}

	todos, err := s.todos.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*entities.Todo, len(todos))
	for _, todo := range todos {
		byID[todo.ID] = todo
	}

	resolved := make([]*TodoWithMetadata, 0, len(rels))
	for _, rel := range rels {
		todo, ok := byID[rel.ObjectID]
		if !ok {
			// Orphaned relationship row; tolerated.
			continue
		}
		resolved = append(resolved, &TodoWithMetadata{
			Todo:                  todo,
			RelationshipMetadata:  rel.Metadata,
			RelationshipSortOrder: rel.SortOrder,
		})
	}

	return resolved, nil
}
