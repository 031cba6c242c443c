package handlers

import (
	"time"

	"github.com/asakaida/todomap/internal/entities"
	"github.com/asakaida/todomap/internal/services"
)

// Request models

// CreateTodoRequest is the body of POST /api/todos. A todo is always created
// assigned to a user.
type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	UserID      *int64 `json:"user_id"`
}

// UpdateTodoRequest is the body of PUT /api/todos/{id}. Absent fields are left
// untouched; a user_id reassigns ownership.
type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	UserID      *int64  `json:"user_id"`
}

// AssignUserRequest is the body of POST /api/todos/{id}/assign-user.
type AssignUserRequest struct {
	UserID   *int64            `json:"user_id"`
	Metadata entities.Metadata `json:"metadata"`
}

// RemoveUserRequest is the body of DELETE /api/todos/{id}/remove-user.
type RemoveUserRequest struct {
	UserID *int64 `json:"user_id"`
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the body of PUT /api/users/{id}.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Response models

// UserResponse is the public projection of a user. The password hash never
// leaves the server.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserDetailResponse is the GET /api/users/{id} projection: the user plus
// computed relationship fields.
type UserDetailResponse struct {
	ID                int64                      `json:"id"`
	Name              string                     `json:"name"`
	Email             string                     `json:"email"`
	CreatedAt         time.Time                  `json:"created_at"`
	TodosCount        int                        `json:"todos_count"`
	TodosWithMetadata []TodoWithMetadataResponse `json:"todos_with_metadata"`
	Relationships     []RelationshipResponse     `json:"relationships"`
}

// TodoResponse is the public projection of a todo with its computed owner.
type TodoResponse struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Completed   bool          `json:"completed"`
	Owner       *UserResponse `json:"owner"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TodoWithMetadataResponse is a todo annotated with the metadata and sort
// order of the relationship it was resolved through.
type TodoWithMetadataResponse struct {
	ID                    int64             `json:"id"`
	Title                 string            `json:"title"`
	Description           string            `json:"description"`
	Completed             bool              `json:"completed"`
	RelationshipMetadata  entities.Metadata `json:"relationship_metadata"`
	RelationshipSortOrder int               `json:"relationship_sort_order"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// RelationshipResponse is the raw projection of a relationship row.
type RelationshipResponse struct {
	ID               int64             `json:"id"`
	SubjectType      string            `json:"subject_type"`
	SubjectID        int64             `json:"subject_id"`
	ObjectType       string            `json:"object_type"`
	ObjectID         int64             `json:"object_id"`
	RelationshipType string            `json:"relationship_type"`
	RelationshipKey  *string           `json:"relationship_key"`
	Metadata         entities.Metadata `json:"metadata"`
	SortOrder        int               `json:"sort_order"`
	IsActive         bool              `json:"is_active"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// UserTodosResponse is the GET /api/users/{id}/todos envelope.
type UserTodosResponse struct {
	User  UserSummary                `json:"user"`
	Todos []TodoWithMetadataResponse `json:"todos"`
}

// UserSummary is the compact user reference inside envelopes.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AssignUserResponse is the POST /api/todos/{id}/assign-user envelope.
type AssignUserResponse struct {
	Message string       `json:"message"`
	Todo    TodoResponse `json:"todo"`
}

// MessageResponse is a bare confirmation envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// Converters

func toUserResponse(user *entities.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func toTodoResponse(todo *entities.Todo, owner *entities.User) TodoResponse {
	resp := TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
	if owner != nil {
		ownerResp := toUserResponse(owner)
		resp.Owner = &ownerResp
	}
	return resp
}

func toTodoWithMetadataResponses(resolved []*services.TodoWithMetadata) []TodoWithMetadataResponse {
	out := make([]TodoWithMetadataResponse, 0, len(resolved))
	for _, r := range resolved {
		out = append(out, TodoWithMetadataResponse{
			ID:                    r.Todo.ID,
			Title:                 r.Todo.Title,
			Description:           r.Todo.Description,
			Completed:             r.Todo.Completed,
			RelationshipMetadata:  r.RelationshipMetadata,
			RelationshipSortOrder: r.RelationshipSortOrder,
			CreatedAt:             r.Todo.CreatedAt,
			UpdatedAt:             r.Todo.UpdatedAt,
		})
	}
	return out
}

func toRelationshipResponses(rels []*entities.GeneralMap) []RelationshipResponse {
	out := make([]RelationshipResponse, 0, len(rels))
	for _, rel := range rels {
		var key *string
		if rel.RelationshipKey != "" {
			k := rel.RelationshipKey
			key = &k
		}
		out = append(out, RelationshipResponse{
			ID:               rel.ID,
			SubjectType:      string(rel.SubjectType),
			SubjectID:        rel.SubjectID,
			ObjectType:       string(rel.ObjectType),
			ObjectID:         rel.ObjectID,
			RelationshipType: rel.RelationshipType,
			RelationshipKey:  key,
			Metadata:         rel.Metadata,
			SortOrder:        rel.SortOrder,
			IsActive:         rel.IsActive,
			CreatedAt:        rel.CreatedAt,
			UpdatedAt:        rel.UpdatedAt,
		})
	}
	return out
}
