package handlers

import (
	"net/http"
	"net/mail"

	"github.com/asakaida/todomap/internal/services"
)

// UserHandler serves the /api/users resource.
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}

	writeJSONResponse(w, http.StatusOK, responses)
}

// Create handles POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	fieldErrors := map[string][]string{}
	validateName(req.Name, fieldErrors)
	validateEmail(req.Email, fieldErrors)
	validatePassword(req.Password, fieldErrors)
	if len(fieldErrors) > 0 {
		writeValidationErrors(w, fieldErrors)
		return
	}

	user, err := h.users.Create(r.Context(), services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toUserResponse(user))
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parsePathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.users.Get(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	owned, err := h.users.GetTodos(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	withMetadata, err := h.users.GetTodosWithMetadata(ctx, id, "")
	if err != nil {
		handleServiceError(w, err)
		return
	}

	rels, err := h.users.Relationships(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, UserDetailResponse{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		CreatedAt:         user.CreatedAt,
		TodosCount:        len(owned),
		TodosWithMetadata: toTodoWithMetadataResponses(withMetadata),
		Relationships:     toRelationshipResponses(rels),
	})
}

// Update handles PUT /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	fieldErrors := map[string][]string{}
	if req.Name != nil {
		validateName(*req.Name, fieldErrors)
	}
	if req.Email != nil {
		validateEmail(*req.Email, fieldErrors)
	}
	if req.Password != nil {
		validatePassword(*req.Password, fieldErrors)
	}
	if len(fieldErrors) > 0 {
		writeValidationErrors(w, fieldErrors)
		return
	}

	user, err := h.users.Update(r.Context(), id, services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /api/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Todos handles GET /api/users/{id}/todos: the user's todos resolved through
// the metadata relationship, optionally narrowed by ?relationship_key=.
func (h *UserHandler) Todos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parsePathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.users.Get(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	relationshipKey := r.URL.Query().Get("relationship_key")
	withMetadata, err := h.users.GetTodosWithMetadata(ctx, id, relationshipKey)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, UserTodosResponse{
		User: UserSummary{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		Todos: toTodoWithMetadataResponses(withMetadata),
	})
}

func validateName(name string, fieldErrors map[string][]string) {
	if name == "" {
		fieldErrors["name"] = append(fieldErrors["name"], "The name field is required")
	}
	if len(name) > 255 {
		fieldErrors["name"] = append(fieldErrors["name"], "The name may not be greater than 255 characters")
	}
}

func validateEmail(email string, fieldErrors map[string][]string) {
	if email == "" {
		fieldErrors["email"] = append(fieldErrors["email"], "The email field is required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fieldErrors["email"] = append(fieldErrors["email"], "The email must be a valid email address")
	}
}

func validatePassword(password string, fieldErrors map[string][]string) {
	if len(password) < 6 {
		fieldErrors["password"] = append(fieldErrors["password"], "The password must be at least 6 characters")
	}
}
