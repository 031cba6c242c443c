package handlers

import (
	"net/http"

	"github.com/asakaida/todomap/internal/services"
)

// TodoHandler serves the /api/todos resource.
type TodoHandler struct {
	todos *services.TodoService
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todos *services.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// List handles GET /api/todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	todos, err := h.todos.List(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]TodoResponse, 0, len(todos))
	for _, todo := range todos {
		owner, err := h.todos.Owner(ctx, todo.ID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		responses = append(responses, toTodoResponse(todo, owner))
	}

	writeJSONResponse(w, http.StatusOK, responses)
}

// Create handles POST /api/todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	fieldErrors := map[string][]string{}
	validateTitle(req.Title, fieldErrors)
	if req.UserID == nil || *req.UserID <= 0 {
		fieldErrors["user_id"] = append(fieldErrors["user_id"], "The user_id field is required")
	}
	if len(fieldErrors) > 0 {
		writeValidationErrors(w, fieldErrors)
		return
	}

	todo, err := h.todos.Create(ctx, services.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		UserID:      req.UserID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	owner, err := h.todos.Owner(ctx, todo.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toTodoResponse(todo, owner))
}

// Get handles GET /api/todos/{id}
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parsePathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid todo id")
		return
	}

	todo, err := h.todos.Get(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	owner, err := h.todos.Owner(ctx, todo.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toTodoResponse(todo, owner))
}

// Update handles PUT /api/todos/{id}
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parsePathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid todo id")
		return
	}

	var req UpdateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	fieldErrors := map[string][]string{}
	if req.Title != nil {
		validateTitle(*req.Title, fieldErrors)
	}
	if req.UserID != nil && *req.UserID <= 0 {
		fieldErrors["user_id"] = append(fieldErrors["user_id"], "The user_id field must be a positive id")
	}
	if len(fieldErrors) > 0 {
		writeValidationErrors(w, fieldErrors)
		return
	}

	todo, err := h.todos.Update(ctx, id, services.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		UserID:      req.UserID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	owner, err := h.todos.Owner(ctx, todo.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toTodoResponse(todo, owner))
}

// Delete handles DELETE /api/todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parsePathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid todo id")
		return
	}

	if err := h.todos.Delete(ctx, id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignUser handles POST /api/todos/{id}/assign-user
func (h *TodoHandler) AssignUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parsePathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid todo id")
		return
	}

	var req AssignUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.UserID == nil || *req.UserID <= 0 {
		writeValidationErrors(w, map[string][]string{
			"user_id": {"The user_id field is required"},
		})
		return
	}

	if _, err := h.todos.AssignUser(ctx, id, *req.UserID, req.Metadata); err != nil {
		handleServiceError(w, err)
		return
	}

	todo, err := h.todos.Get(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	owner, err := h.todos.Owner(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, AssignUserResponse{
		Message: "Todo assigned successfully",
		Todo:    toTodoResponse(todo, owner),
	})
}

// RemoveUser handles DELETE /api/todos/{id}/remove-user
func (h *TodoHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parsePathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid todo id")
		return
	}

	var req RemoveUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.UserID == nil || *req.UserID <= 0 {
		writeValidationErrors(w, map[string][]string{
			"user_id": {"The user_id field is required"},
		})
		return
	}

	if _, err := h.todos.Get(ctx, id); err != nil {
		handleServiceError(w, err)
		return
	}

	if _, err := h.todos.RemoveUser(ctx, id, *req.UserID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, MessageResponse{
		Message: "User association removed successfully",
	})
}

// validateTitle appends title validation failures to fieldErrors.
func validateTitle(title string, fieldErrors map[string][]string) {
	if title == "" {
		fieldErrors["title"] = append(fieldErrors["title"], "The title field is required")
	}
	if len(title) > 255 {
		fieldErrors["title"] = append(fieldErrors["title"], "The title may not be greater than 255 characters")
	}
}
