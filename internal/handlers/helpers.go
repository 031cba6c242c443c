package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/asakaida/todomap/internal/repositories"
	"github.com/asakaida/todomap/internal/services"
	"github.com/gorilla/mux"
)

// ErrorResponse is the JSON body for every non-2xx response.
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, ErrorResponse{Message: message})
}

func writeValidationErrors(w http.ResponseWriter, fieldErrors map[string][]string) {
	writeJSONResponse(w, http.StatusBadRequest, ErrorResponse{
		Message: "The given data was invalid",
		Errors:  fieldErrors,
	})
}

// handleServiceError maps service and repository errors onto HTTP statuses.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		writeErrorResponse(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, services.ErrAlreadyAssigned):
		writeErrorResponse(w, http.StatusBadRequest, services.ErrAlreadyAssigned.Error())
	case errors.Is(err, repositories.ErrDuplicateRelationship):
		writeErrorResponse(w, http.StatusBadRequest, "Relationship already exists")
	case errors.Is(err, repositories.ErrDuplicateEmail):
		writeValidationErrors(w, map[string][]string{
			"email": {"The email has already been taken"},
		})
	default:
		log.Printf("Internal error: %v", err)
		writeErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parsePathID extracts the numeric {id} path variable.
func parsePathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// decodeJSON decodes the request body into dst, rejecting unknown syntax.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
