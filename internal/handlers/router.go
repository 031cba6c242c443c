package handlers

import (
	"net/http"

	"github.com/asakaida/todomap/internal/infrastructure/metrics"
	"github.com/asakaida/todomap/internal/services"
	"github.com/gorilla/mux"
)

// RouterConfig bundles the dependencies the HTTP surface needs.
type RouterConfig struct {
	Users   *services.UserService
	Todos   *services.TodoService
	Health  HealthChecker
	Metrics *metrics.Collector
	// Exporter may be nil; the collector alone then records metrics.
	Exporter *metrics.PrometheusExporter
}

// NewRouter builds the full route table with the standard middleware chain.
func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	if cfg.Metrics != nil {
		r.Use(metrics.Middleware(cfg.Metrics, cfg.Exporter))
	}

	// Preflight requests only need to reach CORSMiddleware.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	healthHandler := NewHealthHandler(cfg.Health)
	r.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	todoHandler := NewTodoHandler(cfg.Todos)
	api.HandleFunc("/todos", todoHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/todos", todoHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/todos/{id}", todoHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/todos/{id}", todoHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/todos/{id}", todoHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/todos/{id}/assign-user", todoHandler.AssignUser).Methods(http.MethodPost)
	api.HandleFunc("/todos/{id}/remove-user", todoHandler.RemoveUser).Methods(http.MethodDelete)

	userHandler := NewUserHandler(cfg.Users)
	api.HandleFunc("/users", userHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users", userHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", userHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", userHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", userHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/todos", userHandler.Todos).Methods(http.MethodGet)

	return r
}
