package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/asakaida/todomap/internal/handlers"
	"github.com/asakaida/todomap/internal/infrastructure/config"
	"github.com/asakaida/todomap/internal/infrastructure/database"
	"github.com/asakaida/todomap/internal/repositories"
	"github.com/asakaida/todomap/internal/repositories/postgres"
	"github.com/asakaida/todomap/internal/services"
)

// E2ETestServer represents an end-to-end test environment: real database,
// real services, real router behind an httptest server.
type E2ETestServer struct {
	Server *httptest.Server
	DB     *sql.DB
	pg     *database.Postgres
}

// SetupE2ETest sets up an E2E test environment.
// Skips unless E2E=1 to keep the suite runnable without a database.
func SetupE2ETest(t *testing.T) *E2ETestServer {
	t.Helper()

	if os.Getenv("E2E") != "1" {
		t.Skip("skipping e2e test; set E2E=1 to run")
	}

	// Initialize config for test environment
	if err := config.InitConfig("test"); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Connect to test database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations (use absolute path)
	projectRoot, err := findProjectRoot()
	if err != nil {
		t.Fatalf("failed to find project root: %v", err)
	}
	migrationsPath := projectRoot + "/internal/infrastructure/database/migrations/postgres"
	if err := pg.RunMigrations(migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Clean up existing data
	cleanupDatabase(t, pg.DB)

	defaults := repositories.RelationshipDefaults{
		RelationshipType: cfg.General.DefaultRelationshipType,
		SortOrder:        cfg.General.DefaultSortOrder,
		IsActive:         cfg.General.DefaultIsActive,
	}

	// Initialize repositories
	relationshipRepo := postgres.NewPostgresRelationshipRepository(pg.DB, defaults)
	userRepo := postgres.NewPostgresUserRepository(pg.DB)
	todoRepo := postgres.NewPostgresTodoRepository(pg.DB)

	// Initialize services
	userService := services.NewUserService(userRepo, todoRepo, relationshipRepo, defaults)
	todoService := services.NewTodoService(todoRepo, userRepo, relationshipRepo, defaults)

	router := handlers.NewRouter(handlers.RouterConfig{
		Users:  userService,
		Todos:  todoService,
		Health: pg,
	})

	return &E2ETestServer{
		Server: httptest.NewServer(router),
		DB:     pg.DB,
		pg:     pg,
	}
}

// Teardown cleans up the E2E test environment
func (e *E2ETestServer) Teardown(t *testing.T) {
	t.Helper()

	if e.Server != nil {
		e.Server.Close()
	}
	if e.pg != nil {
		cleanupDatabase(t, e.DB)
		e.pg.Close()
	}
}

// Do sends one JSON request to the test server and decodes the response body
// into out when it is non-nil. Returns the response status code.
func (e *E2ETestServer) Do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, e.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("failed to read response body: %v", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, out); err != nil {
				t.Fatalf("failed to decode response %q: %v", string(raw), err)
			}
		}
	}

	return resp.StatusCode
}

// cleanupDatabase removes all data from test database
func cleanupDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tables := []string{"general_maps", "general_meta", "todos", "users"}
	for _, table := range tables {
		query := fmt.Sprintf("DELETE FROM %s", table)
		if _, err := db.ExecContext(ctx, query); err != nil {
			t.Logf("warning: failed to clean up table %s: %v", table, err)
		}
	}
}

// findProjectRoot finds the project root directory by looking for go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("project root not found")
		}
		dir = parent
	}
}
