package services

import (
	"context"
	"errors"
	"testing"

	"github.com/asakaida/todomap/internal/entities"
	"github.com/asakaida/todomap/internal/repositories"
)

func TestTodoService_CRUD(t *testing.T) {
	_, todoService, _, _, _ := newTestServices()
	ctx := context.Background()

	created, err := todoService.Create(ctx, CreateTodoInput{Title: "Buy milk", Description: "2 liters"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("Get round trip", func(t *testing.T) {
		got, err := todoService.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Title != "Buy milk" || got.Description != "2 liters" || got.Completed {
			t.Errorf("unexpected todo: %+v", got)
		}
	})

	t.Run("Update applies only provided fields", func(t *testing.T) {
		completed := true
		got, err := todoService.Update(ctx, created.ID, UpdateTodoInput{Completed: &completed})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Completed {
			t.Error("completed flag not applied")
		}
		if got.Title != "Buy milk" {
			t.Errorf("untouched title changed: %q", got.Title)
		}
	})

	t.Run("List is newest first", func(t *testing.T) {
		newer, err := todoService.Create(ctx, CreateTodoInput{Title: "Newer"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		todos, err := todoService.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(todos) != 2 || todos[0].ID != newer.ID {
			t.Errorf("expected newest todo first, got %v", todos)
		}
	})

	t.Run("Delete then Get returns ErrNotFound", func(t *testing.T) {
		if err := todoService.Delete(ctx, created.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := todoService.Get(ctx, created.ID); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestTodoService_AssignUser(t *testing.T) {
	userService, todoService, relationships, _, _ := newTestServices()
	ctx := context.Background()

	user, _ := userService.Create(ctx, CreateUserInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	todo, _ := todoService.Create(ctx, CreateTodoInput{Title: "Buy milk"})

	t.Run("first assignment succeeds with caller metadata", func(t *testing.T) {
		rel, err := todoService.AssignUser(ctx, todo.ID, user.ID, entities.Metadata{"note": "handoff"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rel.RelationshipType != entities.RelationshipTodoOwner {
			t.Errorf("relationship type = %q", rel.RelationshipType)
		}
		if rel.Metadata["note"] != "handoff" {
			t.Errorf("metadata = %v, want caller metadata carried verbatim", rel.Metadata)
		}
	})

	t.Run("second assignment of the same pair is rejected", func(t *testing.T) {
		if _, err := todoService.AssignUser(ctx, todo.ID, user.ID, nil); !errors.Is(err, ErrAlreadyAssigned) {
			t.Errorf("expected ErrAlreadyAssigned, got: %v", err)
		}
	})

	t.Run("unknown user yields ErrNotFound", func(t *testing.T) {
		if _, err := todoService.AssignUser(ctx, todo.ID, 9999, nil); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("unknown todo yields ErrNotFound", func(t *testing.T) {
		if _, err := todoService.AssignUser(ctx, 9999, user.ID, nil); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("RemoveUser deletes the relationship", func(t *testing.T) {
		removed, err := todoService.RemoveUser(ctx, todo.ID, user.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !removed {
			t.Error("expected a row to be removed")
		}

		removed, err = todoService.RemoveUser(ctx, todo.ID, user.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if removed {
			t.Error("second removal should find nothing")
		}

		if len(relationships.rows) != 0 {
			t.Errorf("expected no relationship rows, got %d", len(relationships.rows))
		}
	})
}

func TestTodoService_CreateWithOwner(t *testing.T) {
	userService, todoService, _, _, _ := newTestServices()
	ctx := context.Background()

	user, _ := userService.Create(ctx, CreateUserInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})

	t.Run("created todo is owned immediately", func(t *testing.T) {
		todo, err := todoService.Create(ctx, CreateTodoInput{Title: "Buy milk", UserID: &user.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		owner, err := todoService.Owner(ctx, todo.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if owner == nil || owner.ID != user.ID {
			t.Errorf("owner = %v, want user %d", owner, user.ID)
		}
	})

	t.Run("unknown user rejects the create", func(t *testing.T) {
		missing := int64(9999)
		if _, err := todoService.Create(ctx, CreateTodoInput{Title: "Nope", UserID: &missing}); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestTodoService_UpdateReassignsOwner(t *testing.T) {
	userService, todoService, relationships, _, _ := newTestServices()
	ctx := context.Background()

	alice, _ := userService.Create(ctx, CreateUserInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	bob, _ := userService.Create(ctx, CreateUserInput{Name: "Bob", Email: "bob@example.com", Password: "secret123"})
	todo, _ := todoService.Create(ctx, CreateTodoInput{Title: "Buy milk", UserID: &alice.ID})

	if _, err := todoService.Update(ctx, todo.ID, UpdateTodoInput{UserID: &bob.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	owner, err := todoService.Owner(ctx, todo.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner == nil || owner.ID != bob.ID {
		t.Errorf("owner = %v, want user %d", owner, bob.ID)
	}

	// The old owner row is gone, and the new one is stamped as a reassignment.
	if len(relationships.rows) != 1 {
		t.Fatalf("expected exactly one owner row, got %d", len(relationships.rows))
	}
	if reassigned, _ := relationships.rows[0].Metadata["reassigned"].(bool); !reassigned {
		t.Errorf("metadata = %v, want reassigned true", relationships.rows[0].Metadata)
	}
}

func TestTodoService_Owner(t *testing.T) {
	userService, todoService, relationships, userRepo, _ := newTestServices()
	ctx := context.Background()

	user, _ := userService.Create(ctx, CreateUserInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	todo, _ := todoService.Create(ctx, CreateTodoInput{Title: "Buy milk"})

	t.Run("unowned todo has no owner", func(t *testing.T) {
		owner, err := todoService.Owner(ctx, todo.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if owner != nil {
			t.Errorf("expected nil owner, got %v", owner)
		}
	})

	t.Run("owner resolves after assignment", func(t *testing.T) {
		if _, err := userService.AddTodo(ctx, user.ID, todo.ID, nil); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		owner, err := todoService.Owner(ctx, todo.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if owner == nil || owner.ID != user.ID {
			t.Errorf("owner = %v, want user %d", owner, user.ID)
		}
	})

	t.Run("multiple active owners resolve to the lowest row id", func(t *testing.T) {
		second, _ := userService.Create(ctx, CreateUserInput{Name: "Bob", Email: "bob@example.com", Password: "secret123"})
		if _, err := userService.AddTodo(ctx, second.ID, todo.ID, nil); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		owner, err := todoService.Owner(ctx, todo.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if owner == nil || owner.ID != user.ID {
			t.Errorf("expected the earliest assignment to win, got %v", owner)
		}
	})

	t.Run("orphaned owner row yields no owner", func(t *testing.T) {
		// Drop every user directly; the relationship rows stay behind.
		for id := range userRepo.users {
			delete(userRepo.users, id)
		}

		owner, err := todoService.Owner(ctx, todo.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if owner != nil {
			t.Errorf("expected nil owner for orphaned rows, got %v", owner)
		}
	})

	t.Run("inactive owner row is ignored", func(t *testing.T) {
		other, _ := todoService.Create(ctx, CreateTodoInput{Title: "Other"})
		carol, _ := userService.Create(ctx, CreateUserInput{Name: "Carol", Email: "carol@example.com", Password: "secret123"})
		if _, err := userService.AddTodo(ctx, carol.ID, other.ID, nil); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		if _, err := relationships.SetActive(ctx, entities.KindUser, carol.ID, entities.KindTodo, other.ID, entities.RelationshipTodoOwner, "", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		owner, err := todoService.Owner(ctx, other.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if owner != nil {
			t.Errorf("expected nil owner for deactivated row, got %v", owner)
		}
	})
}
