package entities

import (
	"fmt"
	"time"
)

// Todo represents a single todo item. The owning user, if any, is expressed
// by an active "todo_owner" relationship row whose object is this todo.
type Todo struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks if the todo record is valid.
func (t *Todo) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > 255 {
		return fmt.Errorf("title exceeds 255 characters")
	}
	return nil
}
